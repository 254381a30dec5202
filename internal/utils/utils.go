package utils

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ochronus/gopuush/internal/services/puush"
)

const configTemplate = `# Log level, default "info"
loglevel = "info"

[puush]
# Required unless email and password are set. Generate one with 'gopuush login'
api_key = "{{PUUSH_API_KEY}}"

# Optional. Used to log in when api_key is empty
# email = "name@example.com"
# password = "hunter2"

# Optional API root, default "https://puush.me/api/"
base_url = "{{PUUSH_BASE_URL}}"

# Optional request timeout in secs, default 30
timeout = 30

# Optional. Send the MD5 of uploads in the "c" field, default true.
# Turn this off for servers that predate hash checking.
send_hash = true

# Optional. Check the API key against the server on startup, default true
verify_key = true

[fake_server]
# Settings for 'gopuush fake-server', a local in-memory puush API
bind_address = "127.0.0.1"
port = 8085
`

// GetAPIKey logs in with e-mail and password and returns the account's API key
func GetAPIKey(ctx context.Context, out io.Writer, email, password string, opts ...puush.Option) (string, error) {
	account, err := puush.Login(ctx, email, password, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to log in: %w", err)
	}

	fmt.Fprintf(out, "puush API key: %s (%s account)\n", account.APIKey(), account.Premium())
	return account.APIKey(), nil
}

// RenderConfig fills the config template
func RenderConfig(apiKey, baseURL string) string {
	if baseURL == "" {
		baseURL = puush.DefaultBaseURL
	}
	config := strings.Replace(configTemplate, "{{PUUSH_API_KEY}}", apiKey, 1)
	return strings.Replace(config, "{{PUUSH_BASE_URL}}", baseURL, 1)
}

// WriteConfig writes a rendered config to configPath, backing up any existing file
func WriteConfig(out io.Writer, configPath, apiKey, baseURL string) error {
	fmt.Fprintf(out, "Generating config %s\n", configPath)

	config := RenderConfig(apiKey, baseURL)

	// Check if config file already exists and back it up
	if _, err := os.Stat(configPath); err == nil {
		backupPath := configPath + ".bak"
		fmt.Fprintf(out, "Backing up config %s\n", configPath)
		if err := os.Rename(configPath, backupPath); err != nil {
			return fmt.Errorf("failed to backup config: %w", err)
		}
	}

	// Create parent directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// The file holds a secret, keep it private
	fmt.Fprintf(out, "Writing %s\n", configPath)
	if err := os.WriteFile(configPath, []byte(config), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GenerateConfig logs in and writes a configuration file holding the API key
func GenerateConfig(ctx context.Context, out io.Writer, configPath, email, password, baseURL string) error {
	var opts []puush.Option
	if baseURL != "" {
		opts = append(opts, puush.WithBaseURL(baseURL))
	}

	apiKey, err := GetAPIKey(ctx, out, email, password, opts...)
	if err != nil {
		return err
	}

	return WriteConfig(out, configPath, apiKey, baseURL)
}
