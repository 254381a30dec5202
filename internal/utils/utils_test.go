package utils

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/gin-gonic/gin"
	"github.com/ochronus/gopuush/internal/config"
	"github.com/ochronus/gopuush/internal/fakepuush"
	"github.com/sirupsen/logrus"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestConfigTemplateContent(t *testing.T) {
	// Verify that the config template contains all required sections
	requiredSections := []string{
		"loglevel",
		"[puush]",
		"api_key",
		"base_url",
		"timeout",
		"send_hash",
		"verify_key",
		"[fake_server]",
	}

	for _, section := range requiredSections {
		if !strings.Contains(configTemplate, section) {
			t.Errorf("configTemplate missing required section: %s", section)
		}
	}
}

func TestRenderConfigParsesAndValidates(t *testing.T) {
	rendered := RenderConfig("MYKEY", "")

	cfg := config.DefaultConfig()
	if _, err := toml.Decode(rendered, cfg); err != nil {
		t.Fatalf("rendered config is not valid TOML: %v", err)
	}
	if cfg.Puush.APIKey != "MYKEY" {
		t.Errorf("expected api key 'MYKEY', got '%s'", cfg.Puush.APIKey)
	}
	if cfg.Puush.BaseURL != "https://puush.me/api/" {
		t.Errorf("expected default base url, got '%s'", cfg.Puush.BaseURL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("rendered config does not validate: %v", err)
	}
}

func TestWriteConfigCreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "nested", "config.toml")

	if err := WriteConfig(io.Discard, configPath, "KEY", "http://localhost:8085/api/"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("expected config file to exist: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("failed to load written config: %v", err)
	}
	if cfg.Puush.BaseURL != "http://localhost:8085/api/" {
		t.Errorf("expected custom base url, got '%s'", cfg.Puush.BaseURL)
	}
}

func TestWriteConfigBacksUpExisting(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	if err := os.WriteFile(configPath, []byte("old content"), 0644); err != nil {
		t.Fatalf("failed to write existing config: %v", err)
	}

	var out bytes.Buffer
	if err := WriteConfig(&out, configPath, "NEW", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	backup, err := os.ReadFile(configPath + ".bak")
	if err != nil {
		t.Fatalf("expected backup file: %v", err)
	}
	if string(backup) != "old content" {
		t.Errorf("unexpected backup content: %q", backup)
	}
	if !strings.Contains(out.String(), "Backing up config") {
		t.Errorf("expected backup message, got %q", out.String())
	}
}

func TestGenerateConfigAgainstFakeServer(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := fakepuush.NewStore()
	key := store.AddUser(fakepuush.User{Email: "me@example.com", Password: "secret"})
	ts := httptest.NewServer(fakepuush.NewServer(config.FakeServerConfig{}, store, logger).GetRouter())
	defer ts.Close()

	configPath := filepath.Join(t.TempDir(), "config.toml")
	var out bytes.Buffer
	err := GenerateConfig(context.Background(), &out, configPath, "me@example.com", "secret", ts.URL+"/api/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(out.String(), key) {
		t.Errorf("expected api key in output, got %q", out.String())
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("failed to load generated config: %v", err)
	}
	if cfg.Puush.APIKey != key {
		t.Errorf("expected api key %q, got %q", key, cfg.Puush.APIKey)
	}

	err = GenerateConfig(context.Background(), io.Discard, configPath, "me@example.com", "wrong", ts.URL+"/api/")
	if err == nil {
		t.Fatal("expected error for wrong password")
	}
}
