package app

import (
	"context"
	"errors"
	"io"
	"net/url"
	"testing"

	"github.com/ochronus/gopuush/internal/config"
	"github.com/ochronus/gopuush/internal/services/puush"
	"github.com/sirupsen/logrus"
)

type mockAccount struct{}

func (m *mockAccount) APIKey() string               { return "mock" }
func (m *mockAccount) Premium() puush.PremiumStatus { return puush.UnknownPremium }
func (m *mockAccount) Upload(context.Context, io.Reader, string) (*puush.File, error) {
	return &puush.File{ID: "id"}, nil
}
func (m *mockAccount) UploadFile(context.Context, string) (*puush.File, error) {
	return &puush.File{ID: "id"}, nil
}
func (m *mockAccount) Delete(context.Context, string) error              { return nil }
func (m *mockAccount) Thumbnail(context.Context, string) ([]byte, error) { return []byte("png"), nil }
func (m *mockAccount) History(context.Context) ([]*puush.File, error)    { return nil, nil }

// recordingPoster answers auth requests and remembers what was sent.
type recordingPoster struct {
	reply  string
	fields []url.Values
}

func (p *recordingPoster) Post(_ context.Context, endpoint string, fields url.Values, _ *puush.Attachment) ([]byte, error) {
	if endpoint != "auth" {
		return nil, errors.New("unexpected endpoint " + endpoint)
	}
	p.fields = append(p.fields, fields)
	return []byte(p.reply), nil
}

func baseConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Puush.APIKey = "abc"
	return cfg
}

func TestNewContainerWithAPIKey(t *testing.T) {
	cfg := baseConfig()
	poster := &recordingPoster{reply: "0,abc,0,0"}

	container, err := NewContainer(context.Background(), cfg, WithAccountOptions(puush.WithTransport(poster)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if container.Logger == nil {
		t.Fatal("expected logger to be initialized")
	}
	if container.Account == nil {
		t.Fatal("expected account to be built")
	}
	if container.Account.APIKey() != "abc" {
		t.Errorf("expected api key 'abc', got %q", container.Account.APIKey())
	}
	if len(poster.fields) != 1 || poster.fields[0].Get("k") != "abc" {
		t.Errorf("expected one key verification request, got %v", poster.fields)
	}
}

func TestNewContainerSkipsVerification(t *testing.T) {
	cfg := baseConfig()
	cfg.Puush.VerifyKey = false
	poster := &recordingPoster{reply: "-1"}

	_, err := NewContainer(context.Background(), cfg, WithAccountOptions(puush.WithTransport(poster)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(poster.fields) != 0 {
		t.Errorf("expected no auth requests, got %d", len(poster.fields))
	}
}

func TestNewContainerWithCredentials(t *testing.T) {
	cfg := baseConfig()
	cfg.Puush.APIKey = ""
	cfg.Puush.Email = "me@example.com"
	cfg.Puush.Password = "secret"
	poster := &recordingPoster{reply: "1,RESOLVED,0,0"}

	container, err := NewContainer(context.Background(), cfg, WithAccountOptions(puush.WithTransport(poster)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if container.Account.APIKey() != "RESOLVED" {
		t.Errorf("expected resolved api key, got %q", container.Account.APIKey())
	}
	if premium, known := container.Account.Premium().Get(); !known || !premium {
		t.Errorf("expected known premium status, got %v", container.Account.Premium())
	}
	if poster.fields[0].Get("e") != "me@example.com" || poster.fields[0].Get("p") != "secret" {
		t.Errorf("unexpected login fields: %v", poster.fields[0])
	}
}

func TestNewContainerAuthFailure(t *testing.T) {
	cfg := baseConfig()
	poster := &recordingPoster{reply: "-1"}

	_, err := NewContainer(context.Background(), cfg, WithAccountOptions(puush.WithTransport(poster)))
	if err == nil {
		t.Fatal("expected error for rejected key")
	}
	if !errors.Is(err, puush.ErrAuthentication) {
		t.Errorf("expected authentication error, got %v", err)
	}
}

func TestContainerOverrides(t *testing.T) {
	cfg := baseConfig()
	account := &mockAccount{}
	customLogger := BuildLogger("debug")

	container, err := NewContainer(context.Background(), cfg, WithLogger(customLogger), WithAccount(account))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if container.Logger != customLogger {
		t.Error("expected custom logger to be used")
	}
	if container.Account != account {
		t.Error("expected custom account to be used")
	}
}

func TestNewContainerNilConfigError(t *testing.T) {
	if _, err := NewContainer(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestWithLoggerNilError(t *testing.T) {
	_, err := NewContainer(context.Background(), baseConfig(), WithLogger(nil))
	if err == nil {
		t.Fatal("expected error when logger is nil")
	}
}

func TestWithAccountNilError(t *testing.T) {
	_, err := NewContainer(context.Background(), baseConfig(), WithAccount(nil))
	if err == nil {
		t.Fatal("expected error when account is nil")
	}
}

func TestBuildLogger(t *testing.T) {
	tests := []struct {
		level    string
		expected logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"warn", logrus.WarnLevel},
		{"nonsense", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := BuildLogger(tt.level)
			if logger.GetLevel() != tt.expected {
				t.Errorf("expected level %v, got %v", tt.expected, logger.GetLevel())
			}
		})
	}
}
