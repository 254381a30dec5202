package app

import (
	"context"
	"fmt"

	"github.com/ochronus/gopuush/internal/config"
	"github.com/ochronus/gopuush/internal/services/puush"
	"github.com/sirupsen/logrus"
)

// Container centralizes the core dependencies used across the CLI.
// It uses interfaces so callers (and tests) can substitute implementations.
type Container struct {
	Config  *config.Config
	Logger  *logrus.Logger
	Account puush.AccountAPI

	accountOpts []puush.Option
}

// Option allows customizing the container during construction.
type Option func(*Container) error

// WithLogger overrides the default logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(c *Container) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.Logger = logger
		return nil
	}
}

// WithAccount overrides the puush account built from the config.
func WithAccount(account puush.AccountAPI) Option {
	return func(c *Container) error {
		if account == nil {
			return fmt.Errorf("puush account cannot be nil")
		}
		c.Account = account
		return nil
	}
}

// WithAccountOptions appends options used when the account is built,
// e.g. a custom transport in tests.
func WithAccountOptions(opts ...puush.Option) Option {
	return func(c *Container) error {
		c.accountOpts = append(c.accountOpts, opts...)
		return nil
	}
}

// NewContainer builds a Container with defaults derived from cfg. The puush
// account is authenticated here, so a bad key or password fails fast.
func NewContainer(ctx context.Context, cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	container := &Container{
		Config: cfg,
		Logger: BuildLogger(cfg.Loglevel),
	}

	// Apply options early so tests can inject mocks before defaults are created.
	for _, opt := range opts {
		if err := opt(container); err != nil {
			return nil, err
		}
	}

	if container.Account == nil {
		account, err := buildAccount(ctx, cfg, container.Logger, container.accountOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to authenticate with puush: %w", err)
		}
		container.Account = account
	}

	return container, nil
}

// BuildLogger returns a text logger at the given level (info if unparseable).
func BuildLogger(levelStr string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

func buildAccount(ctx context.Context, cfg *config.Config, logger *logrus.Logger, extra []puush.Option) (*puush.Account, error) {
	opts := []puush.Option{
		puush.WithBaseURL(cfg.Puush.BaseURL),
		puush.WithTimeout(cfg.RequestTimeout()),
		puush.WithHashSubmission(cfg.Puush.SendHash),
		puush.WithKeyVerification(cfg.Puush.VerifyKey),
		puush.WithLogger(logger),
	}
	opts = append(opts, extra...)

	if cfg.UsesCredentials() {
		return puush.Login(ctx, cfg.Puush.Email, cfg.Puush.Password, opts...)
	}
	return puush.NewAccount(ctx, cfg.Puush.APIKey, opts...)
}
