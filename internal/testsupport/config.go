package testsupport

import (
	"path/filepath"
	"testing"

	"hireline/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithWebhook points the notification webhook at the given URL.
func WithWebhook(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Notifications.WebhookURL = url
	}
}

// WithReapplyDisabled forbids candidates from applying again after rejection.
func WithReapplyDisabled() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workflow.AllowReapplyAfterRejection = false
	}
}

// WithAPIToken sets the bearer token required by the daemon API.
func WithAPIToken(token string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Paths.APIToken = token
	}
}
