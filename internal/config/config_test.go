package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"hireline/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
	if !cfg.Workflow.AllowReapplyAfterRejection {
		t.Fatal("expected reapply-after-rejection to default to true")
	}
	if !cfg.Notifications.Submitted || !cfg.Notifications.StageChanged {
		t.Fatal("expected notification kinds to default to enabled")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected missing config file to be reported as absent")
	}
	if resolved != path {
		t.Fatalf("expected resolved path %q, got %q", path, resolved)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7620" {
		t.Fatalf("unexpected default api bind: %q", cfg.Paths.APIBind)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
data_dir = "` + dir + `/data"
log_dir = "` + dir + `/logs"
api_bind = " 127.0.0.1:9000 "

[notifications]
webhook_url = "https://example.com/hooks/hireline"

[workflow]
allow_reapply_after_rejection = false

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Paths.APIBind != "127.0.0.1:9000" {
		t.Fatalf("expected trimmed api bind, got %q", cfg.Paths.APIBind)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized logging settings, got %q/%q", cfg.Logging.Format, cfg.Logging.Level)
	}
	if cfg.Workflow.AllowReapplyAfterRejection {
		t.Fatal("expected reapply policy override to stick")
	}
	if cfg.DatabasePath() != filepath.Join(dir, "data", "hireline.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad log format", "[logging]\nformat = \"yaml\"\n"},
		{"bad log level", "[logging]\nlevel = \"verbose\"\n"},
		{"bad webhook url", "[notifications]\nwebhook_url = \"not a url\"\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, _, _, err := config.Load(path); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	written, err := config.WriteSample(path)
	if err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	if written != path {
		t.Fatalf("expected sample at %q, got %q", path, written)
	}
	if _, err := config.WriteSample(path); err == nil {
		t.Fatal("expected second WriteSample to refuse overwrite")
	}
}
