package config

import (
	"os"
	"path/filepath"
	"testing"
)

func write(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != "127.0.0.1:8082" {
		t.Fatalf("default listen = %q", cfg.Listen)
	}
	if !cfg.Notify.DesktopEnabled() {
		t.Fatal("desktop backend should default to enabled")
	}
	if cfg.StateDir == "" {
		t.Fatal("state dir default is empty")
	}
}

func TestLoadFullConfig(t *testing.T) {
	t.Parallel()
	path := write(t, `
listen: "0.0.0.0:9000"
timezone: "UTC"
log:
  level: debug
  console: true
notify:
  desktop: false
  rate_per_minute: 12
  default_sound: /snd/ding.ogg
  telegram:
    token: "123:abc"
    chat_id: 42
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != "0.0.0.0:9000" {
		t.Fatalf("listen = %q", cfg.Listen)
	}
	if cfg.Log.Level != "debug" || !cfg.Log.Console {
		t.Fatalf("log config = %+v", cfg.Log)
	}
	if cfg.Notify.DesktopEnabled() {
		t.Fatal("desktop should be disabled")
	}
	if cfg.Notify.RatePerMinute != 12 || cfg.Notify.DefaultSound != "/snd/ding.ogg" {
		t.Fatalf("notify config = %+v", cfg.Notify)
	}
	if cfg.Notify.Telegram.Token != "123:abc" || cfg.Notify.Telegram.ChatID != 42 {
		t.Fatalf("telegram config = %+v", cfg.Notify.Telegram)
	}
	loc, err := cfg.Location()
	if err != nil || loc.String() != "UTC" {
		t.Fatalf("Location() = %v, %v", loc, err)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	path := write(t, "listne: \"oops\"\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		yaml string
	}{
		{name: "empty listen", yaml: `listen: " "`},
		{name: "negative rate", yaml: "notify:\n  rate_per_minute: -1\n"},
		{name: "bad timezone", yaml: `timezone: "Mars/Olympus"`},
		{name: "telegram token without chat", yaml: "notify:\n  telegram:\n    token: \"123:abc\"\n"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Load(write(t, tt.yaml)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
