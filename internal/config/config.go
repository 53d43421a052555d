// Package config loads and watches the fmnd configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "go.yaml.in/yaml/v3"
)

type Config struct {
	// Listen is the TCP address the daemon serves the client protocol on.
	Listen string `yaml:"listen"`
	// StateDir holds the task registry database. Defaults to
	// $XDG_STATE_HOME/fmn or ~/.local/state/fmn.
	StateDir string `yaml:"state_dir"`
	// Timezone is an optional IANA name for daily clocks. Empty means the
	// system local zone. Resolved once at startup.
	Timezone string `yaml:"timezone"`

	Log    LogConfig    `yaml:"log"`
	Notify NotifyConfig `yaml:"notify"`
}

type LogConfig struct {
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
}

type NotifyConfig struct {
	// Desktop toggles the D-Bus desktop backend. On by default.
	Desktop *bool `yaml:"desktop"`
	// RatePerMinute caps deliveries across all tasks. 0 means no cap.
	RatePerMinute int `yaml:"rate_per_minute"`
	// DefaultImage and DefaultSound apply when a request carries neither.
	DefaultImage string `yaml:"default_image"`
	DefaultSound string `yaml:"default_sound"`

	Telegram TelegramConfig `yaml:"telegram"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

func (c *NotifyConfig) DesktopEnabled() bool {
	return c.Desktop == nil || *c.Desktop
}

// Load reads path, applies defaults and validates. A missing file is fine:
// defaults alone make a working daemon.
func Load(path string) (*Config, error) {
	cfg := defaults()
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(strings.NewReader(string(b)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Listen:   "127.0.0.1:8082",
		StateDir: defaultStateDir(),
	}
}

func defaultStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "fmn")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "fmn-state"
	}
	return filepath.Join(home, ".local", "state", "fmn")
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Listen) == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.Notify.RatePerMinute < 0 {
		return fmt.Errorf("notify.rate_per_minute must be >= 0")
	}
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("timezone: %w", err)
		}
	}
	if (c.Notify.Telegram.Token == "") != (c.Notify.Telegram.ChatID == 0) {
		return fmt.Errorf("notify.telegram needs both token and chat_id")
	}
	return nil
}

// DBPath is the task registry location inside StateDir.
func (c *Config) DBPath() string {
	return filepath.Join(c.StateDir, "tasks.db")
}

// Location resolves the daily-clock timezone. Call once at startup.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
