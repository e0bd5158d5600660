// Package config handles application configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.aimuz.me/flicker/internal/types"
)

const (
	appName        = "flicker"
	configFileName = "config.json"
)

// Config represents the application configuration.
type Config struct {
	// OutputDir defaults to ~/Pictures/FLICKERs when empty.
	OutputDir string        `json:"output_dir,omitempty"`
	Hotkeys   []Hotkey      `json:"hotkeys"`
	Post      PostConfig    `json:"post"`
	History   HistoryConfig `json:"history"`
	Log       LogConfig     `json:"log"`

	path string
}

// Hotkey binds a chord such as "alt+shift+s" to a capture action.
type Hotkey struct {
	Chord   string `json:"chord"`
	Action  string `json:"action"` // selection, full, window, screen, monitor
	Monitor int    `json:"monitor,omitempty"`
}

// PostConfig toggles the steps run after a screenshot is saved.
type PostConfig struct {
	Open      bool `json:"open"`
	Clipboard bool `json:"clipboard"`
	Notify    bool `json:"notify"`
}

// HistoryConfig controls the capture history store.
type HistoryConfig struct {
	Enabled       bool `json:"enabled"`
	RetentionDays int  `json:"retention_days"`
}

// LogConfig controls log verbosity and format.
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"` // console or json
}

// Load loads configuration from the default config file.
// Returns default config if file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path, returning defaults when the file
// doesn't exist. Save writes back to the same path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// An empty list in the file means "use the defaults", not "no hotkeys".
	if len(cfg.Hotkeys) == 0 {
		cfg.Hotkeys = DefaultHotkeys()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save persists the configuration to disk.
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		p, err := configPath()
		if err != nil {
			return fmt.Errorf("get config path: %w", err)
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string { return c.path }

// Validate checks hotkey actions and log settings.
func (c *Config) Validate() error {
	for i, h := range c.Hotkeys {
		if strings.TrimSpace(h.Chord) == "" {
			return fmt.Errorf("hotkeys[%d]: chord required", i)
		}
		mode, err := types.ParseMode(h.Action)
		if err != nil {
			return fmt.Errorf("hotkeys[%d]: %w", i, err)
		}
		if mode == types.ModeMonitor && h.Monitor < 1 {
			return fmt.Errorf("hotkeys[%d]: monitor must be >= 1", i)
		}
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "console", "text", "json":
	default:
		return fmt.Errorf("unsupported log format %q", c.Log.Format)
	}

	if c.History.RetentionDays < 0 {
		return errors.New("history.retention_days must not be negative")
	}
	return nil
}

// Dir returns the application's config directory.
func Dir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(dir, appName), nil
}

func configPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Hotkeys: DefaultHotkeys(),
		Post: PostConfig{
			Open:      true,
			Clipboard: true,
			Notify:    true,
		},
		History: HistoryConfig{
			Enabled:       true,
			RetentionDays: 30,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// DefaultHotkeys returns the canonical chord mapping.
func DefaultHotkeys() []Hotkey {
	return []Hotkey{
		{Chord: "cmd+shift+s", Action: "selection"},
		{Chord: "cmd+shift+w", Action: "window"},
		{Chord: "cmd+shift+d", Action: "full"},
		{Chord: "alt+shift+s", Action: "selection"},
		{Chord: "alt+shift+w", Action: "window"},
		{Chord: "alt+shift+d", Action: "full"},
		{Chord: "f6", Action: "selection"},
		{Chord: "f7", Action: "screen"},
		{Chord: "f8", Action: "full"},
		{Chord: "f9", Action: "window"},
	}
}
