// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/qhdzhm/happy-sub000/internal/location"
)

// Config holds the application configuration.
type Config struct {
	Assignment AssignmentConfig `toml:"assignment"`
	Board      BoardConfig      `toml:"board"`
	Locations  LocationsConfig  `toml:"locations"`
	Storage    StorageConfig    `toml:"storage"`
	UI         UIConfig         `toml:"ui"`
}

// AssignmentConfig holds the external assignment-service settings.
type AssignmentConfig struct {
	BaseURL string `toml:"base_url"` // e.g., "https://ops.example.com"
	Token   string `toml:"token"`
	Offline bool   `toml:"offline"` // run against the in-memory service
}

// BoardConfig holds schedule-board settings.
type BoardConfig struct {
	WindowDays int    `toml:"window_days"` // width of the visible date window
	StartDate  string `toml:"start_date"`  // "2006-01-02"; empty means today
}

// LocationsConfig holds title-normalization rules and merge groups.
// Empty slices/maps fall back to the built-in tables.
//
// Group names are usually Chinese, which TOML does not allow as bare keys;
// quote them in the file:
//
//	[locations.merge_groups]
//	"亚瑟港" = ["亚", "亚(迅)"]
type LocationsConfig struct {
	Rules       []RuleConfig        `toml:"rules"`
	MergeGroups map[string][]string `toml:"merge_groups"`
}

// RuleConfig is one substring-to-key normalization rule. Rules apply in
// order, first match wins.
type RuleConfig struct {
	Match string `toml:"match"`
	Key   string `toml:"key"`
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme string `toml:"theme"` // "mocha", "macchiato", "frappe", "latte"
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Assignment: AssignmentConfig{
			BaseURL: "",
			Token:   "",
			Offline: true, // no service configured yet, run the demo board
		},
		Board: BoardConfig{
			WindowDays: 14,
			StartDate:  "", // Empty means start from today
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		UI: UIConfig{
			Theme: "frappe",
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "tourboard.db"
	}
	return filepath.Join(home, ".local", "share", "tourboard", "tourboard.db")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "tourboard", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	// Try to load from file (not an error if it doesn't exist)
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Expand paths
	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, use defaults
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) {
	// Assignment service overrides
	if v := os.Getenv("TOURBOARD_BASE_URL"); v != "" {
		cfg.Assignment.BaseURL = v
	}
	if v := os.Getenv("TOURBOARD_TOKEN"); v != "" {
		cfg.Assignment.Token = v
	}
	if v := os.Getenv("TOURBOARD_OFFLINE"); v != "" {
		cfg.Assignment.Offline = v == "1" || strings.EqualFold(v, "true")
	}

	// Board overrides
	if v := os.Getenv("TOURBOARD_WINDOW_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			cfg.Board.WindowDays = days
		}
	}
	if v := os.Getenv("TOURBOARD_START_DATE"); v != "" {
		cfg.Board.StartDate = v
	}

	// Storage overrides
	if v := os.Getenv("TOURBOARD_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}

	// UI overrides
	if v := os.Getenv("TOURBOARD_UI_THEME"); v != "" {
		cfg.UI.Theme = v
	}
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Board.WindowDays < 1 {
		return errors.New("window_days must be at least 1")
	}
	if c.Board.StartDate != "" {
		if err := validateDate(c.Board.StartDate, "start_date"); err != nil {
			return err
		}
	}

	if !c.Assignment.Offline && c.Assignment.BaseURL == "" {
		return errors.New("assignment base_url must be set unless offline is enabled")
	}

	for i, r := range c.Locations.Rules {
		if r.Match == "" || r.Key == "" {
			return fmt.Errorf("locations rule %d: match and key must both be set", i+1)
		}
	}
	if len(c.Locations.MergeGroups) > 0 {
		if _, err := location.NewMergeGroups(c.Locations.MergeGroups); err != nil {
			return fmt.Errorf("merge_groups: %w", err)
		}
	}

	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}
	return nil
}

// validateDate checks if a date string is in YYYY-MM-DD format.
func validateDate(d, field string) error {
	if len(d) != 10 || d[4] != '-' || d[7] != '-' {
		return fmt.Errorf("%s must be in YYYY-MM-DD format, got %q", field, d)
	}
	if !isDigits(d[0:4]) || !isDigits(d[5:7]) || !isDigits(d[8:10]) {
		return fmt.Errorf("%s must be in YYYY-MM-DD format, got %q", field, d)
	}
	return nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// NormalizerRules returns the configured normalization rules, or the built-in
// table when none are configured.
func (c *Config) NormalizerRules() []location.Rule {
	if len(c.Locations.Rules) == 0 {
		return location.DefaultRules()
	}
	rules := make([]location.Rule, 0, len(c.Locations.Rules))
	for _, r := range c.Locations.Rules {
		rules = append(rules, location.Rule{Match: r.Match, Key: r.Key})
	}
	return rules
}

// MergeGroups returns the configured merge groups, or the built-in table when
// none are configured. Validate has already rejected invalid tables.
func (c *Config) MergeGroups() *location.MergeGroups {
	table := c.Locations.MergeGroups
	if len(table) == 0 {
		table = nil // NewMergeGroups falls back to the built-in table
	}
	groups, err := location.NewMergeGroups(table)
	if err != nil {
		groups, _ = location.NewMergeGroups(nil)
	}
	return groups
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
