package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Board.WindowDays != 14 {
		t.Errorf("expected window_days 14, got %d", cfg.Board.WindowDays)
	}
	if cfg.Board.StartDate != "" {
		t.Errorf("expected empty start_date, got %s", cfg.Board.StartDate)
	}
	if !cfg.Assignment.Offline {
		t.Error("expected offline mode by default")
	}
	if cfg.UI.Theme != "frappe" {
		t.Errorf("expected theme frappe, got %s", cfg.UI.Theme)
	}
	if cfg.Storage.DBPath == "" {
		t.Error("expected default db_path to be set")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestLoadFrom_FileNotExists(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Should return defaults
	if cfg.Board.WindowDays != 14 {
		t.Errorf("expected default window_days, got %d", cfg.Board.WindowDays)
	}
}

func TestLoadFrom_ValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	content := `
[assignment]
base_url = "https://ops.example.com"
token = "secret"
offline = false

[board]
window_days = 7
start_date = "2025-01-01"

[storage]
db_path = "/tmp/test.db"

[[locations.rules]]
match = "亚瑟港"
key = "亚"

[locations.merge_groups]
"亚瑟港" = ["亚", "亚(迅)"]
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Assignment.BaseURL != "https://ops.example.com" {
		t.Errorf("expected base_url https://ops.example.com, got %s", cfg.Assignment.BaseURL)
	}
	if cfg.Assignment.Token != "secret" {
		t.Errorf("expected token secret, got %s", cfg.Assignment.Token)
	}
	if cfg.Board.WindowDays != 7 {
		t.Errorf("expected window_days 7, got %d", cfg.Board.WindowDays)
	}
	if cfg.Board.StartDate != "2025-01-01" {
		t.Errorf("expected start_date 2025-01-01, got %s", cfg.Board.StartDate)
	}
	if cfg.Storage.DBPath != "/tmp/test.db" {
		t.Errorf("expected db_path /tmp/test.db, got %s", cfg.Storage.DBPath)
	}
	if len(cfg.Locations.Rules) != 1 || cfg.Locations.Rules[0].Key != "亚" {
		t.Errorf("unexpected rules: %+v", cfg.Locations.Rules)
	}
	// Chinese group names are not bare TOML keys and must be quoted
	if got := cfg.Locations.MergeGroups["亚瑟港"]; len(got) != 2 {
		t.Errorf("merge group 亚瑟港 = %v, want 2 keys", got)
	}
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	content := `
[assignment]
base_url = "https://ops.example.com"
offline = false

[board]
window_days = 7

[storage]
db_path = "/tmp/test.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set env vars
	t.Setenv("TOURBOARD_BASE_URL", "https://staging.example.com")
	t.Setenv("TOURBOARD_WINDOW_DAYS", "21")
	t.Setenv("TOURBOARD_DB_PATH", "/tmp/override.db")

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Env should override file
	if cfg.Assignment.BaseURL != "https://staging.example.com" {
		t.Errorf("expected env base_url, got %s", cfg.Assignment.BaseURL)
	}
	if cfg.Board.WindowDays != 21 {
		t.Errorf("expected env window_days 21, got %d", cfg.Board.WindowDays)
	}
	if cfg.Storage.DBPath != "/tmp/override.db" {
		t.Errorf("expected env db_path, got %s", cfg.Storage.DBPath)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid defaults",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "zero window days",
			modify:  func(c *Config) { c.Board.WindowDays = 0 },
			wantErr: true,
		},
		{
			name:    "bad start date",
			modify:  func(c *Config) { c.Board.StartDate = "01/01/2025" },
			wantErr: true,
		},
		{
			name: "online without base url",
			modify: func(c *Config) {
				c.Assignment.Offline = false
				c.Assignment.BaseURL = ""
			},
			wantErr: true,
		},
		{
			name: "rule missing key",
			modify: func(c *Config) {
				c.Locations.Rules = []RuleConfig{{Match: "亚瑟港"}}
			},
			wantErr: true,
		},
		{
			name: "key in two merge groups",
			modify: func(c *Config) {
				c.Locations.MergeGroups = map[string][]string{
					"甲": {"亚"},
					"乙": {"亚"},
				}
			},
			wantErr: true,
		},
		{
			name:    "empty db path",
			modify:  func(c *Config) { c.Storage.DBPath = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizerRulesFallback(t *testing.T) {
	cfg := Default()
	if len(cfg.NormalizerRules()) == 0 {
		t.Error("expected built-in rules when none configured")
	}

	cfg.Locations.Rules = []RuleConfig{{Match: "酒杯湾", Key: "酒"}}
	rules := cfg.NormalizerRules()
	if len(rules) != 1 || rules[0].Key != "酒" {
		t.Errorf("expected configured rule, got %+v", rules)
	}
}

func TestMergeGroupsFallback(t *testing.T) {
	cfg := Default()
	groups := cfg.MergeGroups()
	if _, ok := groups.GroupFor("亚"); !ok {
		t.Error("expected built-in merge table to cover 亚")
	}

	cfg.Locations.MergeGroups = map[string][]string{"南部": {"酒", "塔"}}
	groups = cfg.MergeGroups()
	if group, _ := groups.GroupFor("酒"); group != "南部" {
		t.Errorf("expected configured group 南部, got %s", group)
	}
	if _, ok := groups.GroupFor("亚"); ok {
		t.Error("configured table must replace the built-in one")
	}
}

func TestSaveAndReload(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "sub", "config.toml")

	cfg := Default()
	cfg.Board.WindowDays = 10
	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.Board.WindowDays != 10 {
		t.Errorf("expected window_days 10 after reload, got %d", loaded.Board.WindowDays)
	}
}
