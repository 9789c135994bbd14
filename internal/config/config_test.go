package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// Make sure no ambient environment leaks into the defaults.
	for _, key := range []string{"PORT", "DATA_BACKEND", "SQLITE_DB_PATH", "DATA_FILE_PATH",
		"GEMINI_API_KEY", "GEMINI_MODEL", "GEMINI_BASE_URL", "ANALYZE_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DataBackend != "sqlite" {
		t.Errorf("DataBackend = %q, want sqlite", cfg.DataBackend)
	}
	if cfg.GeminiModel != "gemini-2.5-flash" {
		t.Errorf("GeminiModel = %q, want gemini-2.5-flash", cfg.GeminiModel)
	}
	if cfg.AnalyzeTimeout != 30*time.Second {
		t.Errorf("AnalyzeTimeout = %v, want 30s", cfg.AnalyzeTimeout)
	}
	if cfg.AnalysisEnabled() {
		t.Error("analysis should be disabled without a credential")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATA_BACKEND", "file")
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("ANALYZE_TIMEOUT", "90s")

	cfg := Load()

	if cfg.Port != "9000" {
		t.Errorf("Port = %q, want 9000", cfg.Port)
	}
	if cfg.DataBackend != "file" {
		t.Errorf("DataBackend = %q, want file", cfg.DataBackend)
	}
	if !cfg.AnalysisEnabled() {
		t.Error("analysis should be enabled with a credential")
	}
	if cfg.AnalyzeTimeout != 90*time.Second {
		t.Errorf("AnalyzeTimeout = %v, want 90s", cfg.AnalyzeTimeout)
	}
}

func TestLoadIgnoresInvalidDuration(t *testing.T) {
	t.Setenv("ANALYZE_TIMEOUT", "not-a-duration")
	cfg := Load()
	if cfg.AnalyzeTimeout != 30*time.Second {
		t.Errorf("AnalyzeTimeout = %v, want default 30s", cfg.AnalyzeTimeout)
	}
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	return &Config{
		Port:           "8080",
		DataBackend:    "sqlite",
		SQLiteDBPath:   filepath.Join(dir, "snapexpense.db"),
		DataFilePath:   filepath.Join(dir, "records.json"),
		GeminiModel:    "gemini-2.5-flash",
		AnalyzeTimeout: 30 * time.Second,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid sqlite config", mutate: func(c *Config) {}},
		{name: "valid file config", mutate: func(c *Config) { c.DataBackend = "file" }},
		{
			name:    "non-numeric port",
			mutate:  func(c *Config) { c.Port = "http" },
			wantErr: "invalid port",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Port = "70000" },
			wantErr: "invalid port",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.DataBackend = "redis" },
			wantErr: "invalid data backend",
		},
		{
			name:    "empty sqlite path",
			mutate:  func(c *Config) { c.SQLiteDBPath = "" },
			wantErr: "SQLite database path",
		},
		{
			name: "empty file path",
			mutate: func(c *Config) {
				c.DataBackend = "file"
				c.DataFilePath = ""
			},
			wantErr: "data file path",
		},
		{
			name: "empty model with credential",
			mutate: func(c *Config) {
				c.GeminiAPIKey = "secret"
				c.GeminiModel = ""
			},
			wantErr: "Gemini model",
		},
		{
			name:    "timeout too short",
			mutate:  func(c *Config) { c.AnalyzeTimeout = 100 * time.Millisecond },
			wantErr: "analyze timeout",
		},
		{
			name:    "timeout too long",
			mutate:  func(c *Config) { c.AnalyzeTimeout = time.Hour },
			wantErr: "analyze timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
