package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var envKeys = []string{
	"ROUNDOPS_PORT", "ROUNDOPS_DB", "ROUNDOPS_ADMIN_PASSWORD", "ROUNDOPS_LOG_LEVEL",
	"EVENTS_API_URL", "EVENTS_API_SECRET", "ROUNDOPS_CORS_ORIGINS", "ROUNDOPS_PAGE_SIZE",
	"ROUNDOPS_CHECKIN_URL", "ROUNDOPS_SESSION_IDLE",
}

// clearEnv unsets every variable the loader reads for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	return path
}

func missingFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

// TestLoad_Defaults tests the defaults when only the backend URL is given
func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("EVENTS_API_URL", "http://events.local")

	cfg, err := LoadFile(missingFile(t), nil)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Port != DefaultPort || cfg.DBPath != DefaultDBPath || cfg.LogLevel != DefaultLogLevel {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.PageSize != DefaultPageSize || cfg.SessionIdle != DefaultSessionIdle {
		t.Errorf("unexpected page size %d or idle %s", cfg.PageSize, cfg.SessionIdle)
	}
	if cfg.Addr() != ":8082" {
		t.Errorf("expected :8082, got %s", cfg.Addr())
	}
}

// TestLoad_EnvFile tests that .env values are read and the environment wins over them
func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	path := writeEnvFile(t, strings.Join([]string{
		"EVENTS_API_URL=https://events.example.org/api",
		"EVENTS_API_SECRET=s3cret",
		"ROUNDOPS_PORT=9000",
		"ROUNDOPS_CORS_ORIGINS=http://a.test, http://b.test,",
		"ROUNDOPS_SESSION_IDLE=30m",
	}, "\n"))
	t.Setenv("ROUNDOPS_PORT", "9100")

	cfg, err := LoadFile(path, nil)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.EventsURL != "https://events.example.org/api" || cfg.EventsSecret != "s3cret" {
		t.Errorf("unexpected backend settings %+v", cfg)
	}
	if cfg.Port != 9100 {
		t.Errorf("expected environment port 9100, got %d", cfg.Port)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("unexpected origins %v", cfg.CORSOrigins)
	}
	if cfg.SessionIdle != 30*time.Minute {
		t.Errorf("expected 30m idle, got %s", cfg.SessionIdle)
	}
}

// TestLoad_FlagsOverride tests that flags take precedence over the environment
func TestLoad_FlagsOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("EVENTS_API_URL", "http://env.local")
	t.Setenv("ROUNDOPS_DB", "env.db")

	cfg, err := LoadFile(missingFile(t), []string{"-port", "8443", "-db", "flag.db", "-events-url", "http://flag.local", "-open", "-nokeyboard"})
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Port != 8443 || cfg.DBPath != "flag.db" || cfg.EventsURL != "http://flag.local" {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if !cfg.OpenBrowser || !cfg.NoKeyboard {
		t.Error("expected boolean flags set")
	}
}

// TestLoad_Invalid tests that bad values fail startup
func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
		want string
	}{
		{"missing backend", nil, nil, "events backend URL is required"},
		{"bad port", map[string]string{"ROUNDOPS_PORT": "eighty"}, nil, "invalid ROUNDOPS_PORT"},
		{"port out of range", nil, []string{"-port", "70000"}, "port must be between"},
		{"page size", map[string]string{"ROUNDOPS_PAGE_SIZE": "0"}, nil, "page size must be between"},
		{"scheme", nil, []string{"-events-url", "ftp://x"}, "must be http(s)"},
		{"idle", map[string]string{"ROUNDOPS_SESSION_IDLE": "soon"}, nil, "invalid ROUNDOPS_SESSION_IDLE"},
		{"unknown flag", nil, []string{"-bogus"}, "flag provided but not defined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if tt.name != "missing backend" && tt.name != "scheme" {
				t.Setenv("EVENTS_API_URL", "http://events.local")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadFile(missingFile(t), tt.args)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

// TestLoad_VersionSkipsValidation tests that -version works without a backend URL
func TestLoad_VersionSkipsValidation(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFile(missingFile(t), []string{"-version"})
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if !cfg.ShowVersion {
		t.Error("expected ShowVersion")
	}
}
