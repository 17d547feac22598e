// Package config loads roundops settings from a .env file, the process
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults
const (
	DefaultPort        = 8082
	DefaultDBPath      = "roundops.db"
	DefaultLogLevel    = "info"
	DefaultPageSize    = 25
	DefaultSessionIdle = 2 * time.Hour
)

// Config holds everything the server needs at startup
type Config struct {
	Port          int
	DBPath        string
	AdminPassword string
	LogLevel      string
	EventsURL     string
	EventsSecret  string
	CORSOrigins   []string
	PageSize      int
	CheckInURL    string
	SessionIdle   time.Duration

	OpenBrowser bool
	NoKeyboard  bool
	NoBanner    bool
	ShowVersion bool
}

// env resolves variables from the process environment first and the
// .env file second.
type env struct {
	file map[string]string
}

func (e env) get(key string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return e.file[key]
}

func (e env) int(key string, def int) (int, error) {
	v := strings.TrimSpace(e.get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

// Load reads ./.env (if present), the environment and args
func Load(args []string) (*Config, error) {
	return LoadFile(".env", args)
}

// LoadFile is Load with an explicit .env path. A missing file is not an error.
func LoadFile(envFile string, args []string) (*Config, error) {
	fileVars, err := godotenv.Read(envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
	}
	e := env{file: fileVars}

	cfg := &Config{
		DBPath:        e.get("ROUNDOPS_DB"),
		AdminPassword: e.get("ROUNDOPS_ADMIN_PASSWORD"),
		LogLevel:      e.get("ROUNDOPS_LOG_LEVEL"),
		EventsURL:     e.get("EVENTS_API_URL"),
		EventsSecret:  e.get("EVENTS_API_SECRET"),
		CheckInURL:    e.get("ROUNDOPS_CHECKIN_URL"),
		CORSOrigins:   splitList(e.get("ROUNDOPS_CORS_ORIGINS")),
	}
	if cfg.Port, err = e.int("ROUNDOPS_PORT", DefaultPort); err != nil {
		return nil, err
	}
	if cfg.PageSize, err = e.int("ROUNDOPS_PAGE_SIZE", DefaultPageSize); err != nil {
		return nil, err
	}
	cfg.SessionIdle = DefaultSessionIdle
	if v := strings.TrimSpace(e.get("ROUNDOPS_SESSION_IDLE")); v != "" {
		if cfg.SessionIdle, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("invalid ROUNDOPS_SESSION_IDLE: %w", err)
		}
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	fset := flag.NewFlagSet("roundops", flag.ContinueOnError)
	fset.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	fset.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	fset.StringVar(&cfg.AdminPassword, "adminpw", cfg.AdminPassword, "Operator password (auto-generated if not set)")
	fset.StringVar(&cfg.LogLevel, "loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fset.StringVar(&cfg.EventsURL, "events-url", cfg.EventsURL, "Events backend base URL")
	fset.BoolVar(&cfg.OpenBrowser, "open", false, "Open the dashboard in a browser on start")
	fset.BoolVar(&cfg.NoKeyboard, "nokeyboard", false, "Disable keyboard shortcuts")
	fset.BoolVar(&cfg.NoBanner, "nobanner", false, "Skip the startup banner")
	fset.BoolVar(&cfg.ShowVersion, "version", false, "Show version and exit")
	fset.Usage = func() { fmt.Fprint(fset.Output(), Usage) }
	if err := fset.Parse(args); err != nil {
		return nil, err
	}

	if cfg.ShowVersion {
		return cfg, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and required values
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.PageSize < 1 || c.PageSize > 200 {
		return fmt.Errorf("page size must be between 1 and 200, got %d", c.PageSize)
	}
	if c.EventsURL == "" {
		return errors.New("events backend URL is required (EVENTS_API_URL or -events-url)")
	}
	if !strings.HasPrefix(c.EventsURL, "http://") && !strings.HasPrefix(c.EventsURL, "https://") {
		return fmt.Errorf("events backend URL must be http(s): %s", c.EventsURL)
	}
	if c.SessionIdle <= 0 {
		return fmt.Errorf("session idle timeout must be positive, got %s", c.SessionIdle)
	}
	return nil
}

// Addr is the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Usage is printed for -help
const Usage = `roundops - festival round operations service

Usage:
  roundops [options]

Options:
  -port int          HTTP server port (default 8082, env ROUNDOPS_PORT)
  -db string         SQLite database path (default "roundops.db", env ROUNDOPS_DB)
  -adminpw str       Operator password (auto-generated if not set, env ROUNDOPS_ADMIN_PASSWORD)
  -loglevel str      Log level: debug, info, warn, error (default "info", env ROUNDOPS_LOG_LEVEL)
  -events-url str    Events backend base URL (env EVENTS_API_URL)
  -open              Open the dashboard in a browser on start
  -nokeyboard        Disable keyboard shortcuts
  -nobanner          Skip the startup banner
  -version           Show version and exit
  -help              Show this help message

Environment only:
  EVENTS_API_SECRET       HS256 key for backend request tokens
  ROUNDOPS_CORS_ORIGINS   Comma-separated dashboard origins
  ROUNDOPS_PAGE_SIZE      Default roster page size (25)
  ROUNDOPS_CHECKIN_URL    Public participant check-in base URL
  ROUNDOPS_SESSION_IDLE   Close round sessions idle this long (2h)

Keyboard Shortcuts (when enabled):
  a              Open dashboard in browser
  h              Toggle HTTP request logging
  l              Cycle log level (debug -> info -> warn -> error)
  q              Quit server
  ?              Show keyboard help
`
