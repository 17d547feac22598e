package handlers

import (
	"context"

	"github.com/abrezinsky/roundops/internal/auth"
	"github.com/abrezinsky/roundops/internal/services"
	"github.com/abrezinsky/roundops/internal/websocket"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Rounds   services.RoundServicer
	Settings services.SettingsServicer
	Results  services.ResultsServicer
	CheckIn  services.CheckInServicer
	History  services.HistoryServicer
	Auth     *auth.Auth
	Hub      *websocket.Hub
	DB       Pinger
	Log      HTTPLogger

	// AllowedOrigins configures CORS for browser dashboards served elsewhere
	AllowedOrigins []string
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// Deps groups the services New wires into the handlers
type Deps struct {
	Rounds   services.RoundServicer
	Settings services.SettingsServicer
	Results  services.ResultsServicer
	CheckIn  services.CheckInServicer
	History  services.HistoryServicer
}

// New creates a new Handlers instance with all dependencies
func New(deps Deps, adminAuth *auth.Auth, hub *websocket.Hub, db Pinger, log HTTPLogger, allowedOrigins []string) *Handlers {
	return &Handlers{
		Rounds:         deps.Rounds,
		Settings:       deps.Settings,
		Results:        deps.Results,
		CheckIn:        deps.CheckIn,
		History:        deps.History,
		Auth:           adminAuth,
		Hub:            hub,
		DB:             db,
		Log:            log,
		AllowedOrigins: allowedOrigins,
	}
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

// NewForTesting creates a Handlers instance with a known operator password
// and no websocket hub.
func NewForTesting(deps Deps) *Handlers {
	return New(deps, auth.New("test-password"), nil, nil, NoopHTTPLogger{}, nil)
}
