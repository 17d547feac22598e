package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	if len(h.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Public
	r.Get("/healthz", h.handleHealth)
	r.Post("/api/auth/login", h.handleLogin)
	r.Post("/api/auth/logout", h.handleLogout)
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWs)
	}

	// Operator API (protected)
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAuthAPI)
		r.Use(middleware.Timeout(60 * time.Second))

		// Sessions
		r.Get("/api/sessions", h.handleListSessions)
		r.Post("/api/sessions", h.handleOpenSession)
		r.Get("/api/sessions/{sid}", h.handleGetSession)
		r.Delete("/api/sessions/{sid}", h.handleCloseSession)
		r.Post("/api/sessions/{sid}/refresh", h.handleRefreshSession)

		// Selection
		r.Post("/api/sessions/{sid}/selection/toggle-all", h.handleToggleAll)
		r.Post("/api/sessions/{sid}/selection/toggle", h.handleToggleEntry)
		r.Delete("/api/sessions/{sid}/selection", h.handleClearSelection)

		// Status batches
		r.Post("/api/sessions/{sid}/status", h.handleApplyStatus)

		// Uncheck-in
		r.Post("/api/sessions/{sid}/delete", h.handleRequestDelete)
		r.Post("/api/sessions/{sid}/delete/confirm", h.handleConfirmDelete)
		r.Delete("/api/sessions/{sid}/delete", h.handleCancelDelete)

		// Podium
		r.Post("/api/sessions/{sid}/podium/{slot}", h.handlePlaceClick)
		r.Delete("/api/sessions/{sid}/podium/{slot}", h.handleClearPlace)
		r.Post("/api/sessions/{sid}/rows/click", h.handleRowClick)
		r.Post("/api/sessions/{sid}/winners", h.handleSubmitWinners)

		// Feedback banners
		r.Delete("/api/sessions/{sid}/feedback", h.handleDismissFeedback)
		r.Delete("/api/sessions/{sid}/prize-feedback", h.handleDismissPrizeFeedback)

		// Assignment mode
		r.Get("/api/mode", h.handleGetMode)
		r.Put("/api/sessions/{sid}/mode", h.handleSetMode)

		// Events
		r.Get("/api/events/{eventID}/rounds/{roundNo}/checkin-qr", h.handleCheckInQR)
		r.Get("/api/events/{eventID}/rounds/{roundNo}/checkin-url", h.handleCheckInURL)
		r.Delete("/api/events/{eventID}/prizes", h.handleFlushWinners)

		// Operation history
		r.Get("/api/history", h.handleListHistory)
		r.Get("/api/history/stats", h.handleHistoryStats)

		// Database management
		r.Post("/api/admin/reset-database", h.handleResetDatabase)
	})

	return r
}
