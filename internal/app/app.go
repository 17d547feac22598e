// Package app wires the repository, services, websocket hub and HTTP
// handlers together and runs the server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/itbasis/go-clock"

	"github.com/abrezinsky/roundops/internal/auth"
	"github.com/abrezinsky/roundops/internal/config"
	"github.com/abrezinsky/roundops/internal/handlers"
	"github.com/abrezinsky/roundops/internal/logger"
	"github.com/abrezinsky/roundops/internal/repository"
	"github.com/abrezinsky/roundops/internal/services"
	"github.com/abrezinsky/roundops/internal/websocket"
	"github.com/abrezinsky/roundops/pkg/eventsapi"
)

// App holds all application dependencies
type App struct {
	log         logger.Logger
	handlers    *handlers.Handlers
	repo        *repository.Repository
	rounds      *services.RoundService
	sessionIdle time.Duration

	mu          sync.Mutex
	server      *http.Server
	cancelSweep context.CancelFunc
	closed      bool
}

// New creates and initializes a new application instance
func New(log logger.Logger, cfg *config.Config, client eventsapi.Client, adminAuth *auth.Auth) (*App, error) {
	repo, err := repository.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	clk := clock.New()
	settingsService := services.NewSettingsService(log, repo)
	historyService := services.NewHistoryService(log, repo, clk)
	roundService := services.NewRoundService(log, client, settingsService, historyService, clk, cfg.PageSize)
	resultsService := services.NewResultsService(log, client, roundService, historyService)
	checkInService := services.NewCheckInService(log, cfg.CheckInURL)

	hub := websocket.New(log, settingsService)
	hub.Start()
	settingsService.SetBroadcaster(hub)
	roundService.SetBroadcaster(hub)

	h := handlers.New(handlers.Deps{
		Rounds:   roundService,
		Settings: settingsService,
		Results:  resultsService,
		CheckIn:  checkInService,
		History:  historyService,
	}, adminAuth, hub, repo, log, cfg.CORSOrigins)

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		log:         log,
		handlers:    h,
		repo:        repo,
		rounds:      roundService,
		sessionIdle: cfg.SessionIdle,
		cancelSweep: cancel,
	}
	go a.sweepIdleSessions(ctx, sweepInterval(cfg.SessionIdle))

	return a, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Run starts the HTTP server and blocks until it stops. A server stopped by
// Close returns nil.
func (a *App) Run(addr string) error {
	ip := getPreferredIP(realNetworkProvider{})
	port := addr
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		port = addr[i:]
	}
	a.log.Info("Server starting", "url", fmt.Sprintf("http://%s%s", ip, port))

	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return http.ErrServerClosed
	}
	a.server = srv
	a.mu.Unlock()

	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Close stops the server and background work and closes the database.
// Safe to call more than once.
func (a *App) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	srv := a.server
	a.mu.Unlock()

	a.cancelSweep()
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			a.log.Warn("Server shutdown incomplete", "error", err)
		}
	}
	if err := a.repo.Close(); err != nil {
		a.log.Warn("Failed to close database", "error", err)
	}
}

// sweepInterval checks for idle sessions a few times per idle window
func sweepInterval(idle time.Duration) time.Duration {
	d := idle / 4
	if d < time.Minute {
		d = time.Minute
	}
	return d
}

// sweepIdleSessions closes round sessions nobody has touched for sessionIdle
func (a *App) sweepIdleSessions(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.rounds.SweepIdle(a.sessionIdle)
		}
	}
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

// realInterface wraps a real net.Interface
type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags {
	return r.iface.Flags
}

func (r realInterface) Addrs() ([]net.Addr, error) {
	return r.iface.Addrs()
}

// networkProvider is an interface for getting network interfaces (for testing)
type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

// realNetworkProvider implements networkProvider using actual net package
type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the best IP address for LAN access.
// Prefers private network addresses (192.168.x.x, 10.x.x.x, 172.16-31.x.x).
// Falls back to localhost if no suitable address is found.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var candidates []net.IP

	for _, iface := range ifaces {
		// Skip down, loopback, and point-to-point interfaces
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}

			// Only consider IPv4 addresses
			if ip == nil || ip.To4() == nil {
				continue
			}

			// Skip loopback
			if ip.IsLoopback() {
				continue
			}

			candidates = append(candidates, ip)
		}
	}

	// Prefer private network addresses
	for _, ip := range candidates {
		ipStr := ip.String()
		if strings.HasPrefix(ipStr, "192.168.") ||
			strings.HasPrefix(ipStr, "10.") ||
			isPrivate172(ip) {
			return ipStr
		}
	}

	// Fall back to any non-loopback if no private address found
	if len(candidates) > 0 {
		return candidates[0].String()
	}

	return "localhost"
}

// isPrivate172 checks if IP is in 172.16.0.0/12 range
func isPrivate172(ip net.IP) bool {
	if ip4 := ip.To4(); ip4 != nil {
		return ip4[0] == 172 && ip4[1] >= 16 && ip4[1] <= 31
	}
	return false
}
