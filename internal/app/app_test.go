package app

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/abrezinsky/roundops/internal/auth"
	"github.com/abrezinsky/roundops/internal/config"
	"github.com/abrezinsky/roundops/internal/logger"
	"github.com/abrezinsky/roundops/internal/models"
	"github.com/abrezinsky/roundops/pkg/eventsapi"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:        0,
		DBPath:      filepath.Join(t.TempDir(), "roundops.db"),
		EventsURL:   "http://events.local",
		PageSize:    config.DefaultPageSize,
		CheckInURL:  "https://checkin.example.org",
		SessionIdle: config.DefaultSessionIdle,
	}
}

func createTestApp(t *testing.T, opts ...eventsapi.MockOption) *App {
	t.Helper()
	a, err := New(logger.Discard(), testConfig(t), eventsapi.NewMockClient(opts...), auth.New("test-password"))
	if err != nil {
		t.Fatalf("failed to create test app: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

// TestNew_InitializesApp tests that every dependency is wired
func TestNew_InitializesApp(t *testing.T) {
	a := createTestApp(t)

	if a.handlers == nil || a.repo == nil || a.rounds == nil {
		t.Fatalf("expected dependencies to be initialized: %+v", a)
	}
	if a.handlers.Hub == nil {
		t.Error("expected websocket hub to be wired")
	}
}

// TestNew_FailsWithBadDBPath tests that an unusable database path fails startup
func TestNew_FailsWithBadDBPath(t *testing.T) {
	cfg := testConfig(t)
	cfg.DBPath = "/nonexistent/path/db.sqlite"

	_, err := New(logger.Discard(), cfg, eventsapi.NewMockClient(), auth.New("test-password"))
	if err == nil {
		t.Error("expected error for invalid db path")
	}
}

// TestApp_Router_ServesRequests tests the health check through the wired router
func TestApp_Router_ServesRequests(t *testing.T) {
	a := createTestApp(t)
	server := httptest.NewServer(a.Router())
	defer server.Close()

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for /healthz, got %d", resp.StatusCode)
	}
}

// TestApp_Close_Idempotent tests that Close can be called repeatedly
func TestApp_Close_Idempotent(t *testing.T) {
	a := createTestApp(t)

	a.Close()
	a.Close()

	if err := a.Run(":0"); err != http.ErrServerClosed {
		t.Errorf("expected ErrServerClosed after Close, got %v", err)
	}
}

// TestApp_Run_StopsOnClose tests that Run returns nil after Close
func TestApp_Run_StopsOnClose(t *testing.T) {
	a := createTestApp(t)

	done := make(chan error, 1)
	go func() {
		done <- a.Run("127.0.0.1:0")
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		a.mu.Lock()
		started := a.server != nil
		a.mu.Unlock()
		if started || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	a.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected nil from Run after Close, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}

// TestSweepInterval tests the sweep cadence bounds
func TestSweepInterval(t *testing.T) {
	tests := []struct {
		idle time.Duration
		want time.Duration
	}{
		{2 * time.Hour, 30 * time.Minute},
		{time.Minute, time.Minute},
		{0, time.Minute},
	}
	for _, tt := range tests {
		if got := sweepInterval(tt.idle); got != tt.want {
			t.Errorf("sweepInterval(%s) = %s, want %s", tt.idle, got, tt.want)
		}
	}
}

// TestSweepIdleSessions_ClosesStale tests that the sweeper closes idle sessions
func TestSweepIdleSessions_ClosesStale(t *testing.T) {
	a := createTestApp(t, eventsapi.WithRoster("ev-1", 1, []models.Entry{
		models.Solo{Participant: models.Participant{ParticipantID: "P1"}},
	}))
	if _, err := a.rounds.Open(context.Background(), "ev-1", 1, 0); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	// A negative idle window makes every session stale
	a.sessionIdle = -time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.sweepIdleSessions(ctx, 5*time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for len(a.rounds.List()) > 0 {
		if time.Now().After(deadline) {
			t.Fatal("expected idle session to be swept")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestIsPrivate172(t *testing.T) {
	tests := []struct {
		ip       string
		expected bool
	}{
		{"172.16.0.1", true},
		{"172.31.255.255", true},
		{"172.15.0.1", false},
		{"172.32.0.1", false},
		{"192.168.1.1", false},
		{"10.0.0.1", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			ip := net.ParseIP(tt.ip)
			result := isPrivate172(ip)
			if result != tt.expected {
				t.Errorf("isPrivate172(%s) = %v, want %v", tt.ip, result, tt.expected)
			}
		})
	}
}

func TestIsPrivate172_NilIP(t *testing.T) {
	result := isPrivate172(nil)
	if result != false {
		t.Errorf("isPrivate172(nil) = %v, want false", result)
	}
}

func TestIsPrivate172_IPv6(t *testing.T) {
	// IPv6 addresses should return false
	ip := net.ParseIP("::1")
	result := isPrivate172(ip)
	if result != false {
		t.Errorf("isPrivate172(::1) = %v, want false", result)
	}

	// IPv6 private address
	ip = net.ParseIP("fe80::1")
	result = isPrivate172(ip)
	if result != false {
		t.Errorf("isPrivate172(fe80::1) = %v, want false", result)
	}
}

// mockInterface implements networkInterface for testing
type mockInterface struct {
	flags net.Flags
	addrs []net.Addr
	err   error
}

func (m mockInterface) Flags() net.Flags {
	return m.flags
}

func (m mockInterface) Addrs() ([]net.Addr, error) {
	return m.addrs, m.err
}

// mockNetworkProvider implements networkProvider for testing
type mockNetworkProvider struct {
	interfaces []networkInterface
	err        error
}

func (m mockNetworkProvider) Interfaces() ([]networkInterface, error) {
	return m.interfaces, m.err
}

func TestGetPreferredIP_NetworkError(t *testing.T) {
	provider := mockNetworkProvider{
		err: net.ErrClosed,
	}

	ip := getPreferredIP(provider)
	if ip != "localhost" {
		t.Errorf("expected 'localhost' on error, got: %s", ip)
	}
}

func TestGetPreferredIP_InterfaceAddrsError(t *testing.T) {
	// Create an interface that will return an error when Addrs() is called
	iface := mockInterface{
		flags: net.FlagUp, // Up but not loopback
		err:   net.ErrClosed, // Addrs() returns error
	}

	provider := mockNetworkProvider{
		interfaces: []networkInterface{iface},
	}

	// This exercises the error handling path when iface.Addrs() fails
	ip := getPreferredIP(provider)
	if ip != "localhost" {
		t.Errorf("expected 'localhost' when Addrs() fails, got: %s", ip)
	}
}

func TestGetPreferredIP_WithIPAddr(t *testing.T) {
	// Test with *net.IPAddr to hit that case in the type switch
	ipAddr := &net.IPAddr{IP: net.ParseIP("192.168.1.100")}

	iface := mockInterface{
		flags: net.FlagUp,
		addrs: []net.Addr{ipAddr},
	}

	provider := mockNetworkProvider{
		interfaces: []networkInterface{iface},
	}

	ip := getPreferredIP(provider)
	if ip != "192.168.1.100" {
		t.Errorf("expected '192.168.1.100', got: %s", ip)
	}
}

func TestGetPreferredIP_PublicIPFallback(t *testing.T) {
	// Test fallback to first candidate when no private addresses
	publicIP := &net.IPNet{IP: net.ParseIP("8.8.8.8"), Mask: net.CIDRMask(24, 32)}

	iface := mockInterface{
		flags: net.FlagUp,
		addrs: []net.Addr{publicIP},
	}

	provider := mockNetworkProvider{
		interfaces: []networkInterface{iface},
	}

	ip := getPreferredIP(provider)
	if ip != "8.8.8.8" {
		t.Errorf("expected '8.8.8.8' (public IP fallback), got: %s", ip)
	}
}

func TestGetPreferredIP_LoopbackIP(t *testing.T) {
	// Test that loopback IPs are filtered even if interface flags don't indicate loopback
	// This tests defense-in-depth: interface might not be flagged as loopback but IP is
	loopbackIP := &net.IPNet{IP: net.ParseIP("127.0.0.1"), Mask: net.CIDRMask(8, 32)}
	validIP := &net.IPNet{IP: net.ParseIP("192.168.1.50"), Mask: net.CIDRMask(24, 32)}

	iface := mockInterface{
		flags: net.FlagUp, // Up but not marked as loopback
		addrs: []net.Addr{loopbackIP, validIP}, // First is loopback, second is valid
	}

	provider := mockNetworkProvider{
		interfaces: []networkInterface{iface},
	}

	ip := getPreferredIP(provider)
	// Should skip loopback and return the valid private IP
	if ip != "192.168.1.50" {
		t.Errorf("expected '192.168.1.50' (skipping loopback), got: %s", ip)
	}
}
