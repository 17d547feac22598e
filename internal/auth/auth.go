// Package auth guards the operator API with a shared password and
// short-lived session tokens.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/itbasis/go-clock"
)

const (
	CookieName    = "roundops_session"
	SessionExpiry = 12 * time.Hour
)

// Festival-themed words for password generation
var festivalWords = []string{
	"lantern", "stage", "encore", "banner", "ribbon",
	"podium", "parade", "drum", "confetti", "tent",
	"fiddle", "juggler", "carousel", "medal", "torch",
	"harbor", "maple", "comet", "meadow",
}

// Auth handles operator authentication
type Auth struct {
	password string
	clock    clock.Clock
	sessions map[string]time.Time
	mu       sync.RWMutex
}

// New creates a new Auth instance with the given password
func New(password string) *Auth {
	return NewWithClock(password, clock.New())
}

// NewWithClock is New with an explicit time source.
func NewWithClock(password string, clk clock.Clock) *Auth {
	return &Auth{
		password: password,
		clock:    clk,
		sessions: make(map[string]time.Time),
	}
}

// GeneratePassword creates a random 3-word password
func GeneratePassword() string {
	words := make([]string, 3)
	for i := range words {
		words[i] = festivalWords[randomInt(len(festivalWords))]
	}
	return strings.Join(words, "-")
}

// Login validates the password and returns a session token if valid
func (a *Auth) Login(password string) (string, bool) {
	if subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) != 1 {
		return "", false
	}

	token := generateToken()
	a.mu.Lock()
	a.sessions[token] = a.clock.Now().Add(SessionExpiry)
	a.mu.Unlock()

	return token, true
}

// Logout invalidates a session
func (a *Auth) Logout(token string) {
	a.mu.Lock()
	delete(a.sessions, token)
	a.mu.Unlock()
}

// ValidateSession checks if a session token is valid
func (a *Auth) ValidateSession(token string) bool {
	a.mu.RLock()
	expiry, exists := a.sessions[token]
	a.mu.RUnlock()

	if !exists {
		return false
	}

	if a.clock.Now().After(expiry) {
		a.Logout(token)
		return false
	}

	return true
}

// SessionCount returns the number of live sessions, pruning expired ones.
func (a *Auth) SessionCount() int {
	now := a.clock.Now()
	a.mu.Lock()
	defer a.mu.Unlock()
	for token, expiry := range a.sessions {
		if now.After(expiry) {
			delete(a.sessions, token)
		}
	}
	return len(a.sessions)
}

// TokenFromRequest extracts the session token from the cookie or an
// Authorization: Bearer header.
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// GetSessionFromRequest reports whether the request carries a valid session.
func (a *Auth) GetSessionFromRequest(r *http.Request) bool {
	token := TokenFromRequest(r)
	if token == "" {
		return false
	}
	return a.ValidateSession(token)
}

// RequireAuthAPI is middleware that returns 401 for unauthenticated API requests
func (a *Auth) RequireAuthAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.GetSessionFromRequest(r) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"code":"UNAUTHORIZED","message":"Unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SetSessionCookie sets the session cookie on the response
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(SessionExpiry.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func generateToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func randomInt(max int) int {
	b := make([]byte, 1)
	rand.Read(b)
	return int(b[0]) % max
}
