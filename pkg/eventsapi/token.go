package eventsapi

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the lifetime of a service token
const DefaultTokenTTL = 5 * time.Minute

// TokenIssuer is the iss claim of service tokens
const TokenIssuer = "roundops"

// TokenSource signs short-lived HS256 service tokens and reuses a token until
// it is close to expiry.
type TokenSource struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	current string
	expires time.Time
}

// NewTokenSource creates a token source signing with secret
func NewTokenSource(secret string, ttl time.Duration) *TokenSource {
	return &TokenSource{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Token returns a valid signed token, minting a new one when the cached
// token has less than a fifth of its lifetime left.
func (s *TokenSource) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.current != "" && now.Add(s.ttl/5).Before(s.expires) {
		return s.current, nil
	}

	expires := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    TokenIssuer,
		Subject:   "operator",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", err
	}

	s.current = signed
	s.expires = expires
	return signed, nil
}

// ParseToken verifies a service token signed with secret. The events backend
// side of the contract; used by tests and the fake backend.
func ParseToken(secret, token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(TokenIssuer))
	if err != nil {
		return nil, err
	}
	return claims, nil
}
