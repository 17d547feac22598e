package handlers

import (
	"net/http"

	"github.com/abrezinsky/roundops/internal/auth"
)

// handleLogin checks the operator password and starts a session
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	token, ok := h.Auth.Login(req.Password)
	if !ok {
		respondError(w, Unauthorized("Invalid password"))
		return
	}

	auth.SetSessionCookie(w, token)
	respondOK(w, LoginResponse{Token: token})
}

// handleLogout ends the caller's session
func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := auth.TokenFromRequest(r); token != "" {
		h.Auth.Logout(token)
	}

	auth.ClearSessionCookie(w)
	respondSuccess(w, "Logged out")
}
