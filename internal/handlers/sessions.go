package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/roundops/internal/rounds"
)

// controller resolves the {sid} URL parameter, writing the error response
// when the session is unknown.
func (h *Handlers) controller(w http.ResponseWriter, r *http.Request) (*rounds.Controller, bool) {
	ctrl, err := h.Rounds.Controller(chi.URLParam(r, "sid"))
	if err != nil {
		respondError(w, err)
		return nil, false
	}
	return ctrl, true
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Sessions: len(h.Rounds.List())}
	if h.Hub != nil {
		resp.WSClients = h.Hub.ClientCount()
	}
	if h.DB != nil {
		resp.Database = "ok"
		if err := h.DB.Ping(r.Context()); err != nil {
			resp.Status, resp.Database = "degraded", "unreachable"
			respondJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}
	respondOK(w, resp)
}

func (h *Handlers) handleListSessions(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.Rounds.List())
}

// handleOpenSession loads a round roster and starts a session on it
func (h *Handlers) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req OpenSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	info, err := h.Rounds.Open(r.Context(), req.EventID, req.RoundNo, req.PageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	ctrl, err := h.Rounds.Controller(info.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, SessionResponse{Session: info, State: ctrl.Snapshot()})
}

// handleGetSession returns the session view, moving to ?page=n first when given
func (h *Handlers) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	page, err := parseIntQuery(r, "page", 0)
	if err != nil {
		respondError(w, err)
		return
	}
	if page > 0 {
		ctrl.SetPage(page)
	}
	respondOK(w, SessionResponse{State: ctrl.Snapshot()})
}

func (h *Handlers) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.Rounds.Close(chi.URLParam(r, "sid")); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

func (h *Handlers) handleRefreshSession(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sid")
	if err := h.Rounds.Refresh(r.Context(), sid); err != nil {
		respondError(w, err)
		return
	}
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	respondOK(w, SessionResponse{State: ctrl.Snapshot()})
}
