package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/abrezinsky/roundops/internal/models"
	"github.com/abrezinsky/roundops/internal/rounds"
)

// respondOperation writes the outcome of an operation with the new view
func respondOperation(w http.ResponseWriter, ctrl *rounds.Controller, fb rounds.Feedback) {
	resp := OperationResponse{State: ctrl.Snapshot()}
	if fb != nil {
		resp.Feedback = rounds.NewBanner(fb, time.Time{})
	}
	respondOK(w, resp)
}

func (h *Handlers) handleToggleAll(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	ctrl.ToggleAll()
	respondOperation(w, ctrl, nil)
}

func (h *Handlers) handleToggleEntry(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req EntryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := ctrl.ToggleEntry(req.EntryID); err != nil {
		respondError(w, err)
		return
	}
	respondOperation(w, ctrl, nil)
}

func (h *Handlers) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	ctrl.ClearSelection()
	respondOperation(w, ctrl, nil)
}

// handleApplyStatus applies a status to the selection. In auto mode the
// rest of the roster receives the complementary status.
func (h *Handlers) handleApplyStatus(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req StatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	status := models.ParticipantStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	fb, err := ctrl.ApplyStatus(r.Context(), status)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOperation(w, ctrl, fb)
}

func (h *Handlers) handleRequestDelete(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req EntryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := ctrl.RequestDelete(req.EntryID); err != nil {
		respondError(w, err)
		return
	}
	respondOperation(w, ctrl, nil)
}

func (h *Handlers) handleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	fb, err := ctrl.ConfirmDelete(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOperation(w, ctrl, fb)
}

func (h *Handlers) handleCancelDelete(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	ctrl.CancelDelete()
	respondOperation(w, ctrl, nil)
}

func (h *Handlers) handlePlaceClick(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	slot, err := parseIntParam(r, "slot")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := ctrl.HandlePlaceClick(models.PrizeSlot(slot)); err != nil {
		respondError(w, err)
		return
	}
	respondOperation(w, ctrl, nil)
}

func (h *Handlers) handleClearPlace(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	slot, err := parseIntParam(r, "slot")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := ctrl.ClearWinnerSlot(models.PrizeSlot(slot)); err != nil {
		respondError(w, err)
		return
	}
	respondOperation(w, ctrl, nil)
}

func (h *Handlers) handleRowClick(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req EntryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := ctrl.HandleRowClick(req.EntryID); err != nil {
		respondError(w, err)
		return
	}
	respondOperation(w, ctrl, nil)
}

func (h *Handlers) handleSubmitWinners(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	fb, err := ctrl.SubmitWinners(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOperation(w, ctrl, fb)
}

func (h *Handlers) handleDismissFeedback(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	ctrl.DismissFeedback()
	respondOperation(w, ctrl, nil)
}

func (h *Handlers) handleDismissPrizeFeedback(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	ctrl.DismissPrizeFeedback()
	respondOperation(w, ctrl, nil)
}

func (h *Handlers) handleGetMode(w http.ResponseWriter, r *http.Request) {
	respondOK(w, newModeResponse(h.Settings.Mode(r.Context())))
}

// handleSetMode switches the session's mode. The choice is persisted and
// broadcast to other dashboards as the new default.
func (h *Handlers) handleSetMode(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req ModeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Auto == nil {
		respondError(w, BadRequest("Invalid request: auto is required"))
		return
	}
	respondOK(w, newModeResponse(ctrl.SetAutoMode(r.Context(), *req.Auto)))
}
