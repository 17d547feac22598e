package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// roundParams reads the {eventID} and {roundNo} URL parameters
func roundParams(r *http.Request) (string, int, error) {
	eventID := chi.URLParam(r, "eventID")
	if eventID == "" {
		return "", 0, BadRequest("Missing eventID parameter")
	}
	roundNo, err := parseIntParam(r, "roundNo")
	if err != nil {
		return "", 0, err
	}
	return eventID, roundNo, nil
}

// handleCheckInQR serves the PNG QR code participants scan to check in
func (h *Handlers) handleCheckInQR(w http.ResponseWriter, r *http.Request) {
	eventID, roundNo, err := roundParams(r)
	if err != nil {
		respondError(w, err)
		return
	}
	size, err := parseIntQuery(r, "size", 0)
	if err != nil {
		respondError(w, err)
		return
	}

	png, err := h.CheckIn.QRCode(r.Context(), eventID, roundNo, size)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}

func (h *Handlers) handleCheckInURL(w http.ResponseWriter, r *http.Request) {
	eventID, roundNo, err := roundParams(r)
	if err != nil {
		respondError(w, err)
		return
	}
	url, err := h.CheckIn.CheckInURL(eventID, roundNo)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, CheckInURLResponse{EventID: eventID, RoundNo: roundNo, URL: url})
}

// handleFlushWinners removes every recorded winner of an event
func (h *Handlers) handleFlushWinners(w http.ResponseWriter, r *http.Request) {
	if err := h.Results.FlushWinners(r.Context(), chi.URLParam(r, "eventID")); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Winners cleared")
}

func (h *Handlers) handleListHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntQuery(r, "limit", 0)
	if err != nil {
		respondError(w, err)
		return
	}
	ops, err := h.History.List(r.Context(), r.URL.Query().Get("event_id"), limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, HistoryResponse{Operations: ops})
}

func (h *Handlers) handleHistoryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.History.Stats(r.Context(), r.URL.Query().Get("event_id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, stats)
}

func (h *Handlers) handleResetDatabase(w http.ResponseWriter, r *http.Request) {
	var req DatabaseResetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	result, err := h.Settings.ResetTables(r.Context(), req.Tables)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, result)
}
