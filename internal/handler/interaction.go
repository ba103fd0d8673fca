package handler

import (
	"encoding/json"
	"net/http"

	"github.com/segni49/plugpost/internal/domain"
)

// POST /interactions
func (h *Handler) TrackInteraction(w http.ResponseWriter, r *http.Request) {
	userID := userFrom(r)

	var req InteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid request body")
		return
	}
	if req.PostID == "" {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "post_id is required")
		return
	}
	action, err := domain.ParseAction(req.Action)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.service.TrackInteraction(r.Context(), userID, req.PostID, action); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, OKResponse{Status: "ok"})
}
