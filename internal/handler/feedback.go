package handler

import (
	"encoding/json"
	"net/http"

	"github.com/segni49/plugpost/internal/domain"
)

// POST /feedback
func (h *Handler) RecordFeedback(w http.ResponseWriter, r *http.Request) {
	userID := userFrom(r)

	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid request body")
		return
	}
	if req.PostID == "" {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "post_id is required")
		return
	}
	fb, err := domain.ParseFeedback(req.Feedback)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.service.RecordFeedback(r.Context(), userID, req.PostID, fb, req.Reason); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, OKResponse{Status: "ok"})
}
