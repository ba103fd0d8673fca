package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// GET /recommendations?limit=10&types=hybrid
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := userFrom(r)

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > 50 {
			writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	var types []string
	if typesStr := r.URL.Query().Get("types"); typesStr != "" {
		for _, t := range strings.Split(typesStr, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, t)
			}
		}
	}

	result, err := h.service.GetRecommendations(r.Context(), userID, limit, types)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, RecommendationResponse{
		UserID:          userID,
		Recommendations: result.Recommendations,
		Metadata: ResponseMeta{
			BatchID:     result.BatchID,
			GeneratedAt: result.GeneratedAt.UTC().Format(time.RFC3339),
			TotalCount:  len(result.Recommendations),
		},
	})
}
