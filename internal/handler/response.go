package handler

import "github.com/segni49/plugpost/internal/domain"

type RecommendationResponse struct {
	UserID          string                          `json:"user_id"`
	Recommendations []domain.EnrichedRecommendation `json:"recommendations"`
	Metadata        ResponseMeta                    `json:"metadata"`
}

type ResponseMeta struct {
	BatchID     string `json:"batch_id"`
	GeneratedAt string `json:"generated_at"`
	TotalCount  int    `json:"total_count"`
}

type InteractionRequest struct {
	PostID string `json:"post_id"`
	Action string `json:"action"`
}

type FeedbackRequest struct {
	PostID   string `json:"post_id"`
	Feedback string `json:"feedback"`
	Reason   string `json:"reason,omitempty"`
}

type OKResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
