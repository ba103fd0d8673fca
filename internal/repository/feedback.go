package repository

import (
	"context"
	"fmt"

	"github.com/segni49/plugpost/internal/domain"
)

func (r *Repository) StoreFeedback(ctx context.Context, rec *domain.FeedbackRecord) error {
	if _, err := r.pool.Exec(ctx,
		`INSERT INTO feedback (user_id, post_id, feedback, reason, recorded_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		rec.UserID, rec.PostID, string(rec.Feedback), rec.Reason, rec.RecordedAt,
	); err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}
