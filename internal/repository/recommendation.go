package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/segni49/plugpost/internal/domain"
)

// StoreBatch persists the batch and its items atomically so cooldown and
// attribution only ever see fully assembled batches.
func (r *Repository) StoreBatch(ctx context.Context, batch *domain.RecommendationBatch) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin batch tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// pgx encodes a nil slice as SQL NULL and requested_types is NOT NULL.
	requested := batch.RequestedTypes
	if requested == nil {
		requested = []string{}
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO recommendation_batches (id, user_id, generated_at, requested_types)
		 VALUES ($1, $2, $3, $4)`,
		batch.ID, batch.UserID, batch.GeneratedAt, requested,
	); err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}

	for _, item := range batch.Items {
		if _, err := tx.Exec(ctx,
			`INSERT INTO recommendation_items (batch_id, post_id, strategy, raw_score, normalized_score, rank, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			batch.ID, item.PostID, string(item.Strategy), item.RawScore,
			item.NormalizedScore, item.Rank, string(domain.ItemGenerated),
		); err != nil {
			return fmt.Errorf("insert batch item %s: %w", item.PostID, err)
		}
	}
	return tx.Commit(ctx)
}

// RecentPostIDs lists posts recommended to the user inside the cooldown
// window. Older items are expired and eligible again.
func (r *Repository) RecentPostIDs(ctx context.Context, userID string, window time.Duration) (map[string]bool, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT ri.post_id
		 FROM recommendation_items ri
		 JOIN recommendation_batches rb ON rb.id = ri.batch_id
		 WHERE rb.user_id = $1 AND rb.generated_at > $2`,
		userID, time.Now().Add(-window),
	)
	if err != nil {
		return nil, fmt.Errorf("query cooldown posts for user %s: %w", userID, err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var postID string
		if err := rows.Scan(&postID); err != nil {
			return nil, fmt.Errorf("scan cooldown post: %w", err)
		}
		out[postID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cooldown posts: %w", err)
	}
	return out, nil
}

// UpdateItemStatus advances the item lifecycle; transitions never move
// backwards.
func (r *Repository) UpdateItemStatus(ctx context.Context, userID, postID string, status domain.ItemStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE recommendation_items ri
		 SET status = $3
		 FROM recommendation_batches rb
		 WHERE ri.batch_id = rb.id AND rb.user_id = $1 AND ri.post_id = $2
		   AND (CASE ri.status WHEN 'generated' THEN 0 WHEN 'seen' THEN 1 WHEN 'interacted' THEN 2 ELSE 3 END)
		     < (CASE $3 WHEN 'generated' THEN 0 WHEN 'seen' THEN 1 WHEN 'interacted' THEN 2 ELSE 3 END)`,
		userID, postID, string(status),
	)
	if err != nil {
		return fmt.Errorf("update item status for post %s: %w", postID, err)
	}
	return nil
}

// Attribution resolves the strategy that most recently recommended the post
// to the user inside the window.
func (r *Repository) Attribution(ctx context.Context, userID, postID string, window time.Duration) (domain.Strategy, bool, error) {
	var strategy string
	err := r.pool.QueryRow(ctx,
		`SELECT ri.strategy
		 FROM recommendation_items ri
		 JOIN recommendation_batches rb ON rb.id = ri.batch_id
		 WHERE rb.user_id = $1 AND ri.post_id = $2 AND rb.generated_at > $3
		 ORDER BY rb.generated_at DESC
		 LIMIT 1`,
		userID, postID, time.Now().Add(-window),
	).Scan(&strategy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("attribution for post %s: %w", postID, err)
	}
	return domain.Strategy(strategy), true, nil
}
