package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/segni49/plugpost/internal/domain"
)

const recentInteractionLimit = 50

// RecordInteraction appends the interaction and folds it into the user's
// interest vector in one transaction: existing entries decay, then the
// post's category and tags are credited, clamped to the configured bound.
// Row locks serialize concurrent writers for the same user.
func (r *Repository) RecordInteraction(ctx context.Context, userID, postID string, action domain.Action) error {
	content, err := r.ContentProfile(ctx, postID)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin interaction tx: %w", err)
	}
	defer tx.Rollback(ctx)

	weight := action.Weight()
	if _, err := tx.Exec(ctx,
		`INSERT INTO interactions (user_id, post_id, action, weight, created_at)
		 VALUES ($1, $2, $3, $4, now())`,
		userID, postID, string(action), weight,
	); err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE user_interests SET affinity = affinity * $2, updated_at = now()
		 WHERE user_id = $1`,
		userID, r.scoring.DecayFactor,
	); err != nil {
		return fmt.Errorf("decay interests: %w", err)
	}

	credit := func(key string, delta float64) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO user_interests (user_id, interest_key, affinity, updated_at)
			 VALUES ($1, $2, LEAST($3, $4), now())
			 ON CONFLICT (user_id, interest_key)
			 DO UPDATE SET affinity = LEAST($4, user_interests.affinity + $3), updated_at = now()`,
			userID, key, delta, r.scoring.AffinityClamp,
		)
		return err
	}
	if content.CategoryID != "" {
		if err := credit(domain.CategoryKey(content.CategoryID), weight); err != nil {
			return fmt.Errorf("credit category: %w", err)
		}
	}
	for _, tag := range content.TagIDs {
		if err := credit(domain.TagKey(tag), weight*r.scoring.TagCredit); err != nil {
			return fmt.Errorf("credit tag %s: %w", tag, err)
		}
	}

	return tx.Commit(ctx)
}

// Profile returns the user's interests and recent interactions; an unseen
// user gets an empty default profile, never an error.
func (r *Repository) Profile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	profile := domain.NewUserProfile(userID)

	rows, err := r.pool.Query(ctx,
		`SELECT interest_key, affinity FROM user_interests WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query interests for user %s: %w", userID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var affinity float64
		if err := rows.Scan(&key, &affinity); err != nil {
			return nil, fmt.Errorf("scan interest: %w", err)
		}
		profile.Interests[key] = affinity
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interests: %w", err)
	}

	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM interactions WHERE user_id = $1`, userID,
	).Scan(&profile.InteractionCount); err != nil {
		return nil, fmt.Errorf("count interactions: %w", err)
	}

	recents, err := r.recentInteractions(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	profile.RecentInteractions = recents
	return profile, nil
}

func (r *Repository) RecentInteractions(ctx context.Context, userID string, window time.Duration) ([]domain.Interaction, error) {
	return r.recentInteractions(ctx, userID, window)
}

func (r *Repository) recentInteractions(ctx context.Context, userID string, window time.Duration) ([]domain.Interaction, error) {
	query := `SELECT user_id, post_id, action, weight, created_at
		FROM interactions WHERE user_id = $1`
	args := []any{userID}
	if window > 0 {
		query += ` AND created_at > $2`
		args = append(args, time.Now().Add(-window))
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, recentInteractionLimit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query interactions for user %s: %w", userID, err)
	}
	defer rows.Close()

	var items []domain.Interaction
	for rows.Next() {
		var in domain.Interaction
		if err := rows.Scan(&in.UserID, &in.PostID, &in.Action, &in.Weight, &in.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		items = append(items, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interactions: %w", err)
	}
	return items, nil
}

func (r *Repository) PostWeights(ctx context.Context, userID string) (map[string]float64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT post_id, SUM(weight) FROM interactions WHERE user_id = $1 GROUP BY post_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query post weights for user %s: %w", userID, err)
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var postID string
		var weight float64
		if err := rows.Scan(&postID, &weight); err != nil {
			return nil, fmt.Errorf("scan post weight: %w", err)
		}
		out[postID] = weight
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate post weights: %w", err)
	}
	return out, nil
}

func (r *Repository) UsersByPosts(ctx context.Context, postIDs []string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT user_id FROM interactions WHERE post_id = ANY($1) ORDER BY user_id`,
		postIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("query users by posts: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		users = append(users, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// ApplyFeedback nudges the interest entries matching the post's taxonomy by
// the configured delta, clamped to [0, bound].
func (r *Repository) ApplyFeedback(ctx context.Context, userID string, content *domain.ContentProfile, fb domain.Feedback) error {
	delta := r.scoring.FeedbackDelta
	if fb == domain.FeedbackNegative {
		delta = -delta
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin feedback tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, key := range content.InterestKeys() {
		if _, err := tx.Exec(ctx,
			`INSERT INTO user_interests (user_id, interest_key, affinity, updated_at)
			 VALUES ($1, $2, GREATEST(0, LEAST($3, $4)), now())
			 ON CONFLICT (user_id, interest_key)
			 DO UPDATE SET affinity = GREATEST(0, LEAST($3, user_interests.affinity + $4)), updated_at = now()`,
			userID, key, r.scoring.AffinityClamp, delta,
		); err != nil {
			return fmt.Errorf("adjust interest %s: %w", key, err)
		}
	}
	return tx.Commit(ctx)
}

// errNoRows adapts pgx.ErrNoRows to the domain sentinel.
func errNoRows(err error, format string, args ...any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, fmt.Sprintf(format, args...))
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
