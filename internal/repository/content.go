package repository

import (
	"context"
	"fmt"

	"github.com/segni49/plugpost/internal/domain"
)

// Candidates returns the freshest posts as the scoring pool.
func (r *Repository) Candidates(ctx context.Context, limit int) ([]domain.ContentProfile, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, category_id, tag_ids, author_id, published_at, view_count, like_count, engagement_score
		 FROM posts
		 ORDER BY published_at DESC, id
		 LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var items []domain.ContentProfile
	for rows.Next() {
		var c domain.ContentProfile
		if err := rows.Scan(&c.PostID, &c.CategoryID, &c.TagIDs, &c.AuthorID,
			&c.PublishedAt, &c.ViewCount, &c.LikeCount, &c.EngagementScore); err != nil {
			return nil, fmt.Errorf("scan content profile: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return items, nil
}

func (r *Repository) ContentProfile(ctx context.Context, postID string) (*domain.ContentProfile, error) {
	c := &domain.ContentProfile{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, category_id, tag_ids, author_id, published_at, view_count, like_count, engagement_score
		 FROM posts WHERE id = $1`, postID,
	).Scan(&c.PostID, &c.CategoryID, &c.TagIDs, &c.AuthorID,
		&c.PublishedAt, &c.ViewCount, &c.LikeCount, &c.EngagementScore)
	if err != nil {
		return nil, errNoRows(err, "content profile for post %s", postID)
	}
	return c, nil
}

func (r *Repository) AuthorEngagement(ctx context.Context, authorID string) (float64, error) {
	var avg *float64
	err := r.pool.QueryRow(ctx,
		`SELECT AVG(engagement_score) FROM posts WHERE author_id = $1`, authorID,
	).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("author engagement for %s: %w", authorID, err)
	}
	if avg == nil {
		return 0, fmt.Errorf("%w: author %s has no posts", domain.ErrNotFound, authorID)
	}
	return *avg, nil
}

// GetPost fetches the content used to enrich a recommended post ID.
func (r *Repository) GetPost(ctx context.Context, postID string) (*domain.Post, error) {
	p := &domain.Post{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, category_id, author_id, published_at FROM posts WHERE id = $1`, postID,
	).Scan(&p.ID, &p.Title, &p.CategoryID, &p.AuthorID, &p.PublishedAt)
	if err != nil {
		return nil, errNoRows(err, "post %s", postID)
	}
	return p, nil
}
