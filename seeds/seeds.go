package seeds

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	categories = []string{"technology", "science", "business", "culture", "sports"}
	tags       = []string{"golang", "ai", "startups", "space", "health", "music", "football", "climate", "design", "security"}
	authors    = []string{"author-1", "author-2", "author-3", "author-4", "author-5"}
	actions    = []string{"view", "view", "view", "click", "click", "like", "share"}
)

func Setup(ctx context.Context, pool *pgxpool.Pool) error {
	rng := rand.New(rand.NewSource(42))

	if _, err := pool.Exec(ctx, `
		TRUNCATE feedback, recommendation_items, recommendation_batches, user_interests, interactions, posts CASCADE
	`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	if err := seedPosts(ctx, pool, rng, 60); err != nil {
		return fmt.Errorf("seed posts: %w", err)
	}
	if err := seedInteractions(ctx, pool, rng, 25, 60, 300); err != nil {
		return fmt.Errorf("seed interactions: %w", err)
	}
	return nil
}

func seedPosts(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, n int) error {
	rows := []string{}
	args := []any{}

	for i := 0; i < n; i++ {
		id := fmt.Sprintf("post-%d", i+1)
		category := categories[rng.Intn(len(categories))]
		postTags := pickTags(rng, 1+rng.Intn(3))
		author := authors[rng.Intn(len(authors))]
		publishedAt := time.Now().Add(-time.Duration(rng.Intn(30*24)) * time.Hour)
		views := int64(rng.Intn(5000))
		likes := views / int64(5+rng.Intn(20))
		engagement := rng.Float64()

		base := len(args)
		rows = append(rows, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9))
		args = append(args, id, fmt.Sprintf("%s post %d", category, i+1),
			category, postTags, author, publishedAt, views, likes, engagement)
	}

	query := `INSERT INTO posts (id, title, category_id, tag_ids, author_id, published_at, view_count, like_count, engagement_score) VALUES ` +
		strings.Join(rows, ", ")
	if _, err := pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert posts: %w", err)
	}
	return nil
}

func seedInteractions(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, users, posts, n int) error {
	weights := map[string]float64{"view": 1, "click": 2, "like": 3, "share": 5}

	rows := []string{}
	args := []any{}
	for i := 0; i < n; i++ {
		userID := fmt.Sprintf("user-%d", rng.Intn(users)+1)
		postID := fmt.Sprintf("post-%d", rng.Intn(posts)+1)
		action := actions[rng.Intn(len(actions))]
		createdAt := time.Now().Add(-time.Duration(rng.Intn(14*24)) * time.Hour)

		base := len(args)
		rows = append(rows, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5))
		args = append(args, userID, postID, action, weights[action], createdAt)
	}

	query := `INSERT INTO interactions (user_id, post_id, action, weight, created_at) VALUES ` +
		strings.Join(rows, ", ")
	if _, err := pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert interactions: %w", err)
	}
	return nil
}

func pickTags(rng *rand.Rand, n int) []string {
	picked := make([]string, 0, n)
	seen := make(map[string]bool, n)
	for len(picked) < n {
		tag := tags[rng.Intn(len(tags))]
		if !seen[tag] {
			seen[tag] = true
			picked = append(picked, tag)
		}
	}
	return picked
}
