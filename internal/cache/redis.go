package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/segni49/plugpost/internal/domain"
)

// ContentSource mirrors the engine's content contract so the cache can sit
// in front of any backing source.
type ContentSource interface {
	Candidates(ctx context.Context, limit int) ([]domain.ContentProfile, error)
	ContentProfile(ctx context.Context, postID string) (*domain.ContentProfile, error)
	AuthorEngagement(ctx context.Context, authorID string) (float64, error)
}

// ContentCache decorates a ContentSource with Redis so extractors do not
// re-derive content profiles on every call. Cache errors fall through to
// the backing source, and a nil client disables the cache entirely.
type ContentCache struct {
	client *redis.Client
	next   ContentSource
	ttl    time.Duration
}

func NewContentCache(client *redis.Client, next ContentSource, ttl time.Duration) *ContentCache {
	return &ContentCache{client: client, next: next, ttl: ttl}
}

func profileKey(postID string) string {
	return fmt.Sprintf("content:profile:%s", postID)
}

func candidatesKey(limit int) string {
	return fmt.Sprintf("content:candidates:%d", limit)
}

func (c *ContentCache) ContentProfile(ctx context.Context, postID string) (*domain.ContentProfile, error) {
	if c.client == nil {
		return c.next.ContentProfile(ctx, postID)
	}

	key := profileKey(postID)
	if val, err := c.client.Get(ctx, key).Result(); err == nil {
		var profile domain.ContentProfile
		if json.Unmarshal([]byte(val), &profile) == nil {
			return &profile, nil
		}
	}

	profile, err := c.next.ContentProfile(ctx, postID)
	if err != nil {
		return nil, err
	}
	if val, err := json.Marshal(profile); err == nil {
		c.client.Set(ctx, key, val, c.ttl)
	}
	return profile, nil
}

func (c *ContentCache) Candidates(ctx context.Context, limit int) ([]domain.ContentProfile, error) {
	if c.client == nil {
		return c.next.Candidates(ctx, limit)
	}

	key := candidatesKey(limit)
	if val, err := c.client.Get(ctx, key).Result(); err == nil {
		var profiles []domain.ContentProfile
		if json.Unmarshal([]byte(val), &profiles) == nil {
			return profiles, nil
		}
	}

	profiles, err := c.next.Candidates(ctx, limit)
	if err != nil {
		return nil, err
	}
	if val, err := json.Marshal(profiles); err == nil {
		// Candidates churn with every publish, so keep this key short-lived.
		ttl := c.ttl
		if ttl > time.Minute {
			ttl = time.Minute
		}
		c.client.Set(ctx, key, val, ttl)
	}
	return profiles, nil
}

func (c *ContentCache) AuthorEngagement(ctx context.Context, authorID string) (float64, error) {
	return c.next.AuthorEngagement(ctx, authorID)
}

// Ping connectivity; nil when no client is configured.
func (c *ContentCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// BatchStore mirrors the engine's batch contract so the cooldown mirror can
// wrap any backing store.
type BatchStore interface {
	StoreBatch(ctx context.Context, batch *domain.RecommendationBatch) error
	RecentPostIDs(ctx context.Context, userID string, window time.Duration) (map[string]bool, error)
	UpdateItemStatus(ctx context.Context, userID, postID string, status domain.ItemStatus) error
	Attribution(ctx context.Context, userID, postID string, window time.Duration) (domain.Strategy, bool, error)
}

// CooldownCache keeps a per-user set of recently recommended post IDs in
// Redis so the hot-path cooldown filter avoids a batch-table scan. The
// mirror is best-effort: a miss, an error or a nil client falls back to the
// backing store. The key TTL is refreshed on every batch, so a member can
// outlive the window slightly; that only excludes a post a little longer,
// never re-recommends it early.
type CooldownCache struct {
	client *redis.Client
	next   BatchStore
	window time.Duration
}

func NewCooldownCache(client *redis.Client, next BatchStore, window time.Duration) *CooldownCache {
	return &CooldownCache{client: client, next: next, window: window}
}

func cooldownKey(userID string) string {
	return fmt.Sprintf("cooldown:user:%s", userID)
}

func (c *CooldownCache) StoreBatch(ctx context.Context, batch *domain.RecommendationBatch) error {
	if err := c.next.StoreBatch(ctx, batch); err != nil {
		return err
	}
	if c.client == nil || len(batch.Items) == 0 {
		return nil
	}

	members := make([]any, len(batch.Items))
	for i, item := range batch.Items {
		members[i] = item.PostID
	}
	key := cooldownKey(batch.UserID)
	pipe := c.client.Pipeline()
	pipe.SAdd(ctx, key, members...)
	pipe.Expire(ctx, key, c.window)
	// Mirror only; the backing store stays authoritative.
	_, _ = pipe.Exec(ctx)
	return nil
}

func (c *CooldownCache) RecentPostIDs(ctx context.Context, userID string, window time.Duration) (map[string]bool, error) {
	// The mirror covers exactly the configured window; wider queries need
	// the store.
	if c.client != nil && window <= c.window {
		if members, err := c.client.SMembers(ctx, cooldownKey(userID)).Result(); err == nil && len(members) > 0 {
			out := make(map[string]bool, len(members))
			for _, m := range members {
				out[m] = true
			}
			return out, nil
		}
	}
	return c.next.RecentPostIDs(ctx, userID, window)
}

func (c *CooldownCache) UpdateItemStatus(ctx context.Context, userID, postID string, status domain.ItemStatus) error {
	return c.next.UpdateItemStatus(ctx, userID, postID, status)
}

func (c *CooldownCache) Attribution(ctx context.Context, userID, postID string, window time.Duration) (domain.Strategy, bool, error) {
	return c.next.Attribution(ctx, userID, postID, window)
}
