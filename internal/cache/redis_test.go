package cache

import (
	"context"
	"testing"
	"time"

	"github.com/segni49/plugpost/internal/config"
	"github.com/segni49/plugpost/internal/domain"
	"github.com/segni49/plugpost/internal/store"
)

func seededMemory() *store.Memory {
	m := store.NewMemory(config.DefaultScoring())
	m.PutContent(domain.ContentProfile{
		PostID:      "p1",
		CategoryID:  "c1",
		AuthorID:    "a1",
		PublishedAt: time.Now(),
	}, "first post")
	m.PutContent(domain.ContentProfile{
		PostID:      "p2",
		CategoryID:  "c2",
		AuthorID:    "a1",
		PublishedAt: time.Now().Add(-time.Hour),
	}, "second post")
	return m
}

func TestContentCacheNilClientFallsThrough(t *testing.T) {
	mem := seededMemory()
	c := NewContentCache(nil, mem, time.Minute)
	ctx := context.Background()

	profile, err := c.ContentProfile(ctx, "p1")
	if err != nil {
		t.Fatalf("content profile: %v", err)
	}
	if profile.CategoryID != "c1" {
		t.Errorf("expected backing profile, got %+v", profile)
	}

	candidates, err := c.Candidates(ctx, 10)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(candidates) != 2 {
		t.Errorf("expected 2 candidates from backing source, got %d", len(candidates))
	}

	if _, err := c.AuthorEngagement(ctx, "a1"); err != nil {
		t.Errorf("author engagement: %v", err)
	}
	if err := c.Ping(ctx); err != nil {
		t.Errorf("ping without a client must be a no-op: %v", err)
	}
}

func TestCooldownCacheNilClientDelegates(t *testing.T) {
	mem := seededMemory()
	scoring := config.DefaultScoring()
	c := NewCooldownCache(nil, mem, scoring.CooldownWindow)
	ctx := context.Background()

	batch := &domain.RecommendationBatch{
		ID:          "b1",
		UserID:      "u1",
		GeneratedAt: time.Now(),
		Items: []domain.Recommendation{
			{PostID: "p1", Strategy: domain.StrategyTrending, Rank: 1},
		},
	}
	if err := c.StoreBatch(ctx, batch); err != nil {
		t.Fatalf("store batch: %v", err)
	}

	cooldown, err := c.RecentPostIDs(ctx, "u1", scoring.CooldownWindow)
	if err != nil {
		t.Fatalf("recent post ids: %v", err)
	}
	if !cooldown["p1"] {
		t.Error("stored batch must be visible through the mirror's fallback")
	}

	if err := c.UpdateItemStatus(ctx, "u1", "p1", domain.ItemSeen); err != nil {
		t.Fatalf("update item status: %v", err)
	}
	status, ok := mem.ItemStatus("u1", "p1")
	if !ok || status != domain.ItemSeen {
		t.Errorf("status update must reach the backing store, got %q", status)
	}

	strategy, ok, err := c.Attribution(ctx, "u1", "p1", scoring.CooldownWindow)
	if err != nil {
		t.Fatalf("attribution: %v", err)
	}
	if !ok || strategy != domain.StrategyTrending {
		t.Errorf("expected trending attribution through the mirror, got %q ok=%v", strategy, ok)
	}
}
