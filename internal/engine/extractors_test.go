package engine

import (
	"context"
	"testing"
	"time"

	"github.com/segni49/plugpost/internal/config"
	"github.com/segni49/plugpost/internal/domain"
	"github.com/segni49/plugpost/internal/store"
)

func testMemory(t *testing.T) *store.Memory {
	t.Helper()
	return store.NewMemory(config.DefaultScoring())
}

func profile(postID, categoryID string, tags []string, authorID string, age time.Duration, views, likes int64) domain.ContentProfile {
	return domain.ContentProfile{
		PostID:          postID,
		CategoryID:      categoryID,
		TagIDs:          tags,
		AuthorID:        authorID,
		PublishedAt:     time.Now().Add(-age),
		ViewCount:       views,
		LikeCount:       likes,
		EngagementScore: 0.5,
	}
}

func TestTrendingOrdersByViews(t *testing.T) {
	sameAge := 24 * time.Hour
	req := &Request{
		Candidates: []domain.ContentProfile{
			profile("p1", "c1", nil, "a1", sameAge, 100, 0),
			profile("p2", "c1", nil, "a1", sameAge, 10, 0),
		},
		Limit: 10,
		Now:   time.Now(),
	}

	tr := &Trending{Window: 7 * 24 * time.Hour}
	scored, err := tr.Score(context.Background(), req)
	if err != nil {
		t.Fatalf("trending score: %v", err)
	}
	if len(scored) != 2 {
		t.Fatalf("expected 2 results, got %d", len(scored))
	}
	if scored[0].PostID != "p1" {
		t.Errorf("expected p1 first, got %s", scored[0].PostID)
	}
	if scored[0].Score <= scored[1].Score {
		t.Errorf("expected p1 to outscore p2: %f <= %f", scored[0].Score, scored[1].Score)
	}
}

func TestTrendingTieBreaksByEngagementThenRecency(t *testing.T) {
	now := time.Now()
	// Zero engagement everywhere, so scores tie at 0.
	candidates := []domain.ContentProfile{
		profile("p-old", "c1", nil, "a1", 72*time.Hour, 0, 0),
		profile("p-new", "c1", nil, "a1", 2*time.Hour, 0, 0),
	}
	tr := &Trending{Window: 7 * 24 * time.Hour}
	scored, err := tr.Score(context.Background(), &Request{Candidates: candidates, Limit: 10, Now: now})
	if err != nil {
		t.Fatalf("trending score: %v", err)
	}
	if scored[0].PostID != "p-new" {
		t.Errorf("expected newer post to win the tie, got %s", scored[0].PostID)
	}
}

func TestUserInterestPrefersMatchingCategory(t *testing.T) {
	mem := testMemory(t)
	mem.PutContent(profile("p1", "c1", []string{"golang"}, "a1", 24*time.Hour, 50, 5), "p1")
	mem.PutContent(profile("p2", "c1", []string{"golang"}, "a2", 24*time.Hour, 50, 5), "p2")
	mem.PutContent(profile("p3", "c2", []string{"music"}, "a3", 24*time.Hour, 50, 5), "p3")

	if err := mem.RecordInteraction(context.Background(), "u1", "p1", domain.ActionLike); err != nil {
		t.Fatalf("record interaction: %v", err)
	}
	userProfile, err := mem.Profile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}

	req := &Request{
		UserID:  "u1",
		Profile: userProfile,
		Candidates: []domain.ContentProfile{
			profile("p2", "c1", []string{"golang"}, "a2", 24*time.Hour, 50, 5),
			profile("p3", "c2", []string{"music"}, "a3", 24*time.Hour, 50, 5),
		},
		Limit: 10,
		Now:   time.Now(),
	}
	scored, err := (&UserInterest{}).Score(context.Background(), req)
	if err != nil {
		t.Fatalf("user interest score: %v", err)
	}
	if len(scored) == 0 || scored[0].PostID != "p2" {
		t.Fatalf("expected p2 on top, got %+v", scored)
	}
	for _, s := range scored {
		if s.PostID == "p3" && s.Score >= scored[0].Score {
			t.Errorf("p3 should score below p2")
		}
	}
}

func TestUserInterestEmptyVectorScoresNothing(t *testing.T) {
	req := &Request{
		UserID:  "fresh",
		Profile: domain.NewUserProfile("fresh"),
		Candidates: []domain.ContentProfile{
			profile("p1", "c1", []string{"golang"}, "a1", 24*time.Hour, 10, 1),
		},
		Limit: 10,
		Now:   time.Now(),
	}
	scored, err := (&UserInterest{}).Score(context.Background(), req)
	if err != nil {
		t.Fatalf("expected no error for empty vector, got %v", err)
	}
	if len(scored) != 0 {
		t.Errorf("expected no results, got %d", len(scored))
	}
}

func TestSimilarContentExcludesInteractedAndWeightsTags(t *testing.T) {
	mem := testMemory(t)
	mem.PutContent(profile("liked", "c1", []string{"golang", "ai"}, "a1", 24*time.Hour, 10, 1), "liked")
	mem.PutContent(profile("tags", "c2", []string{"golang", "ai"}, "a2", 24*time.Hour, 10, 1), "tags")
	mem.PutContent(profile("cat", "c1", []string{"music"}, "a3", 24*time.Hour, 10, 1), "cat")

	ctx := context.Background()
	if err := mem.RecordInteraction(ctx, "u1", "liked", domain.ActionLike); err != nil {
		t.Fatalf("record interaction: %v", err)
	}

	sc := &SimilarContent{Interactions: mem, Contents: mem, Window: 30 * 24 * time.Hour}
	req := &Request{
		UserID: "u1",
		Candidates: []domain.ContentProfile{
			profile("liked", "c1", []string{"golang", "ai"}, "a1", 24*time.Hour, 10, 1),
			profile("tags", "c2", []string{"golang", "ai"}, "a2", 24*time.Hour, 10, 1),
			profile("cat", "c1", []string{"music"}, "a3", 24*time.Hour, 10, 1),
		},
		Limit: 10,
		Now:   time.Now(),
	}
	scored, err := sc.Score(ctx, req)
	if err != nil {
		t.Fatalf("similar score: %v", err)
	}
	for _, s := range scored {
		if s.PostID == "liked" {
			t.Error("interacted post must be excluded")
		}
	}
	if len(scored) < 2 {
		t.Fatalf("expected both remaining candidates scored, got %+v", scored)
	}
	// Two shared tags outweigh a shared category.
	if scored[0].PostID != "tags" {
		t.Errorf("expected tag overlap to win, got %s", scored[0].PostID)
	}
}

func TestCollaborativeRespectsMinOverlap(t *testing.T) {
	mem := testMemory(t)
	for _, id := range []string{"p1", "p2", "p3", "p4"} {
		mem.PutContent(profile(id, "c1", nil, "a1", 24*time.Hour, 10, 1), id)
	}
	ctx := context.Background()

	// Target likes p1 and p2. Neighbor shares both and also likes p3.
	// Stranger shares only p1 and likes p4.
	for _, in := range []struct {
		user, post string
	}{
		{"target", "p1"}, {"target", "p2"},
		{"neighbor", "p1"}, {"neighbor", "p2"}, {"neighbor", "p3"},
		{"stranger", "p1"}, {"stranger", "p4"},
	} {
		if err := mem.RecordInteraction(ctx, in.user, in.post, domain.ActionLike); err != nil {
			t.Fatalf("record interaction: %v", err)
		}
	}

	cf := &Collaborative{Interactions: mem, MinOverlap: 2}
	req := &Request{
		UserID: "target",
		Candidates: []domain.ContentProfile{
			profile("p3", "c1", nil, "a1", 24*time.Hour, 10, 1),
			profile("p4", "c1", nil, "a1", 24*time.Hour, 10, 1),
		},
		Limit: 10,
		Now:   time.Now(),
	}
	scored, err := cf.Score(ctx, req)
	if err != nil {
		t.Fatalf("collaborative score: %v", err)
	}
	found := map[string]bool{}
	for _, s := range scored {
		found[s.PostID] = true
	}
	if !found["p3"] {
		t.Error("expected p3 recommended via the overlapping neighbor")
	}
	if found["p4"] {
		t.Error("single shared interaction must not be enough for p4")
	}
}

func TestContentBasedNeedsNoHistory(t *testing.T) {
	mem := testMemory(t)
	mem.PutContent(profile("hot", "c1", nil, "a1", 12*time.Hour, 4000, 400), "hot")
	mem.PutContent(profile("stale", "c1", nil, "a2", 20*24*time.Hour, 40, 2), "stale")

	cb := &ContentBased{Contents: mem, FreshnessHalfLife: 7 * 24 * time.Hour}
	req := &Request{
		UserID: "fresh-user",
		Candidates: []domain.ContentProfile{
			profile("hot", "c1", nil, "a1", 12*time.Hour, 4000, 400),
			profile("stale", "c1", nil, "a2", 20*24*time.Hour, 40, 2),
		},
		Limit: 10,
		Now:   time.Now(),
	}
	scored, err := cb.Score(context.Background(), req)
	if err != nil {
		t.Fatalf("content based score: %v", err)
	}
	if len(scored) != 2 {
		t.Fatalf("expected 2 results, got %d", len(scored))
	}
	if scored[0].PostID != "hot" {
		t.Errorf("expected the fresh high-velocity post first, got %s", scored[0].PostID)
	}
}
