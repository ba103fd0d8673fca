package engine

import (
	"context"
	"sort"
	"time"

	"github.com/segni49/plugpost/internal/domain"
)

// ScoredPost is one extractor result before normalization.
type ScoredPost struct {
	PostID string
	Score  float64
}

// Request carries everything shared by the extractors for one generation
// call. Now is injected so scoring is deterministic given identical store
// state and candidate pool.
type Request struct {
	UserID     string
	Profile    *domain.UserProfile
	Candidates []domain.ContentProfile
	Limit      int
	Now        time.Time
}

// Extractor is one independent scoring strategy. Implementations must be
// deterministic and safe for concurrent use.
type Extractor interface {
	Strategy() domain.Strategy
	Score(ctx context.Context, req *Request) ([]ScoredPost, error)
}

// topK sorts scored posts descending, resolving ties by newer publishedAt
// then post ID, and truncates to limit. profiles maps post ID to its
// candidate profile for the tie-break.
func topK(scored []ScoredPost, profiles map[string]*domain.ContentProfile, limit int) []ScoredPost {
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		pi, pj := profiles[scored[i].PostID], profiles[scored[j].PostID]
		if pi != nil && pj != nil && !pi.PublishedAt.Equal(pj.PublishedAt) {
			return pi.PublishedAt.After(pj.PublishedAt)
		}
		return scored[i].PostID < scored[j].PostID
	})
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

func profileIndex(candidates []domain.ContentProfile) map[string]*domain.ContentProfile {
	idx := make(map[string]*domain.ContentProfile, len(candidates))
	for i := range candidates {
		idx[candidates[i].PostID] = &candidates[i]
	}
	return idx
}
