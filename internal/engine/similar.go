package engine

import (
	"context"
	"time"

	"github.com/segni49/plugpost/internal/domain"
)

const (
	similarTagWeight      = 2.0
	similarCategoryWeight = 1.0
)

// SimilarContent scores candidates by taxonomy overlap with the posts the
// user recently interacted with. Shared tags weigh more than a shared
// category, and posts the user already touched are excluded.
type SimilarContent struct {
	Interactions InteractionStore
	Contents     ContentSource
	Window       time.Duration
}

func (s *SimilarContent) Strategy() domain.Strategy { return domain.StrategySimilarContent }

func (s *SimilarContent) Score(ctx context.Context, req *Request) ([]ScoredPost, error) {
	recents, err := s.Interactions.RecentInteractions(ctx, req.UserID, s.Window)
	if err != nil {
		return nil, err
	}
	if len(recents) == 0 {
		return nil, nil
	}

	// Aggregate the taxonomy of recently touched posts. A profile lookup
	// miss for one of them just skips that post.
	seen := make(map[string]bool, len(recents))
	userTags := make(map[string]bool)
	userCategories := make(map[string]bool)
	for _, in := range recents {
		seen[in.PostID] = true
		profile, err := s.Contents.ContentProfile(ctx, in.PostID)
		if err != nil {
			continue
		}
		if profile.CategoryID != "" {
			userCategories[profile.CategoryID] = true
		}
		for _, tag := range profile.TagIDs {
			userTags[tag] = true
		}
	}
	if len(userTags) == 0 && len(userCategories) == 0 {
		return nil, nil
	}

	scored := make([]ScoredPost, 0, len(req.Candidates))
	for _, c := range req.Candidates {
		if seen[c.PostID] {
			continue
		}
		score := weightedJaccard(&c, userTags, userCategories)
		if score > 0 {
			scored = append(scored, ScoredPost{PostID: c.PostID, Score: score})
		}
	}
	return topK(scored, profileIndex(req.Candidates), req.Limit), nil
}

// weightedJaccard compares a candidate's tags and category against the
// user's aggregated recent taxonomy.
func weightedJaccard(c *domain.ContentProfile, userTags, userCategories map[string]bool) float64 {
	var intersection, union float64

	tagUnion := len(userTags)
	for _, tag := range c.TagIDs {
		if userTags[tag] {
			intersection += similarTagWeight
		} else {
			tagUnion++
		}
	}
	union += similarTagWeight * float64(tagUnion)

	if c.CategoryID != "" {
		catUnion := len(userCategories)
		if userCategories[c.CategoryID] {
			intersection += similarCategoryWeight
		} else {
			catUnion++
		}
		union += similarCategoryWeight * float64(catUnion)
	} else {
		union += similarCategoryWeight * float64(len(userCategories))
	}

	if union == 0 {
		return 0
	}
	return intersection / union
}
