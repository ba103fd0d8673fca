package engine

import (
	"context"
	"math"
	"sort"

	"github.com/segni49/plugpost/internal/domain"
)

// Collaborative is user-based collaborative filtering: users with enough
// interaction overlap vote for their liked-but-unseen posts, weighted by
// similarity. MinOverlap filters out noise from a single shared post.
type Collaborative struct {
	Interactions InteractionStore
	MinOverlap   int
}

func (c *Collaborative) Strategy() domain.Strategy { return domain.StrategyCollaborative }

func (c *Collaborative) Score(ctx context.Context, req *Request) ([]ScoredPost, error) {
	target, err := c.Interactions.PostWeights(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if len(target) == 0 {
		return nil, nil
	}

	targetPosts := make([]string, 0, len(target))
	for postID := range target {
		targetPosts = append(targetPosts, postID)
	}
	sort.Strings(targetPosts)

	neighbors, err := c.Interactions.UsersByPosts(ctx, targetPosts)
	if err != nil {
		return nil, err
	}
	sort.Strings(neighbors)

	candidates := make(map[string]bool, len(req.Candidates))
	for _, cand := range req.Candidates {
		candidates[cand.PostID] = true
	}

	minOverlap := c.MinOverlap
	if minOverlap <= 0 {
		minOverlap = 2
	}

	scores := make(map[string]float64)
	for _, userID := range neighbors {
		if userID == req.UserID {
			continue
		}
		theirs, err := c.Interactions.PostWeights(ctx, userID)
		if err != nil || len(theirs) == 0 {
			continue
		}
		sim := overlapSimilarity(target, theirs, minOverlap)
		if sim <= 0 {
			continue
		}
		for postID, weight := range theirs {
			if _, interacted := target[postID]; interacted {
				continue
			}
			if !candidates[postID] {
				continue
			}
			scores[postID] += sim * weight
		}
	}

	scored := make([]ScoredPost, 0, len(scores))
	for postID, score := range scores {
		scored = append(scored, ScoredPost{PostID: postID, Score: score})
	}
	return topK(scored, profileIndex(req.Candidates), req.Limit), nil
}

// overlapSimilarity is cosine similarity over the co-interacted posts, or 0
// when fewer than minOverlap posts are shared.
func overlapSimilarity(a, b map[string]float64, minOverlap int) float64 {
	var dot, normA, normB float64
	common := 0
	for postID, wa := range a {
		if wb, ok := b[postID]; ok {
			common++
			dot += wa * wb
			normA += wa * wa
			normB += wb * wb
		}
	}
	if common < minOverlap || normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
