package engine

import (
	"context"
	"math"
	"time"

	"github.com/segni49/plugpost/internal/domain"
)

const (
	contentAuthorWeight    = 0.4
	contentVelocityWeight  = 0.3
	contentFreshnessWeight = 0.3
)

// ContentBased scores candidates by static quality: the author's
// engagement history, view velocity and freshness decay. It needs no user
// history, which makes it the other half of the cold-start fallback.
type ContentBased struct {
	Contents          ContentSource
	FreshnessHalfLife time.Duration
}

func (s *ContentBased) Strategy() domain.Strategy { return domain.StrategyContentBased }

func (s *ContentBased) Score(ctx context.Context, req *Request) ([]ScoredPost, error) {
	authorEng := make(map[string]float64)

	scored := make([]ScoredPost, 0, len(req.Candidates))
	for _, c := range req.Candidates {
		eng, ok := authorEng[c.AuthorID]
		if !ok {
			var err error
			eng, err = s.Contents.AuthorEngagement(ctx, c.AuthorID)
			if err != nil {
				// No history for the author: fall back to the post's own
				// engagement.
				eng = c.EngagementScore
			}
			authorEng[c.AuthorID] = eng
		}

		age := req.Now.Sub(c.PublishedAt)
		if age < 0 {
			age = 0
		}
		days := age.Hours() / 24
		if days < 1 {
			days = 1
		}
		velocity := float64(c.ViewCount) / days
		freshness := math.Exp(-math.Ln2 * age.Hours() / s.FreshnessHalfLife.Hours())

		score := contentAuthorWeight*eng + contentVelocityWeight*velocity + contentFreshnessWeight*freshness
		scored = append(scored, ScoredPost{PostID: c.PostID, Score: score})
	}
	return topK(scored, profileIndex(req.Candidates), req.Limit), nil
}
