package engine

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/segni49/plugpost/internal/domain"
)

// Trending scores candidates by recency-weighted engagement velocity,
// independent of the requesting user. It is half of the cold-start
// fallback.
type Trending struct {
	Window time.Duration
}

func (t *Trending) Strategy() domain.Strategy { return domain.StrategyTrending }

func (t *Trending) Score(_ context.Context, req *Request) ([]ScoredPost, error) {
	scored := make([]ScoredPost, 0, len(req.Candidates))
	engagement := make(map[string]int64, len(req.Candidates))

	for _, c := range req.Candidates {
		age := req.Now.Sub(c.PublishedAt)
		if age < 0 {
			age = 0
		}
		days := age.Hours() / 24
		if days < 1 {
			days = 1
		}
		windowDays := t.Window.Hours() / 24
		if windowDays >= 1 && days > windowDays {
			days = windowDays
		}

		count := c.ViewCount + c.LikeCount
		velocity := float64(count) / days
		recency := math.Exp(-age.Hours() / t.Window.Hours())

		engagement[c.PostID] = count
		scored = append(scored, ScoredPost{PostID: c.PostID, Score: velocity * recency})
	}

	// Ties: higher raw engagement, then newer post.
	profiles := profileIndex(req.Candidates)
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if engagement[scored[i].PostID] != engagement[scored[j].PostID] {
			return engagement[scored[i].PostID] > engagement[scored[j].PostID]
		}
		pi, pj := profiles[scored[i].PostID], profiles[scored[j].PostID]
		if !pi.PublishedAt.Equal(pj.PublishedAt) {
			return pi.PublishedAt.After(pj.PublishedAt)
		}
		return scored[i].PostID < scored[j].PostID
	})
	if req.Limit > 0 && len(scored) > req.Limit {
		scored = scored[:req.Limit]
	}
	return scored, nil
}
