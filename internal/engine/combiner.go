package engine

import (
	"sort"

	"github.com/segni49/plugpost/internal/domain"
)

// minMaxNormalize maps raw scores to [0,1] across one strategy's batch.
// With a single candidate, or all scores equal, everything normalizes to 1.
func minMaxNormalize(scored []ScoredPost) []ScoredPost {
	if len(scored) == 0 {
		return scored
	}
	minScore, maxScore := scored[0].Score, scored[0].Score
	for _, s := range scored[1:] {
		if s.Score < minScore {
			minScore = s.Score
		}
		if s.Score > maxScore {
			maxScore = s.Score
		}
	}
	out := make([]ScoredPost, len(scored))
	spread := maxScore - minScore
	for i, s := range scored {
		normalized := 1.0
		if spread > 0 {
			normalized = (s.Score - minScore) / spread
		}
		out[i] = ScoredPost{PostID: s.PostID, Score: normalized}
	}
	return out
}

// dedupMax keeps one entry per post with the highest raw score, preserving
// first-seen order otherwise.
func dedupMax(scored []ScoredPost) []ScoredPost {
	seen := make(map[string]int, len(scored))
	out := make([]ScoredPost, 0, len(scored))
	for _, s := range scored {
		if i, ok := seen[s.PostID]; ok {
			if s.Score > out[i].Score {
				out[i].Score = s.Score
			}
			continue
		}
		seen[s.PostID] = len(out)
		out = append(out, s)
	}
	return out
}

// combine merges per-strategy results under the weight table. Strategies
// that did not surface a post contribute 0 for it; nothing is renormalized
// against the subset that did. Each item is attributed to the strategy with
// the largest weighted contribution.
func combine(
	results map[domain.Strategy][]ScoredPost,
	weights map[domain.Strategy]float64,
	candidates []domain.ContentProfile,
	limit int,
) []domain.Recommendation {
	type contribution struct {
		combined     float64
		bestStrategy domain.Strategy
		bestWeighted float64
		bestRaw      float64
	}
	acc := make(map[string]*contribution)

	// Fixed strategy order keeps attribution deterministic when two
	// strategies contribute equally.
	for _, strategy := range domain.AllStrategies {
		raw, ok := results[strategy]
		if !ok {
			continue
		}
		weight := weights[strategy]
		if weight == 0 {
			continue
		}
		deduped := dedupMax(raw)
		normalized := minMaxNormalize(deduped)
		for i, s := range normalized {
			weighted := weight * s.Score
			c := acc[s.PostID]
			if c == nil {
				c = &contribution{}
				acc[s.PostID] = c
			}
			c.combined += weighted
			if weighted > c.bestWeighted || c.bestStrategy == "" {
				c.bestWeighted = weighted
				c.bestStrategy = strategy
				c.bestRaw = deduped[i].Score
			}
		}
	}

	profiles := profileIndex(candidates)
	items := make([]domain.Recommendation, 0, len(acc))
	for postID, c := range acc {
		items = append(items, domain.Recommendation{
			PostID:          postID,
			Strategy:        c.bestStrategy,
			RawScore:        c.bestRaw,
			NormalizedScore: c.combined,
		})
	}

	// Total order: combined score desc, newer publishedAt, then post ID.
	sort.Slice(items, func(i, j int) bool {
		if items[i].NormalizedScore != items[j].NormalizedScore {
			return items[i].NormalizedScore > items[j].NormalizedScore
		}
		pi, pj := profiles[items[i].PostID], profiles[items[j].PostID]
		if pi != nil && pj != nil && !pi.PublishedAt.Equal(pj.PublishedAt) {
			return pi.PublishedAt.After(pj.PublishedAt)
		}
		return items[i].PostID < items[j].PostID
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	for i := range items {
		items[i].Rank = i + 1
	}
	return items
}
