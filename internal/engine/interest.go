package engine

import (
	"context"
	"math"

	"github.com/segni49/plugpost/internal/domain"
)

// UserInterest scores candidates by cosine similarity between the user's
// interest vector and the candidate's category/tag vector. An empty vector
// on either side scores 0, never errors.
type UserInterest struct{}

func (u *UserInterest) Strategy() domain.Strategy { return domain.StrategyUserInterest }

func (u *UserInterest) Score(_ context.Context, req *Request) ([]ScoredPost, error) {
	interests := req.Profile.Interests
	if len(interests) == 0 {
		return nil, nil
	}

	scored := make([]ScoredPost, 0, len(req.Candidates))
	for _, c := range req.Candidates {
		vector := candidateVector(&c)
		score := cosine(interests, vector)
		if score > 0 {
			scored = append(scored, ScoredPost{PostID: c.PostID, Score: score})
		}
	}
	return topK(scored, profileIndex(req.Candidates), req.Limit), nil
}

func candidateVector(c *domain.ContentProfile) map[string]float64 {
	vector := make(map[string]float64, len(c.TagIDs)+1)
	for _, key := range c.InterestKeys() {
		vector[key] = 1.0
	}
	return vector
}

// cosine over sparse vectors keyed by interest key.
func cosine(a, b map[string]float64) float64 {
	var dot, normA, normB float64
	for k, va := range a {
		normA += va * va
		if vb, ok := b[k]; ok {
			dot += va * vb
		}
	}
	for _, vb := range b {
		normB += vb * vb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
