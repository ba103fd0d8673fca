package domain

import (
	"fmt"
	"time"
)

// Strategy identifies one scoring algorithm. The set is closed: boundary
// input is parsed through ParseStrategies and unknown names are rejected.
type Strategy string

const (
	StrategyTrending       Strategy = "trending"
	StrategySimilarContent Strategy = "similar_content"
	StrategyUserInterest   Strategy = "user_interest"
	StrategyCollaborative  Strategy = "collaborative_filtering"
	StrategyContentBased   Strategy = "content_based"
)

// TypeHybrid requests all strategies combined under the weight table.
const TypeHybrid = "hybrid"

// AllStrategies in a fixed order, used for hybrid requests and for
// deterministic iteration over per-strategy results.
var AllStrategies = []Strategy{
	StrategyTrending,
	StrategySimilarContent,
	StrategyUserInterest,
	StrategyCollaborative,
	StrategyContentBased,
}

// ParseStrategies resolves requested type names to strategies. An empty list
// or "hybrid" means all strategies.
func ParseStrategies(types []string) ([]Strategy, error) {
	if len(types) == 0 {
		return AllStrategies, nil
	}
	seen := make(map[Strategy]bool, len(types))
	out := make([]Strategy, 0, len(types))
	for _, t := range types {
		if t == TypeHybrid {
			return AllStrategies, nil
		}
		s := Strategy(t)
		switch s {
		case StrategyTrending, StrategySimilarContent, StrategyUserInterest,
			StrategyCollaborative, StrategyContentBased:
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		default:
			return nil, fmt.Errorf("%w: unknown recommendation type %q", ErrInvalidArgument, t)
		}
	}
	return out, nil
}

// Recommendation is one scored item inside a batch.
type Recommendation struct {
	PostID          string   `json:"post_id"`
	Strategy        Strategy `json:"strategy"`
	RawScore        float64  `json:"raw_score"`
	NormalizedScore float64  `json:"normalized_score"`
	Rank            int      `json:"rank"`
}

// ItemStatus tracks a batch item through its lifecycle. Expiry is computed
// from the cooldown window rather than stored.
type ItemStatus string

const (
	ItemGenerated  ItemStatus = "generated"
	ItemSeen       ItemStatus = "seen"
	ItemInteracted ItemStatus = "interacted"
	ItemFedBack    ItemStatus = "fed_back"
)

// RecommendationBatch is one generated result set; post IDs are unique
// within a batch.
type RecommendationBatch struct {
	ID             string           `json:"id"`
	UserID         string           `json:"user_id"`
	GeneratedAt    time.Time        `json:"generated_at"`
	RequestedTypes []string         `json:"requested_types"`
	Items          []Recommendation `json:"items"`
}

// EnrichedRecommendation is a batch item joined with post content for the
// response payload.
type EnrichedRecommendation struct {
	PostID      string    `json:"post_id"`
	Title       string    `json:"title"`
	CategoryID  string    `json:"category_id"`
	PublishedAt time.Time `json:"published_at"`
	Strategy    Strategy  `json:"strategy"`
	Score       float64   `json:"score"`
}
