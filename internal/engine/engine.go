package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/segni49/plugpost/internal/config"
	"github.com/segni49/plugpost/internal/domain"
)

// InteractionStore is the append-only interaction log plus the per-user
// interest profile it maintains.
type InteractionStore interface {
	RecordInteraction(ctx context.Context, userID, postID string, action domain.Action) error
	Profile(ctx context.Context, userID string) (*domain.UserProfile, error)
	RecentInteractions(ctx context.Context, userID string, window time.Duration) ([]domain.Interaction, error)
	// PostWeights returns the accumulated action weight per post the user
	// interacted with.
	PostWeights(ctx context.Context, userID string) (map[string]float64, error)
	// UsersByPosts returns users who interacted with any of the given posts.
	UsersByPosts(ctx context.Context, postIDs []string) ([]string, error)
	ApplyFeedback(ctx context.Context, userID string, profile *domain.ContentProfile, fb domain.Feedback) error
}

// ContentSource exposes derived content profiles to the extractors.
type ContentSource interface {
	Candidates(ctx context.Context, limit int) ([]domain.ContentProfile, error)
	ContentProfile(ctx context.Context, postID string) (*domain.ContentProfile, error)
	AuthorEngagement(ctx context.Context, authorID string) (float64, error)
}

// BatchStore persists generated batches for cooldown filtering and
// feedback attribution.
type BatchStore interface {
	StoreBatch(ctx context.Context, batch *domain.RecommendationBatch) error
	RecentPostIDs(ctx context.Context, userID string, window time.Duration) (map[string]bool, error)
	UpdateItemStatus(ctx context.Context, userID, postID string, status domain.ItemStatus) error
	Attribution(ctx context.Context, userID, postID string, window time.Duration) (domain.Strategy, bool, error)
}

// FeedbackStore retains feedback records for audit and tuning.
type FeedbackStore interface {
	StoreFeedback(ctx context.Context, rec *domain.FeedbackRecord) error
}

// Engine owns the extractors and combines their signals into ranked batches.
// Collaborators are injected so tests can substitute in-memory stores.
type Engine struct {
	interactions InteractionStore
	contents     ContentSource
	batches      BatchStore
	feedback     FeedbackStore
	scoring      config.Scoring
	extractors   map[domain.Strategy]Extractor
	logger       zerolog.Logger

	now func() time.Time
}

func New(
	interactions InteractionStore,
	contents ContentSource,
	batches BatchStore,
	feedback FeedbackStore,
	scoring config.Scoring,
	logger zerolog.Logger,
) *Engine {
	e := &Engine{
		interactions: interactions,
		contents:     contents,
		batches:      batches,
		feedback:     feedback,
		scoring:      scoring,
		logger:       logger,
		now:          time.Now,
	}
	e.extractors = map[domain.Strategy]Extractor{
		domain.StrategyTrending:       &Trending{Window: scoring.TrendingWindow},
		domain.StrategySimilarContent: &SimilarContent{Interactions: interactions, Contents: contents, Window: scoring.RecentWindow},
		domain.StrategyUserInterest:   &UserInterest{},
		domain.StrategyCollaborative:  &Collaborative{Interactions: interactions, MinOverlap: scoring.MinOverlap},
		domain.StrategyContentBased:   &ContentBased{Contents: contents, FreshnessHalfLife: scoring.TrendingWindow},
	}
	return e
}

// Generate runs the requested strategies concurrently over one candidate
// pool and combines them into a ranked, deduplicated batch. The batch is
// persisted only after it is fully assembled; a storage failure there is
// logged and absorbed.
func (e *Engine) Generate(ctx context.Context, userID string, limit int, types []string) (*domain.RecommendationBatch, error) {
	strategies, err := domain.ParseStrategies(types)
	if err != nil {
		return nil, err
	}

	profile, err := e.interactions.Profile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: load profile: %v", domain.ErrUnavailable, err)
	}

	candidates, err := e.candidates(ctx, userID)
	if err != nil {
		return nil, err
	}

	req := &Request{
		UserID:     userID,
		Profile:    profile,
		Candidates: candidates,
		Limit:      limit,
		Now:        e.now(),
	}

	results, failed := e.fanOut(ctx, strategies, req)
	if failed == len(strategies) && len(strategies) > 0 {
		return nil, fmt.Errorf("%w: all extractors failed", domain.ErrUnavailable)
	}

	// Persist the resolved strategy names, never the raw request: a default
	// request arrives with a nil slice, which the batch table rejects.
	requested := make([]string, len(strategies))
	for i, s := range strategies {
		requested[i] = string(s)
	}

	weights := e.scoring.Weights
	if profile.InteractionCount < e.scoring.ColdStartThreshold {
		weights = e.scoring.ColdStartWeights
	}

	items := combine(results, weights, candidates, limit)

	batch := &domain.RecommendationBatch{
		ID:             uuid.NewString(),
		UserID:         userID,
		GeneratedAt:    e.now(),
		RequestedTypes: requested,
		Items:          items,
	}

	// A cancelled caller gets no partially visible batch.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.batches.StoreBatch(ctx, batch); err != nil {
		e.logger.Warn().Err(err).Str("user_id", userID).Msg("batch store failed, cooldown will miss this batch")
	}
	return batch, nil
}

// candidates loads the pool and drops the requester's own posts and posts
// still inside the cooldown window before any scoring happens.
func (e *Engine) candidates(ctx context.Context, userID string) ([]domain.ContentProfile, error) {
	pool, err := e.contents.Candidates(ctx, e.scoring.CandidatePoolSize)
	if err != nil {
		return nil, fmt.Errorf("%w: load candidates: %v", domain.ErrUnavailable, err)
	}

	cooldown, err := e.batches.RecentPostIDs(ctx, userID, e.scoring.CooldownWindow)
	if err != nil {
		e.logger.Warn().Err(err).Str("user_id", userID).Msg("cooldown lookup failed, skipping cooldown filter")
		cooldown = nil
	}

	out := pool[:0:0]
	for _, c := range pool {
		if c.AuthorID == userID || cooldown[c.PostID] {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// fanOut dispatches the extractors concurrently, each under its own time
// budget. A failing or late strategy is dropped from this request; its
// weight is simply absent, not redistributed. An extractor returning no
// results is a valid outcome, not a failure.
func (e *Engine) fanOut(ctx context.Context, strategies []domain.Strategy, req *Request) (map[domain.Strategy][]ScoredPost, int) {
	var (
		mu      sync.Mutex
		failed  int
		results = make(map[domain.Strategy][]ScoredPost, len(strategies))
	)
	eg, egCtx := errgroup.WithContext(ctx)

	for _, strategy := range strategies {
		ex, ok := e.extractors[strategy]
		if !ok {
			continue
		}
		eg.Go(func() error {
			sctx := egCtx
			if e.scoring.StrategyBudget > 0 {
				var cancel context.CancelFunc
				sctx, cancel = context.WithTimeout(egCtx, e.scoring.StrategyBudget)
				defer cancel()
			}
			scored, err := ex.Score(sctx, req)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				e.logger.Warn().Err(err).Str("strategy", string(ex.Strategy())).Msg("extractor dropped from request")
				return nil
			}
			if len(scored) > 0 {
				results[ex.Strategy()] = scored
			}
			return nil
		})
	}
	_ = eg.Wait()
	return results, failed
}

// TrackInteraction records one interaction; repeated identical calls are
// recorded independently. The matching batch item, if any, moves to
// INTERACTED.
func (e *Engine) TrackInteraction(ctx context.Context, userID, postID string, action domain.Action) error {
	if err := e.interactions.RecordInteraction(ctx, userID, postID, action); err != nil {
		return err
	}
	if err := e.batches.UpdateItemStatus(ctx, userID, postID, domain.ItemInteracted); err != nil {
		e.logger.Warn().Err(err).Str("post_id", postID).Msg("item status update failed")
	}
	return nil
}

// RecordFeedback stores the record, applies the bounded interest
// adjustment and attributes the feedback to the strategy that recommended
// the post, when one did.
func (e *Engine) RecordFeedback(ctx context.Context, userID, postID string, fb domain.Feedback, reason string) error {
	profile, err := e.contents.ContentProfile(ctx, postID)
	if err != nil {
		return err
	}

	rec := &domain.FeedbackRecord{
		UserID:     userID,
		PostID:     postID,
		Feedback:   fb,
		Reason:     reason,
		RecordedAt: e.now(),
	}
	if err := e.feedback.StoreFeedback(ctx, rec); err != nil {
		return fmt.Errorf("%w: store feedback: %v", domain.ErrUnavailable, err)
	}
	if err := e.interactions.ApplyFeedback(ctx, userID, profile, fb); err != nil {
		return fmt.Errorf("%w: adjust interests: %v", domain.ErrUnavailable, err)
	}

	if strategy, ok, err := e.batches.Attribution(ctx, userID, postID, e.scoring.CooldownWindow); err == nil && ok {
		e.logger.Info().
			Str("user_id", userID).
			Str("post_id", postID).
			Str("strategy", string(strategy)).
			Str("feedback", string(fb)).
			Msg("feedback attributed")
	}
	if err := e.batches.UpdateItemStatus(ctx, userID, postID, domain.ItemFedBack); err != nil {
		e.logger.Warn().Err(err).Str("post_id", postID).Msg("item status update failed")
	}
	return nil
}

// MarkSeen moves batch items to SEEN once their content has been fetched.
func (e *Engine) MarkSeen(ctx context.Context, userID string, postIDs []string) {
	for _, postID := range postIDs {
		if err := e.batches.UpdateItemStatus(ctx, userID, postID, domain.ItemSeen); err != nil {
			e.logger.Warn().Err(err).Str("post_id", postID).Msg("item status update failed")
		}
	}
}
