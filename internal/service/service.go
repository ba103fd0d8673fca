package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/segni49/plugpost/internal/domain"
	"github.com/segni49/plugpost/internal/engine"
)

const (
	defaultLimit = 10
	maxLimit     = 50
)

// PostStore fetches post content for enrichment; the content collaborator
// owns the data.
type PostStore interface {
	GetPost(ctx context.Context, postID string) (*domain.Post, error)
}

type Service struct {
	engine            *engine.Engine
	posts             PostStore
	enrichConcurrency int
	logger            zerolog.Logger
}

func New(eng *engine.Engine, posts PostStore, enrichConcurrency int, logger zerolog.Logger) *Service {
	if enrichConcurrency <= 0 {
		enrichConcurrency = 8
	}
	return &Service{
		engine:            eng,
		posts:             posts,
		enrichConcurrency: enrichConcurrency,
		logger:            logger,
	}
}

type RecommendationResult struct {
	BatchID         string                          `json:"batch_id"`
	GeneratedAt     time.Time                       `json:"generated_at"`
	Recommendations []domain.EnrichedRecommendation `json:"recommendations"`
}

// GetRecommendations generates a ranked batch and enriches it with post
// content. A failed lookup drops that entry only; the request succeeds with
// the rest.
func (s *Service) GetRecommendations(ctx context.Context, userID string, limit int, types []string) (*RecommendationResult, error) {
	if limit <= 0 {
		limit = defaultLimit
	} else if limit > maxLimit {
		limit = maxLimit
	}

	batch, err := s.engine.Generate(ctx, userID, limit, types)
	if err != nil {
		return nil, err
	}

	enriched, err := s.enrich(ctx, batch)
	if err != nil {
		return nil, err
	}

	seen := make([]string, 0, len(enriched))
	for _, item := range enriched {
		seen = append(seen, item.PostID)
	}
	s.engine.MarkSeen(ctx, userID, seen)

	return &RecommendationResult{
		BatchID:         batch.ID,
		GeneratedAt:     batch.GeneratedAt,
		Recommendations: enriched,
	}, nil
}

// enrich fans out content lookups with bounded concurrency so large limits
// do not overwhelm the content collaborator. Batch order is preserved.
func (s *Service) enrich(ctx context.Context, batch *domain.RecommendationBatch) ([]domain.EnrichedRecommendation, error) {
	slots := make([]*domain.EnrichedRecommendation, len(batch.Items))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.enrichConcurrency)
	for i, item := range batch.Items {
		i, item := i, item
		eg.Go(func() error {
			post, err := s.posts.GetPost(egCtx, item.PostID)
			if err != nil {
				s.logger.Warn().Err(err).Str("post_id", item.PostID).Msg("enrichment lookup failed, dropping entry")
				return nil
			}
			slots[i] = &domain.EnrichedRecommendation{
				PostID:      post.ID,
				Title:       post.Title,
				CategoryID:  post.CategoryID,
				PublishedAt: post.PublishedAt,
				Strategy:    item.Strategy,
				Score:       item.NormalizedScore,
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := make([]domain.EnrichedRecommendation, 0, len(slots))
	for _, slot := range slots {
		if slot != nil {
			out = append(out, *slot)
		}
	}
	return out, nil
}

// TrackInteraction records one interaction event. Repeated identical calls
// are all recorded; deduplication is deliberately not done here.
func (s *Service) TrackInteraction(ctx context.Context, userID, postID string, action domain.Action) error {
	return s.engine.TrackInteraction(ctx, userID, postID, action)
}

// RecordFeedback stores explicit feedback and applies its interest
// adjustment.
func (s *Service) RecordFeedback(ctx context.Context, userID, postID string, fb domain.Feedback, reason string) error {
	return s.engine.RecordFeedback(ctx, userID, postID, fb, reason)
}
