package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/segni49/plugpost/internal/config"
	"github.com/segni49/plugpost/internal/domain"
)

const recentInteractionLimit = 50

// Memory backs every store contract in one in-process implementation, for
// tests, local development and as the reference semantics for the Postgres
// repositories. A single mutex serializes writes, so concurrent interest
// updates for one user never lose increments.
type Memory struct {
	scoring config.Scoring

	mu           sync.RWMutex
	profiles     map[string]*domain.UserProfile
	interactions map[string][]domain.Interaction
	byPost       map[string]map[string]float64
	contents     map[string]*domain.ContentProfile
	posts        map[string]*domain.Post
	batches      []*domain.RecommendationBatch
	itemStatus   map[string]domain.ItemStatus
	feedback     []*domain.FeedbackRecord

	// Now is swappable for deterministic tests.
	Now func() time.Time
}

func NewMemory(scoring config.Scoring) *Memory {
	return &Memory{
		scoring:      scoring,
		profiles:     make(map[string]*domain.UserProfile),
		interactions: make(map[string][]domain.Interaction),
		byPost:       make(map[string]map[string]float64),
		contents:     make(map[string]*domain.ContentProfile),
		posts:        make(map[string]*domain.Post),
		itemStatus:   make(map[string]domain.ItemStatus),
		Now:          time.Now,
	}
}

// PutContent registers a post and its derived content profile.
func (m *Memory) PutContent(profile domain.ContentProfile, title string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := profile
	m.contents[profile.PostID] = &p
	m.posts[profile.PostID] = &domain.Post{
		ID:          profile.PostID,
		Title:       title,
		CategoryID:  profile.CategoryID,
		AuthorID:    profile.AuthorID,
		PublishedAt: profile.PublishedAt,
	}
}

// ---- interaction store ----

func (m *Memory) RecordInteraction(ctx context.Context, userID, postID string, action domain.Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	content, ok := m.contents[postID]
	if !ok {
		return fmt.Errorf("%w: post %s has no content profile", domain.ErrNotFound, postID)
	}

	in := domain.Interaction{
		UserID:    userID,
		PostID:    postID,
		Action:    action,
		Weight:    action.Weight(),
		CreatedAt: m.Now(),
	}
	m.interactions[userID] = append(m.interactions[userID], in)

	if m.byPost[postID] == nil {
		m.byPost[postID] = make(map[string]float64)
	}
	m.byPost[postID][userID] += in.Weight

	profile, ok := m.profiles[userID]
	if !ok {
		profile = domain.NewUserProfile(userID)
		m.profiles[userID] = profile
	}
	profile.ApplyInteraction(content, in.Weight, m.scoring.DecayFactor, m.scoring.TagCredit, m.scoring.AffinityClamp)
	return nil
}

// Profile returns a copy of the user's profile, or an empty default for an
// unseen user. Never an error.
func (m *Memory) Profile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.profiles[userID]
	out := domain.NewUserProfile(userID)
	if ok {
		for k, v := range stored.Interests {
			out.Interests[k] = v
		}
		out.InteractionCount = stored.InteractionCount
		out.UpdatedAt = stored.UpdatedAt
	}

	// Newest first, matching the repository ordering.
	all := m.interactions[userID]
	start := 0
	if len(all) > recentInteractionLimit {
		start = len(all) - recentInteractionLimit
	}
	for i := len(all) - 1; i >= start; i-- {
		out.RecentInteractions = append(out.RecentInteractions, all[i])
	}
	return out, nil
}

func (m *Memory) RecentInteractions(ctx context.Context, userID string, window time.Duration) ([]domain.Interaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cutoff := m.Now().Add(-window)
	all := m.interactions[userID]
	out := make([]domain.Interaction, 0, len(all))
	for i := len(all) - 1; i >= 0 && len(out) < recentInteractionLimit; i-- {
		if all[i].CreatedAt.Before(cutoff) {
			break
		}
		out = append(out, all[i])
	}
	return out, nil
}

func (m *Memory) PostWeights(ctx context.Context, userID string) (map[string]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]float64)
	for _, in := range m.interactions[userID] {
		out[in.PostID] += in.Weight
	}
	return out, nil
}

func (m *Memory) UsersByPosts(ctx context.Context, postIDs []string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	for _, postID := range postIDs {
		for userID := range m.byPost[postID] {
			seen[userID] = true
		}
	}
	out := make([]string, 0, len(seen))
	for userID := range seen {
		out = append(out, userID)
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) ApplyFeedback(ctx context.Context, userID string, profile *domain.ContentProfile, fb domain.Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[userID]
	if !ok {
		p = domain.NewUserProfile(userID)
		m.profiles[userID] = p
	}
	p.ApplyFeedback(profile, fb, m.scoring.FeedbackDelta, m.scoring.AffinityClamp)
	return nil
}

// ---- content source ----

func (m *Memory) Candidates(ctx context.Context, limit int) ([]domain.ContentProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.ContentProfile, 0, len(m.contents))
	for _, c := range m.contents {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PublishedAt.Equal(out[j].PublishedAt) {
			return out[i].PublishedAt.After(out[j].PublishedAt)
		}
		return out[i].PostID < out[j].PostID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) ContentProfile(ctx context.Context, postID string) (*domain.ContentProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.contents[postID]
	if !ok {
		return nil, fmt.Errorf("%w: post %s has no content profile", domain.ErrNotFound, postID)
	}
	out := *c
	return &out, nil
}

func (m *Memory) AuthorEngagement(ctx context.Context, authorID string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var sum float64
	var count int
	for _, c := range m.contents {
		if c.AuthorID == authorID {
			sum += c.EngagementScore
			count++
		}
	}
	if count == 0 {
		return 0, fmt.Errorf("%w: author %s has no posts", domain.ErrNotFound, authorID)
	}
	return sum / float64(count), nil
}

func (m *Memory) GetPost(ctx context.Context, postID string) (*domain.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.posts[postID]
	if !ok {
		return nil, fmt.Errorf("%w: post %s", domain.ErrNotFound, postID)
	}
	out := *p
	return &out, nil
}

// ---- recommendation store ----

func (m *Memory) StoreBatch(ctx context.Context, batch *domain.RecommendationBatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.batches = append(m.batches, batch)
	for _, item := range batch.Items {
		m.itemStatus[statusKey(batch.UserID, item.PostID)] = domain.ItemGenerated
	}
	return nil
}

func (m *Memory) RecentPostIDs(ctx context.Context, userID string, window time.Duration) (map[string]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cutoff := m.Now().Add(-window)
	out := make(map[string]bool)
	for _, batch := range m.batches {
		if batch.UserID != userID || batch.GeneratedAt.Before(cutoff) {
			continue
		}
		for _, item := range batch.Items {
			out[item.PostID] = true
		}
	}
	return out, nil
}

var statusOrder = map[domain.ItemStatus]int{
	domain.ItemGenerated:  0,
	domain.ItemSeen:       1,
	domain.ItemInteracted: 2,
	domain.ItemFedBack:    3,
}

// UpdateItemStatus advances a batch item's lifecycle. Transitions never go
// backwards, and a post that was never recommended is a no-op.
func (m *Memory) UpdateItemStatus(ctx context.Context, userID, postID string, status domain.ItemStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := statusKey(userID, postID)
	current, ok := m.itemStatus[key]
	if !ok {
		return nil
	}
	if statusOrder[status] > statusOrder[current] {
		m.itemStatus[key] = status
	}
	return nil
}

// Attribution finds the strategy that most recently recommended the post to
// the user inside the window.
func (m *Memory) Attribution(ctx context.Context, userID, postID string, window time.Duration) (domain.Strategy, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cutoff := m.Now().Add(-window)
	for i := len(m.batches) - 1; i >= 0; i-- {
		batch := m.batches[i]
		if batch.UserID != userID || batch.GeneratedAt.Before(cutoff) {
			continue
		}
		for _, item := range batch.Items {
			if item.PostID == postID {
				return item.Strategy, true, nil
			}
		}
	}
	return "", false, nil
}

// ItemStatus reports the current lifecycle state of a recommended post.
func (m *Memory) ItemStatus(userID, postID string) (domain.ItemStatus, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.itemStatus[statusKey(userID, postID)]
	return s, ok
}

// ---- feedback store ----

func (m *Memory) StoreFeedback(ctx context.Context, rec *domain.FeedbackRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feedback = append(m.feedback, rec)
	return nil
}

// FeedbackRecords returns a copy of the retained feedback log.
func (m *Memory) FeedbackRecords() []*domain.FeedbackRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.FeedbackRecord, len(m.feedback))
	copy(out, m.feedback)
	return out
}

func statusKey(userID, postID string) string {
	return userID + "|" + postID
}
