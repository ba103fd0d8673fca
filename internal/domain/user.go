package domain

import "time"

// UserProfile holds a user's inferred interests and recent activity.
// Mutated only through the interaction store; affinity values are decayed
// and clamped, never overwritten destructively.
type UserProfile struct {
	UserID             string             `json:"user_id"`
	Interests          map[string]float64 `json:"interests"`
	RecentInteractions []Interaction      `json:"recent_interactions"`
	InteractionCount   int                `json:"interaction_count"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

func NewUserProfile(userID string) *UserProfile {
	return &UserProfile{
		UserID:    userID,
		Interests: make(map[string]float64),
	}
}

// ApplyInteraction folds one interaction into the interest vector: existing
// entries decay first so recent signal dominates, then the post's category
// and tags are credited by the action weight. Values stay in [0, clamp].
func (p *UserProfile) ApplyInteraction(profile *ContentProfile, weight, decay, tagCredit, clamp float64) {
	if p.Interests == nil {
		p.Interests = make(map[string]float64)
	}
	for k, v := range p.Interests {
		p.Interests[k] = v * decay
	}
	if profile.CategoryID != "" {
		p.Interests[CategoryKey(profile.CategoryID)] += weight
	}
	for _, tag := range profile.TagIDs {
		p.Interests[TagKey(tag)] += weight * tagCredit
	}
	p.clampInterests(clamp)
	p.InteractionCount++
	p.UpdatedAt = time.Now()
}

// ApplyFeedback nudges the entries matching the post's taxonomy by a fixed
// magnitude, up for positive and down for negative, clamped to [0, clamp].
func (p *UserProfile) ApplyFeedback(profile *ContentProfile, fb Feedback, delta, clamp float64) {
	if p.Interests == nil {
		p.Interests = make(map[string]float64)
	}
	if fb == FeedbackNegative {
		delta = -delta
	}
	for _, key := range profile.InterestKeys() {
		p.Interests[key] += delta
	}
	p.clampInterests(clamp)
	p.UpdatedAt = time.Now()
}

func (p *UserProfile) clampInterests(clamp float64) {
	for k, v := range p.Interests {
		if v < 0 {
			p.Interests[k] = 0
		} else if v > clamp {
			p.Interests[k] = clamp
		}
	}
}
