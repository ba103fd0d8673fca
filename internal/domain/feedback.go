package domain

import (
	"fmt"
	"time"
)

type Feedback string

const (
	FeedbackPositive Feedback = "positive"
	FeedbackNegative Feedback = "negative"
)

func ParseFeedback(s string) (Feedback, error) {
	switch Feedback(s) {
	case FeedbackPositive, FeedbackNegative:
		return Feedback(s), nil
	}
	return "", fmt.Errorf("%w: unknown feedback %q", ErrInvalidArgument, s)
}

// FeedbackRecord is an immutable explicit feedback event, kept for audit
// and tuning after its interest adjustment has been applied.
type FeedbackRecord struct {
	UserID     string    `json:"user_id"`
	PostID     string    `json:"post_id"`
	Feedback   Feedback  `json:"feedback"`
	Reason     string    `json:"reason,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}
