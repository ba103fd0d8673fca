package domain

import (
	"fmt"
	"time"
)

type Action string

const (
	ActionView  Action = "view"
	ActionClick Action = "click"
	ActionLike  Action = "like"
	ActionShare Action = "share"
)

// Weight of an action. Stronger signals weigh more: view < click < like < share.
func (a Action) Weight() float64 {
	switch a {
	case ActionView:
		return 1.0
	case ActionClick:
		return 2.0
	case ActionLike:
		return 3.0
	case ActionShare:
		return 5.0
	}
	return 0
}

func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionView, ActionClick, ActionLike, ActionShare:
		return Action(s), nil
	}
	return "", fmt.Errorf("%w: unknown action %q", ErrInvalidArgument, s)
}

// Interaction is an immutable record of a user action on a post.
type Interaction struct {
	UserID    string    `json:"user_id"`
	PostID    string    `json:"post_id"`
	Action    Action    `json:"action"`
	Weight    float64   `json:"weight"`
	CreatedAt time.Time `json:"created_at"`
}
