package domain

import "errors"

var (
	// ErrUnauthorized means no user could be resolved for the request.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument covers unknown strategy types, actions and
	// malformed limits.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound means a referenced post has no content profile.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable means every extractor failed or a storage
	// collaborator is unreachable.
	ErrUnavailable = errors.New("unavailable")
)
