package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrWrongTurn             = errors.New("not your turn")
	ErrPlayerUnavailable     = errors.New("player unavailable")
	ErrConflict              = errors.New("conflicting state")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrInvariantViolation    = errors.New("invariant violation")
)
