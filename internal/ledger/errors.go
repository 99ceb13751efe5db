package ledger

import "errors"

// Validation rejections. None of them change state; callers surface the
// message and re-prompt.
var (
	ErrUnknownKind         = errors.New("unknown transaction type")
	ErrInvalidMinutes      = errors.New("minutes must be a positive integer")
	ErrMinutesOutOfRange   = errors.New("minutes exceed the allowed range")
	ErrActivityRequired    = errors.New("earning requires an activity")
	ErrInvalidRatio        = errors.New("earning activity must have a non-negative exchange ratio")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrOverPlayLimit       = errors.New("single play session exceeds the limit")
)
