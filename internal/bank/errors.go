package bank

import (
	"errors"
	"fmt"
)

var (
	ErrActivityNotFound = errors.New("activity not found")
	ErrInvalidAgeGroup  = errors.New("age group must be one of 3-6, 7-12, 13-16")
)

// ConfirmationError is returned by destructive operations invoked without
// consent. State is unchanged; the caller shows Prompt and re-invokes the
// operation with confirmation.
type ConfirmationError struct {
	Operation string
	Prompt    string
}

func (e *ConfirmationError) Error() string {
	return fmt.Sprintf("%s requires confirmation: %s", e.Operation, e.Prompt)
}

// NeedsConfirmation unwraps a *ConfirmationError from err.
func NeedsConfirmation(err error) (*ConfirmationError, bool) {
	var ce *ConfirmationError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

const (
	OpRedeemCash   = "redeem_cash"
	OpDeleteOption = "delete_option"
	OpClear        = "clear"
	OpImport       = "import"
)
