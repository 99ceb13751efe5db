// Package ledger implements the time bank balance transform: how an entry
// moves the balance, how the result is clamped into [0, ceiling], and the
// transaction record that goes on top of the history.
package ledger

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tomwugdgz/qqtime/internal/model"
)

const (
	DefaultPlayDescription    = "自由游玩"
	DefaultPenaltyDescription = "违规扣除"

	// cashMarker tags legacy cash redemptions that predate the explicit
	// Cash flag.
	cashMarker = "零花钱"
)

// Entry is one user action to be applied to the balance.
type Entry struct {
	Kind model.TransactionType
	// Activity is required for EARN. For PENALTY it only supplies the
	// category and default description; its ratio is ignored.
	Activity    *model.ActivityOption
	Minutes     int
	Description string
	// Cash marks a SPEND that redeems minutes for pocket money.
	Cash bool
}

// Stamp identifies the transaction being created.
type Stamp struct {
	ID string
	At time.Time
}

type Result struct {
	Balance     int
	Transaction model.Transaction
	// RequestedImpact is the delta before clamping.
	RequestedImpact int
	Clamped         bool
}

// Apply computes the new balance and the transaction for e. It is a pure
// function of its arguments. The recorded BankImpactMinutes is the delta
// actually applied, so replaying impacts over history always reproduces the
// balance.
func Apply(balance int, e Entry, ceiling int, stamp Stamp) (Result, error) {
	if e.Minutes <= 0 {
		return Result{}, ErrInvalidMinutes
	}

	var requested, next int
	switch e.Kind {
	case model.TransactionEarn:
		if e.Activity == nil {
			return Result{}, ErrActivityRequired
		}
		if e.Activity.ExchangeRatio < 0 {
			return Result{}, fmt.Errorf("%w: %q has ratio %v", ErrInvalidRatio, e.Activity.ID, e.Activity.ExchangeRatio)
		}
		requested = int(math.Floor(float64(e.Minutes) * e.Activity.ExchangeRatio))
		next = min(balance+requested, ceiling)
	case model.TransactionSpend, model.TransactionPenalty:
		requested = -e.Minutes
		next = max(balance+requested, 0)
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
	}

	tx := model.Transaction{
		ID:                stamp.ID,
		Timestamp:         stamp.At.UnixMilli(),
		Type:              e.Kind,
		Category:          categoryFor(e),
		Description:       descriptionFor(e),
		InputDuration:     e.Minutes,
		BankImpactMinutes: next - balance,
	}

	return Result{
		Balance:         next,
		Transaction:     tx,
		RequestedImpact: requested,
		Clamped:         next-balance != requested,
	}, nil
}

func categoryFor(e Entry) model.Category {
	if e.Activity != nil {
		return e.Activity.Category
	}
	if e.Kind == model.TransactionSpend && (e.Cash || strings.Contains(e.Description, cashMarker)) {
		return model.CategoryLife
	}
	return model.CategoryPlay
}

func descriptionFor(e Entry) string {
	if d := strings.TrimSpace(e.Description); d != "" {
		return d
	}
	if e.Activity != nil {
		return e.Activity.Name
	}
	switch {
	case e.Kind == model.TransactionPenalty:
		return DefaultPenaltyDescription
	case e.Cash:
		return cashMarker
	}
	return DefaultPlayDescription
}

// Prepend returns history with tx on top. The input slice is not modified.
func Prepend(history []model.Transaction, tx model.Transaction) []model.Transaction {
	out := make([]model.Transaction, 0, len(history)+1)
	out = append(out, tx)
	return append(out, history...)
}

// Clamp forces b into [0, ceiling].
func Clamp(b, ceiling int) int {
	return max(0, min(b, ceiling))
}
