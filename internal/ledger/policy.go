package ledger

import (
	"fmt"

	"github.com/tomwugdgz/qqtime/internal/model"
)

// CheckEarn bounds the real-world duration a single earn entry may log.
func CheckEarn(minutes int, l Limits) error {
	if minutes <= 0 {
		return ErrInvalidMinutes
	}
	if minutes > l.MaxEarnMinutes {
		return fmt.Errorf("%w: earn %d > %d", ErrMinutesOutOfRange, minutes, l.MaxEarnMinutes)
	}
	return nil
}

// CheckPenalty bounds a single deduction. Penalties are not limited by the
// balance; the engine floors the result at zero.
func CheckPenalty(minutes int, l Limits) error {
	if minutes <= 0 {
		return ErrInvalidMinutes
	}
	if minutes > l.MaxPenaltyMinutes {
		return fmt.Errorf("%w: penalty %d > %d", ErrMinutesOutOfRange, minutes, l.MaxPenaltyMinutes)
	}
	return nil
}

// CheckSpend rejects any spend larger than the current balance.
func CheckSpend(balance, minutes int) error {
	if minutes <= 0 {
		return ErrInvalidMinutes
	}
	if minutes > balance {
		return fmt.Errorf("%w: requested %d, available %d", ErrInsufficientBalance, minutes, balance)
	}
	return nil
}

// CheckPlay applies the per-session ceiling before the balance check.
func CheckPlay(balance, minutes int, l Limits) error {
	if minutes <= 0 {
		return ErrInvalidMinutes
	}
	if minutes > l.MaxPlayMinutes() {
		return fmt.Errorf("%w: %d > %d minutes", ErrOverPlayLimit, minutes, l.MaxPlayMinutes())
	}
	return CheckSpend(balance, minutes)
}

// CashAmount converts minutes to pocket money at the configured rate,
// rounding down. With the default rate this is floor(minutes / 30 * 5).
func CashAmount(minutes int, l Limits) int {
	if minutes <= 0 || l.CashRateMinutes <= 0 {
		return 0
	}
	return minutes * l.CashRateAmount / l.CashRateMinutes
}

func CashDescription(amount int) string {
	return fmt.Sprintf("兑换零花钱: ¥%d", amount)
}

// Check runs the guard that matches e.Kind.
func Check(balance int, e Entry, l Limits) error {
	switch e.Kind {
	case model.TransactionEarn:
		return CheckEarn(e.Minutes, l)
	case model.TransactionPenalty:
		return CheckPenalty(e.Minutes, l)
	case model.TransactionSpend:
		if e.Cash {
			return CheckSpend(balance, e.Minutes)
		}
		return CheckPlay(balance, e.Minutes, l)
	}
	return fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
}
