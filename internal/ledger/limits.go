package ledger

import "fmt"

// Limits are the caps and rates the ledger and its guards enforce.
type Limits struct {
	MaxBankHours       int `toml:"max_bank_hours"`
	MaxSinglePlayHours int `toml:"max_single_play_hours"`
	MaxEarnMinutes     int `toml:"max_earn_minutes"`
	MaxPenaltyMinutes  int `toml:"max_penalty_minutes"`
	CashRateMinutes    int `toml:"cash_rate_minutes"`
	CashRateAmount     int `toml:"cash_rate_amount"`
}

func DefaultLimits() Limits {
	return Limits{
		MaxBankHours:       12,
		MaxSinglePlayHours: 2,
		MaxEarnMinutes:     300,
		MaxPenaltyMinutes:  120,
		CashRateMinutes:    30,
		CashRateAmount:     5,
	}
}

// Ceiling is the largest balance the bank may hold, in minutes.
func (l Limits) Ceiling() int {
	return l.MaxBankHours * 60
}

// MaxPlayMinutes is the per-session leisure redemption ceiling.
func (l Limits) MaxPlayMinutes() int {
	return l.MaxSinglePlayHours * 60
}

func (l Limits) Validate() error {
	if l.MaxBankHours <= 0 {
		return fmt.Errorf("max_bank_hours must be > 0")
	}
	if l.MaxSinglePlayHours <= 0 {
		return fmt.Errorf("max_single_play_hours must be > 0")
	}
	if l.MaxEarnMinutes <= 0 || l.MaxPenaltyMinutes <= 0 {
		return fmt.Errorf("max_earn_minutes and max_penalty_minutes must be > 0")
	}
	if l.CashRateMinutes <= 0 || l.CashRateAmount < 0 {
		return fmt.Errorf("cash rate must be a positive number of minutes and a non-negative amount")
	}
	return nil
}
