package ledger

import (
	"errors"
	"testing"

	"github.com/tomwugdgz/qqtime/internal/model"
)

func TestCheckPlay(t *testing.T) {
	l := DefaultLimits()
	tests := []struct {
		name    string
		balance int
		minutes int
		want    error
	}{
		{"ok", 200, 60, nil},
		{"exact balance", 60, 60, nil},
		{"over session limit", 720, 121, ErrOverPlayLimit},
		{"over balance", 10, 30, ErrInsufficientBalance},
		{"zero", 100, 0, ErrInvalidMinutes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPlay(tt.balance, tt.minutes, l)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCheckBounds(t *testing.T) {
	l := DefaultLimits()
	if err := CheckEarn(300, l); err != nil {
		t.Errorf("earn 300: %v", err)
	}
	if err := CheckEarn(301, l); !errors.Is(err, ErrMinutesOutOfRange) {
		t.Errorf("earn 301: %v", err)
	}
	if err := CheckPenalty(120, l); err != nil {
		t.Errorf("penalty 120: %v", err)
	}
	if err := CheckPenalty(121, l); !errors.Is(err, ErrMinutesOutOfRange) {
		t.Errorf("penalty 121: %v", err)
	}
}

func TestCheckDispatch(t *testing.T) {
	l := DefaultLimits()
	// cash redemption is not bound by the play session ceiling
	if err := Check(600, Entry{Kind: model.TransactionSpend, Minutes: 300, Cash: true}, l); err != nil {
		t.Errorf("cash 300: %v", err)
	}
	if err := Check(600, Entry{Kind: model.TransactionSpend, Minutes: 300}, l); !errors.Is(err, ErrOverPlayLimit) {
		t.Errorf("play 300: %v", err)
	}
	// penalties are floored by the engine, not rejected
	if err := Check(0, Entry{Kind: model.TransactionPenalty, Minutes: 60}, l); err != nil {
		t.Errorf("penalty on empty bank: %v", err)
	}
	if err := Check(0, Entry{Kind: "BONUS", Minutes: 60}, l); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("unknown kind: %v", err)
	}
}

func TestCashAmount(t *testing.T) {
	l := DefaultLimits()
	tests := []struct {
		minutes int
		want    int
	}{
		{30, 5},
		{60, 10},
		{45, 7},
		{29, 4},
		{5, 0},
		{0, 0},
	}
	for _, tt := range tests {
		if got := CashAmount(tt.minutes, l); got != tt.want {
			t.Errorf("CashAmount(%d) = %d, want %d", tt.minutes, got, tt.want)
		}
	}
	if got := CashDescription(5); got != "兑换零花钱: ¥5" {
		t.Errorf("CashDescription = %q", got)
	}
}

func TestLimitsValidate(t *testing.T) {
	l := DefaultLimits()
	if err := l.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if l.Ceiling() != 720 || l.MaxPlayMinutes() != 120 {
		t.Errorf("ceiling = %d, play = %d", l.Ceiling(), l.MaxPlayMinutes())
	}
	l.MaxBankHours = 0
	if err := l.Validate(); err == nil {
		t.Error("expected error for zero ceiling")
	}
}
