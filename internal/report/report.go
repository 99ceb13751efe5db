// Package report holds the read-side projections views render from the
// transaction history: daily buckets, the 7-day trend, the month calendar
// and the balance gauge.
package report

import (
	"fmt"
	"time"

	"github.com/tomwugdgz/qqtime/internal/model"
)

const TrendDays = 7

// DayKey is a local calendar date.
type DayKey struct {
	Year  int
	Month time.Month
	Day   int
}

func KeyOf(t time.Time) DayKey {
	return DayKey{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func (k DayKey) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", k.Year, int(k.Month), k.Day)
}

// Label is the short month/day label, e.g. "3/5".
func (k DayKey) Label() string {
	return fmt.Sprintf("%d/%d", int(k.Month), k.Day)
}

func (k DayKey) Time(loc *time.Location) time.Time {
	return time.Date(k.Year, k.Month, k.Day, 0, 0, 0, 0, loc)
}

// ParseDay parses YYYY-MM-DD.
func ParseDay(s string) (DayKey, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return DayKey{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return KeyOf(t), nil
}

// GroupByDay buckets transactions by local date, keeping history order
// within a bucket.
func GroupByDay(txs []model.Transaction, loc *time.Location) map[DayKey][]model.Transaction {
	out := make(map[DayKey][]model.Transaction)
	for _, tx := range txs {
		k := KeyOf(tx.Time(loc))
		out[k] = append(out[k], tx)
	}
	return out
}

type Stats struct {
	Earn  int `json:"earn"`
	Spend int `json:"spend"`
	Net   int `json:"net"`
}

// DayStats sums positive impacts into Earn and the magnitude of the rest
// into Spend.
func DayStats(txs []model.Transaction) Stats {
	var s Stats
	for _, tx := range txs {
		if tx.BankImpactMinutes > 0 {
			s.Earn += tx.BankImpactMinutes
		} else {
			s.Spend += -tx.BankImpactMinutes
		}
	}
	s.Net = s.Earn - s.Spend
	return s
}

type TrendPoint struct {
	Date  string `json:"date"`
	Label string `json:"label"`
	Earn  int    `json:"earn"`
	Spend int    `json:"spend"`
}

// Trend returns one point per day for the trailing TrendDays days ending
// today, oldest first. EARN impacts count as earn; SPEND and PENALTY
// magnitudes count as spend.
func Trend(txs []model.Transaction, now time.Time, loc *time.Location) []TrendPoint {
	today := KeyOf(now.In(loc)).Time(loc)
	points := make([]TrendPoint, TrendDays)
	index := make(map[DayKey]int, TrendDays)
	for i := range TrendDays {
		k := KeyOf(today.AddDate(0, 0, i-(TrendDays-1)))
		points[i] = TrendPoint{Date: k.String(), Label: k.Label()}
		index[k] = i
	}

	for _, tx := range txs {
		i, ok := index[KeyOf(tx.Time(loc))]
		if !ok {
			continue
		}
		switch tx.Type {
		case model.TransactionEarn:
			points[i].Earn += tx.BankImpactMinutes
		case model.TransactionSpend, model.TransactionPenalty:
			points[i].Spend += abs(tx.BankImpactMinutes)
		}
	}
	return points
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
