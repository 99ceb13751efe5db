package report

import (
	"time"

	"github.com/tomwugdgz/qqtime/internal/model"
)

type CalendarDay struct {
	Date     string `json:"date"`
	Day      int    `json:"day"`
	HasEarn  bool   `json:"has_earn"`
	HasSpend bool   `json:"has_spend"`
	IsToday  bool   `json:"is_today"`
	Stats    Stats  `json:"stats"`
	Count    int    `json:"count"`
}

type Calendar struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	// Leading is the number of blank cells before day 1 in a Sunday-first
	// week grid.
	Leading int           `json:"leading"`
	Days    []CalendarDay `json:"days"`
	Stats   Stats         `json:"stats"`
}

// Month builds the calendar grid for year/month in loc.
func Month(txs []model.Transaction, year int, month time.Month, now time.Time, loc *time.Location) Calendar {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	daysIn := first.AddDate(0, 1, -1).Day()
	today := KeyOf(now.In(loc))
	byDay := GroupByDay(txs, loc)

	cal := Calendar{
		Year:    year,
		Month:   int(month),
		Leading: int(first.Weekday()),
		Days:    make([]CalendarDay, 0, daysIn),
	}
	var monthTxs []model.Transaction
	for d := 1; d <= daysIn; d++ {
		k := DayKey{Year: year, Month: month, Day: d}
		dayTxs := byDay[k]
		monthTxs = append(monthTxs, dayTxs...)

		cd := CalendarDay{
			Date:    k.String(),
			Day:     d,
			IsToday: k == today,
			Stats:   DayStats(dayTxs),
			Count:   len(dayTxs),
		}
		for _, tx := range dayTxs {
			if tx.Type == model.TransactionEarn {
				cd.HasEarn = true
			} else {
				cd.HasSpend = true
			}
		}
		cal.Days = append(cal.Days, cd)
	}
	cal.Stats = DayStats(monthTxs)
	return cal
}

type DayDetail struct {
	Date         string              `json:"date"`
	Stats        Stats               `json:"stats"`
	Transactions []model.Transaction `json:"transactions"`
}

// Day returns the transactions and totals for a single date.
func Day(txs []model.Transaction, day DayKey, loc *time.Location) DayDetail {
	dayTxs := GroupByDay(txs, loc)[day]
	if dayTxs == nil {
		dayTxs = []model.Transaction{}
	}
	return DayDetail{Date: day.String(), Stats: DayStats(dayTxs), Transactions: dayTxs}
}
