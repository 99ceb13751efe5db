package bank

import (
	"time"

	"github.com/tomwugdgz/qqtime/internal/report"
)

// Trend is the trailing seven-day earn/spend series ending today.
func (b *Bank) Trend() []report.TrendPoint {
	return report.Trend(b.History(), b.Now(), b.opts.Location)
}

func (b *Bank) Month(year int, month time.Month) report.Calendar {
	return report.Month(b.History(), year, month, b.Now(), b.opts.Location)
}

func (b *Bank) Day(day report.DayKey) report.DayDetail {
	return report.Day(b.History(), day, b.opts.Location)
}

func (b *Bank) Gauge() report.Gauge {
	return report.NewGauge(b.Balance(), b.opts.Limits.Ceiling())
}
