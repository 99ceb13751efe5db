package report

type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

type Gauge struct {
	Balance    int     `json:"balance"`
	MaxMinutes int     `json:"max_minutes"`
	Hours      int     `json:"hours"`
	Minutes    int     `json:"minutes"`
	Percent    float64 `json:"percent"`
	Level      Level   `json:"level"`
	Full       bool    `json:"full"`
}

// NewGauge describes the balance relative to the ceiling: below 20% is
// low, below 50% medium.
func NewGauge(balance, ceiling int) Gauge {
	g := Gauge{
		Balance:    balance,
		MaxMinutes: ceiling,
		Hours:      balance / 60,
		Minutes:    balance % 60,
		Full:       ceiling > 0 && balance >= ceiling,
	}
	if ceiling > 0 {
		g.Percent = min(100, max(0, float64(balance)/float64(ceiling)*100))
	}
	switch {
	case g.Percent < 20:
		g.Level = LevelLow
	case g.Percent < 50:
		g.Level = LevelMedium
	default:
		g.Level = LevelHigh
	}
	return g
}
