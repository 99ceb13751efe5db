package model

import "time"

type TransactionType string

const (
	TransactionEarn    TransactionType = "EARN"
	TransactionSpend   TransactionType = "SPEND"
	TransactionPenalty TransactionType = "PENALTY"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionEarn, TransactionSpend, TransactionPenalty:
		return true
	}
	return false
}

// Label returns the zh-CN display label used in exports.
func (t TransactionType) Label() string {
	switch t {
	case TransactionEarn:
		return "赚取"
	case TransactionSpend:
		return "消费"
	case TransactionPenalty:
		return "惩罚"
	}
	return string(t)
}

type Transaction struct {
	ID                string          `json:"id"`
	Timestamp         int64           `json:"timestamp"`
	Type              TransactionType `json:"type"`
	Category          Category        `json:"category"`
	Description       string          `json:"description"`
	InputDuration     int             `json:"inputDuration"`
	BankImpactMinutes int             `json:"bankImpactMinutes"`
}

// Time returns the creation instant in loc.
func (t Transaction) Time(loc *time.Location) time.Time {
	return time.UnixMilli(t.Timestamp).In(loc)
}
