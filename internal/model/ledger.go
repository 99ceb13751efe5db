package model

// LedgerData is the persisted balance and newest-first history.
type LedgerData struct {
	Balance      int           `json:"balance"`
	Transactions []Transaction `json:"transactions"`
}

// Backup is the full-state export document.
type Backup struct {
	Balance      int              `json:"balance"`
	Transactions []Transaction    `json:"transactions"`
	Earn         []ActivityOption `json:"earn"`
	Penalty      []ActivityOption `json:"penalty"`
}

// Snapshot is a read-only copy of the bank state handed to views.
type Snapshot struct {
	Balance      int           `json:"balance"`
	MaxMinutes   int           `json:"max_minutes"`
	Transactions []Transaction `json:"transactions"`
	Catalog      Catalog       `json:"catalog"`
	Settings     Settings      `json:"settings"`
}
