// Package backup reads and writes the bank's file formats: the full-state
// backup JSON (optionally passphrase-encrypted) and the CSV history export.
package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/tomwugdgz/qqtime/internal/model"
)

var (
	// ErrImportParse means the file is not JSON at all.
	ErrImportParse = errors.New("backup file could not be parsed")
	// ErrImportFormat means the JSON lacks a numeric balance or a
	// transactions array.
	ErrImportFormat = errors.New("backup file has an invalid format")
)

// Filename returns the conventional backup file name for day.
func Filename(day time.Time) string {
	return "timebank_backup_" + day.Format(time.DateOnly) + ".json"
}

// Write encodes b as the backup JSON document.
func Write(w io.Writer, b model.Backup) error {
	if b.Transactions == nil {
		b.Transactions = []model.Transaction{}
	}
	if b.Earn == nil {
		b.Earn = []model.ActivityOption{}
	}
	if b.Penalty == nil {
		b.Penalty = []model.ActivityOption{}
	}
	if err := json.NewEncoder(w).Encode(b); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	return nil
}

func Marshal(b model.Backup) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, b); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Parse validates an import document. Only the presence and JSON type of
// balance and transactions are checked; other keys are ignored.
func Parse(data []byte) (model.LedgerData, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.LedgerData{}, fmt.Errorf("%w: %v", ErrImportParse, err)
	}

	rawBalance, ok := doc["balance"]
	if !ok || !isJSONNumber(rawBalance) {
		return model.LedgerData{}, fmt.Errorf("%w: balance must be a number", ErrImportFormat)
	}
	var balance float64
	if err := json.Unmarshal(rawBalance, &balance); err != nil {
		return model.LedgerData{}, fmt.Errorf("%w: balance: %v", ErrImportFormat, err)
	}

	rawTxs, ok := doc["transactions"]
	if !ok || firstByte(rawTxs) != '[' {
		return model.LedgerData{}, fmt.Errorf("%w: transactions must be an array", ErrImportFormat)
	}
	var txs []model.Transaction
	if err := json.Unmarshal(rawTxs, &txs); err != nil {
		return model.LedgerData{}, fmt.Errorf("%w: transactions: %v", ErrImportFormat, err)
	}
	if txs == nil {
		txs = []model.Transaction{}
	}

	// Bound before converting; the bank clamps to its ceiling afterwards.
	balance = math.Max(math.MinInt32, math.Min(math.Floor(balance), math.MaxInt32))
	return model.LedgerData{Balance: int(balance), Transactions: txs}, nil
}

func firstByte(raw json.RawMessage) byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}

func isJSONNumber(raw json.RawMessage) bool {
	c := firstByte(raw)
	return c == '-' || (c >= '0' && c <= '9')
}
