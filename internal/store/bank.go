package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/tomwugdgz/qqtime/internal/model"
)

// BankStore maps the bank's three documents onto blobs.
type BankStore struct {
	blobs    *BlobStore
	defaults model.Settings
}

func NewBankStore(db *sql.DB) *BankStore {
	return &BankStore{blobs: NewBlobStore(db), defaults: model.DefaultSettings()}
}

// WithDefaultAgeGroup sets the age group reported while no settings have
// been saved. Invalid groups are ignored.
func (s *BankStore) WithDefaultAgeGroup(g model.AgeGroup) *BankStore {
	if g.Valid() {
		s.defaults.AgeGroup = g
	}
	return s
}

func (s *BankStore) load(key string, v any) (bool, error) {
	raw, err := s.blobs.Get(key)
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *BankStore) save(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.blobs.Put(key, raw)
}

// LoadData returns the stored balance and history, or the zero state.
func (s *BankStore) LoadData() (model.LedgerData, error) {
	var d model.LedgerData
	if _, err := s.load(KeyData, &d); err != nil {
		return model.LedgerData{}, err
	}
	if d.Transactions == nil {
		d.Transactions = []model.Transaction{}
	}
	return d, nil
}

func (s *BankStore) SaveData(d model.LedgerData) error {
	if d.Transactions == nil {
		d.Transactions = []model.Transaction{}
	}
	return s.save(KeyData, d)
}

// ClearData removes the data blob entirely.
func (s *BankStore) ClearData() error {
	return s.blobs.Delete(KeyData)
}

// LoadSettings falls back to the defaults for missing or unknown values.
func (s *BankStore) LoadSettings() (model.Settings, error) {
	st := s.defaults
	var stored model.Settings
	if _, err := s.load(KeySettings, &stored); err != nil {
		return st, err
	}
	if stored.AgeGroup.Valid() {
		st.AgeGroup = stored.AgeGroup
	}
	return st, nil
}

func (s *BankStore) SaveSettings(st model.Settings) error {
	return s.save(KeySettings, st)
}

// LoadCatalog returns the stored lists. The caller merges them over the
// seed.
func (s *BankStore) LoadCatalog() (model.Catalog, error) {
	var c model.Catalog
	if _, err := s.load(KeyOptions, &c); err != nil {
		return model.Catalog{}, err
	}
	return c, nil
}

func (s *BankStore) SaveCatalog(c model.Catalog) error {
	return s.save(KeyOptions, c)
}
