package store

import (
	"testing"

	"github.com/tomwugdgz/qqtime/internal/database"
	"github.com/tomwugdgz/qqtime/internal/model"
)

func setupBankTestDB(t *testing.T) *BankStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewBankStore(db)
}

func TestBankStoreZeroState(t *testing.T) {
	bs := setupBankTestDB(t)

	d, err := bs.LoadData()
	if err != nil {
		t.Fatalf("load data: %v", err)
	}
	if d.Balance != 0 || d.Transactions == nil || len(d.Transactions) != 0 {
		t.Errorf("zero data = %+v", d)
	}

	st, err := bs.LoadSettings()
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if st.AgeGroup != model.AgeGroupPrimary {
		t.Errorf("default age group = %q", st.AgeGroup)
	}

	c, err := bs.LoadCatalog()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if len(c.Earn) != 0 || len(c.Penalty) != 0 {
		t.Errorf("stored catalog should be empty, got %+v", c)
	}
}

func TestBankStoreDataRoundTrip(t *testing.T) {
	bs := setupBankTestDB(t)

	in := model.LedgerData{
		Balance: 90,
		Transactions: []model.Transaction{
			{ID: "2", Timestamp: 1700000001000, Type: model.TransactionSpend, Category: model.CategoryPlay, Description: "自由游玩", InputDuration: 30, BankImpactMinutes: -30},
			{ID: "1", Timestamp: 1700000000000, Type: model.TransactionEarn, Category: model.CategoryStudy, Description: "专注阅读", InputDuration: 240, BankImpactMinutes: 120},
		},
	}
	if err := bs.SaveData(in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := bs.LoadData()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.Balance != 90 || len(out.Transactions) != 2 {
		t.Fatalf("out = %+v", out)
	}
	if out.Transactions[0] != in.Transactions[0] || out.Transactions[1] != in.Transactions[1] {
		t.Errorf("transactions differ: %+v", out.Transactions)
	}

	if err := bs.ClearData(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	out, _ = bs.LoadData()
	if out.Balance != 0 || len(out.Transactions) != 0 {
		t.Errorf("after clear = %+v", out)
	}
}

func TestBankStoreDataWireFormat(t *testing.T) {
	bs := setupBankTestDB(t)

	bs.SaveData(model.LedgerData{Balance: 5})
	raw, err := bs.blobs.Get(KeyData)
	if err != nil {
		t.Fatalf("get raw: %v", err)
	}
	if string(raw) != `{"balance":5,"transactions":[]}` {
		t.Errorf("raw = %s", raw)
	}
}

func TestBankStoreSettings(t *testing.T) {
	bs := setupBankTestDB(t)

	if err := bs.SaveSettings(model.Settings{AgeGroup: model.AgeGroupTeen}); err != nil {
		t.Fatalf("save: %v", err)
	}
	st, err := bs.LoadSettings()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if st.AgeGroup != model.AgeGroupTeen {
		t.Errorf("age group = %q", st.AgeGroup)
	}

	// unknown stored values fall back to the default
	bs.blobs.Put(KeySettings, []byte(`{"ageGroup":"99"}`))
	st, _ = bs.LoadSettings()
	if st.AgeGroup != model.AgeGroupPrimary {
		t.Errorf("age group = %q, want default", st.AgeGroup)
	}
}

func TestBankStoreCatalog(t *testing.T) {
	bs := setupBankTestDB(t)

	in := model.Catalog{
		Earn:    []model.ActivityOption{{ID: "piano", Name: "弹钢琴", Category: model.CategoryStudy, DefaultDurationMinutes: 30, ExchangeRatio: 0.5}},
		Penalty: []model.ActivityOption{{ID: "late", Name: "迟到", Category: model.CategoryPenaltyLife, ExchangeRatio: -1, IsPenalty: true}},
	}
	if err := bs.SaveCatalog(in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := bs.LoadCatalog()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out.Earn) != 1 || out.Earn[0] != in.Earn[0] {
		t.Errorf("earn = %+v", out.Earn)
	}
	if len(out.Penalty) != 1 || out.Penalty[0] != in.Penalty[0] {
		t.Errorf("penalty = %+v", out.Penalty)
	}
}

func TestBankStoreCorruptBlob(t *testing.T) {
	bs := setupBankTestDB(t)

	bs.blobs.Put(KeyData, []byte(`{not json`))
	if _, err := bs.LoadData(); err == nil {
		t.Error("expected decode error")
	}
}

func TestBankStoreDefaultAgeGroup(t *testing.T) {
	bs := setupBankTestDB(t).WithDefaultAgeGroup(model.AgeGroupTeen)

	st, err := bs.LoadSettings()
	if err != nil {
		t.Fatal(err)
	}
	if st.AgeGroup != model.AgeGroupTeen {
		t.Errorf("unsaved age group = %q, want configured default", st.AgeGroup)
	}

	if err := bs.SaveSettings(model.Settings{AgeGroup: model.AgeGroupPreschool}); err != nil {
		t.Fatal(err)
	}
	st, err = bs.LoadSettings()
	if err != nil {
		t.Fatal(err)
	}
	if st.AgeGroup != model.AgeGroupPreschool {
		t.Errorf("saved age group = %q", st.AgeGroup)
	}
}
