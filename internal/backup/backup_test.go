package backup

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/tomwugdgz/qqtime/internal/model"
)

func sampleBackup() model.Backup {
	return model.Backup{
		Balance: 60,
		Transactions: []model.Transaction{
			{ID: "3", Timestamp: 1772690589000, Type: model.TransactionSpend, Category: model.CategoryLife, Description: "兑换零花钱: ¥5", InputDuration: 30, BankImpactMinutes: -30},
			{ID: "2", Timestamp: 1772690500000, Type: model.TransactionPenalty, Category: model.CategoryPenaltyStudy, Description: `说"马上"写作业`, InputDuration: 30, BankImpactMinutes: -30},
			{ID: "1", Timestamp: 1772690400000, Type: model.TransactionEarn, Category: model.CategoryStudy, Description: "专注阅读", InputDuration: 240, BankImpactMinutes: 120},
		},
		Earn:    []model.ActivityOption{{ID: "reading", Name: "专注阅读", Category: model.CategoryStudy, DefaultDurationMinutes: 60, ExchangeRatio: 0.5}},
		Penalty: []model.ActivityOption{{ID: "lying", Name: "撒谎/隐瞒", Category: model.CategoryPenaltyMoral, DefaultDurationMinutes: 120, ExchangeRatio: -1, IsPenalty: true}},
	}
}

func TestBackupRoundTrip(t *testing.T) {
	in := sampleBackup()
	raw, err := Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	out, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if out.Balance != in.Balance {
		t.Errorf("balance = %d, want %d", out.Balance, in.Balance)
	}
	if len(out.Transactions) != len(in.Transactions) {
		t.Fatalf("transactions = %d, want %d", len(out.Transactions), len(in.Transactions))
	}
	for i := range in.Transactions {
		if out.Transactions[i] != in.Transactions[i] {
			t.Errorf("transaction %d = %+v, want %+v", i, out.Transactions[i], in.Transactions[i])
		}
	}
}

func TestBackupWireKeys(t *testing.T) {
	raw, err := Marshal(model.Backup{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"balance":0,"transactions":[],"earn":[],"penalty":[]}`
	if strings.TrimSpace(string(raw)) != want {
		t.Errorf("raw = %s, want %s", raw, want)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"not json", `hello`, ErrImportParse},
		{"array document", `[1,2]`, ErrImportParse},
		{"missing balance", `{"transactions":[]}`, ErrImportFormat},
		{"string balance", `{"balance":"90","transactions":[]}`, ErrImportFormat},
		{"null balance", `{"balance":null,"transactions":[]}`, ErrImportFormat},
		{"missing transactions", `{"balance":90}`, ErrImportFormat},
		{"object transactions", `{"balance":90,"transactions":{}}`, ErrImportFormat},
		{"bad transaction element", `{"balance":90,"transactions":[{"timestamp":"yesterday"}]}`, ErrImportFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseAcceptsZeroValues(t *testing.T) {
	d, err := Parse([]byte(`{"balance":0,"transactions":[],"extra":true}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Balance != 0 || d.Transactions == nil || len(d.Transactions) != 0 {
		t.Errorf("data = %+v", d)
	}
}

func TestParseBoundsBalance(t *testing.T) {
	tests := []struct {
		data string
		want int
	}{
		{`{"balance":1e300,"transactions":[]}`, math.MaxInt32},
		{`{"balance":-1e300,"transactions":[]}`, math.MinInt32},
		{`{"balance":90.9,"transactions":[]}`, 90},
		{`{"balance":-0.5,"transactions":[]}`, -1},
	}
	for _, tt := range tests {
		d, err := Parse([]byte(tt.data))
		if err != nil {
			t.Fatalf("parse %s: %v", tt.data, err)
		}
		if d.Balance != tt.want {
			t.Errorf("%s: balance = %d, want %d", tt.data, d.Balance, tt.want)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleBackup().Transactions, loc); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "\uFEFF") {
		t.Fatal("missing byte-order mark")
	}
	lines := strings.Split(strings.TrimSuffix(strings.TrimPrefix(out, "\uFEFF"), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %d, want 4:\n%s", len(lines), out)
	}
	if lines[0] != "时间,类型,项目,描述,投入时长(分),存折变动(分)" {
		t.Errorf("header = %q", lines[0])
	}
	// 1772690589000 ms = 2026-03-05 06:03:09 UTC = 14:03:09 CST
	if lines[1] != `2026/3/5 14:03:09,消费,生活实践,"兑换零花钱: ¥5",30,-30` {
		t.Errorf("row 1 = %q", lines[1])
	}
	if !strings.Contains(lines[2], `,惩罚,学习违规,"说""马上""写作业",30,-30`) {
		t.Errorf("row 2 = %q", lines[2])
	}
	if !strings.HasSuffix(lines[3], `,赚取,学习成长,"专注阅读",240,120`) {
		t.Errorf("row 3 = %q", lines[3])
	}
}

func TestFilenames(t *testing.T) {
	day := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	if got := Filename(day); got != "timebank_backup_2026-10-19.json" {
		t.Errorf("Filename = %q", got)
	}
	if got := CSVFilename(day); got != "timebank_export_2026-10-19.csv" {
		t.Errorf("CSVFilename = %q", got)
	}
}
