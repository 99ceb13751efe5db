// Package bank owns the time bank state. A Bank is the only mutator of the
// balance, history, catalog and settings; everything else receives
// snapshots. Each mutation is persisted as a full-blob overwrite before it
// is committed in memory, then published to the notifier.
package bank

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomwugdgz/qqtime/internal/backup"
	"github.com/tomwugdgz/qqtime/internal/catalog"
	"github.com/tomwugdgz/qqtime/internal/ledger"
	"github.com/tomwugdgz/qqtime/internal/metrics"
	"github.com/tomwugdgz/qqtime/internal/model"
)

// Repository persists the three bank documents.
type Repository interface {
	LoadData() (model.LedgerData, error)
	SaveData(model.LedgerData) error
	ClearData() error
	LoadSettings() (model.Settings, error)
	SaveSettings(model.Settings) error
	LoadCatalog() (model.Catalog, error)
	SaveCatalog(model.Catalog) error
}

// Event describes a committed change.
type Event struct {
	Entity  string
	Action  string
	ID      string
	Balance int
}

// Notifier receives committed changes. Implementations must not block.
type Notifier interface {
	Notify(Event)
}

type NotifierFunc func(Event)

func (f NotifierFunc) Notify(e Event) { f(e) }

type Options struct {
	Limits   ledger.Limits
	Location *time.Location
	Now      func() time.Time
	NewID    func() string
	Notifier Notifier
	Metrics  metrics.Recorder
	Logger   *slog.Logger
}

func (o *Options) fill() {
	if o.Limits == (ledger.Limits{}) {
		o.Limits = ledger.DefaultLimits()
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = newTransactionID
	}
	if o.Metrics == nil {
		o.Metrics = metrics.Discard
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// newTransactionID returns a time-ordered UUIDv7.
func newTransactionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

type Bank struct {
	mu   sync.Mutex
	repo Repository
	opts Options

	balance  int
	history  []model.Transaction
	catalog  model.Catalog
	settings model.Settings
}

// New loads persisted state, falling back to an empty ledger, default
// settings and the built-in catalog.
func New(repo Repository, opts Options) (*Bank, error) {
	opts.fill()
	if err := opts.Limits.Validate(); err != nil {
		return nil, fmt.Errorf("limits: %w", err)
	}

	b := &Bank{repo: repo, opts: opts}
	if err := b.load(); err != nil {
		return nil, err
	}
	return b, nil
}

// load replaces the in-memory state with the stored documents. The store is
// the source of truth: a CLI command or a second server may have written
// since the last call, so every operation loads before it reads or writes.
// Callers hold b.mu.
func (b *Bank) load() error {
	data, err := b.repo.LoadData()
	if err != nil {
		return fmt.Errorf("load data: %w", err)
	}
	settings, err := b.repo.LoadSettings()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	stored, err := b.repo.LoadCatalog()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	b.balance = ledger.Clamp(data.Balance, b.opts.Limits.Ceiling())
	b.history = data.Transactions
	if b.history == nil {
		b.history = []model.Transaction{}
	}
	b.catalog = catalog.Merge(catalog.Seed(), stored)
	b.settings = settings
	b.opts.Metrics.State(b.balance, len(b.history))
	return nil
}

// refresh is load for readers: on a store error the last loaded state is
// served.
func (b *Bank) refresh() {
	if err := b.load(); err != nil {
		b.logger().Error("reload state", "error", err)
	}
}

func (b *Bank) Limits() ledger.Limits    { return b.opts.Limits }
func (b *Bank) Location() *time.Location { return b.opts.Location }
func (b *Bank) logger() *slog.Logger     { return b.opts.Logger }

// Now is the bank clock in the configured location.
func (b *Bank) Now() time.Time {
	return b.opts.Now().In(b.opts.Location)
}

func (b *Bank) notify(e Event) {
	if b.opts.Notifier != nil {
		b.opts.Notifier.Notify(e)
	}
}

// Receipt is the outcome of a ledger operation.
type Receipt struct {
	Transaction     model.Transaction `json:"transaction"`
	Balance         int               `json:"balance"`
	RequestedImpact int               `json:"requested_impact"`
	Clamped         bool              `json:"clamped"`
	CashAmount      int               `json:"cash_amount,omitempty"`
}

// Apply runs the guard for e, then the engine, persists the new balance and
// history, and commits. Rejections leave state untouched.
func (b *Bank) Apply(e ledger.Entry) (Receipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.load(); err != nil {
		return Receipt{}, err
	}
	return b.apply(e)
}

func (b *Bank) apply(e ledger.Entry) (Receipt, error) {
	if err := ledger.Check(b.balance, e, b.opts.Limits); err != nil {
		return Receipt{}, b.reject(e, err)
	}

	stamp := ledger.Stamp{ID: b.opts.NewID(), At: b.opts.Now()}
	res, err := ledger.Apply(b.balance, e, b.opts.Limits.Ceiling(), stamp)
	if err != nil {
		return Receipt{}, b.reject(e, err)
	}

	history := ledger.Prepend(b.history, res.Transaction)
	if err := b.repo.SaveData(model.LedgerData{Balance: res.Balance, Transactions: history}); err != nil {
		return Receipt{}, fmt.Errorf("save data: %w", err)
	}

	prev := b.balance
	b.balance = res.Balance
	b.history = history

	b.opts.Metrics.Transaction(string(e.Kind))
	b.opts.Metrics.State(b.balance, len(b.history))
	if res.Clamped {
		bound := "floor"
		if e.Kind == model.TransactionEarn {
			bound = "ceiling"
		}
		b.opts.Metrics.Clamp(bound)
	}
	b.logger().Info("transaction applied",
		"id", res.Transaction.ID,
		"type", res.Transaction.Type,
		"category", res.Transaction.Category,
		"minutes", e.Minutes,
		"impact", res.Transaction.BankImpactMinutes,
		"clamped", res.Clamped,
		"balance_before", prev,
		"balance", b.balance,
	)
	b.notify(Event{Entity: "transaction", Action: "created", ID: res.Transaction.ID, Balance: b.balance})

	return Receipt{
		Transaction:     res.Transaction,
		Balance:         res.Balance,
		RequestedImpact: res.RequestedImpact,
		Clamped:         res.Clamped,
	}, nil
}

func (b *Bank) reject(e ledger.Entry, err error) error {
	reason := "invalid"
	switch {
	case errors.Is(err, ledger.ErrInsufficientBalance):
		reason = "insufficient_balance"
	case errors.Is(err, ledger.ErrOverPlayLimit):
		reason = "over_play_limit"
	case errors.Is(err, ledger.ErrMinutesOutOfRange):
		reason = "out_of_range"
	}
	b.opts.Metrics.Rejection(reason)
	b.logger().Warn("transaction rejected", "type", e.Kind, "minutes", e.Minutes, "balance", b.balance, "error", err)
	return err
}

func (b *Bank) option(kind model.TransactionType, id string) (*model.ActivityOption, error) {
	opt, ok := catalog.Find(b.catalog, kind, id)
	if !ok {
		return nil, fmt.Errorf("%w: %s %q", ErrActivityNotFound, kind, id)
	}
	return &opt, nil
}

// Earn credits minutes of the earn activity id. Zero minutes uses the
// activity's default duration.
func (b *Bank) Earn(activityID string, minutes int, description string) (Receipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.load(); err != nil {
		return Receipt{}, err
	}

	opt, err := b.option(model.TransactionEarn, activityID)
	if err != nil {
		return Receipt{}, err
	}
	if minutes == 0 {
		minutes = opt.DefaultDurationMinutes
	}
	return b.apply(ledger.Entry{Kind: model.TransactionEarn, Activity: opt, Minutes: minutes, Description: description})
}

// Play spends minutes on leisure time.
func (b *Bank) Play(minutes int, description string) (Receipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.load(); err != nil {
		return Receipt{}, err
	}
	return b.apply(ledger.Entry{Kind: model.TransactionSpend, Minutes: minutes, Description: description})
}

// Penalize deducts minutes for an infraction. activityID may be empty; when
// set, the penalty option supplies the category, description and, for zero
// minutes, the deduction.
func (b *Bank) Penalize(activityID string, minutes int, description string) (Receipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.load(); err != nil {
		return Receipt{}, err
	}

	e := ledger.Entry{Kind: model.TransactionPenalty, Minutes: minutes, Description: description}
	if activityID != "" {
		opt, err := b.option(model.TransactionPenalty, activityID)
		if err != nil {
			return Receipt{}, err
		}
		if e.Minutes == 0 {
			e.Minutes = opt.DefaultDurationMinutes
		}
		e.Activity = opt
	}
	return b.apply(e)
}

// QuoteCash returns the pocket money minutes would buy.
func (b *Bank) QuoteCash(minutes int) int {
	return ledger.CashAmount(minutes, b.opts.Limits)
}

// RedeemCash spends minutes for pocket money. The balance check runs before
// the confirmation step, so an unaffordable request is rejected outright.
func (b *Bank) RedeemCash(minutes int, confirmed bool) (Receipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.load(); err != nil {
		return Receipt{}, err
	}

	e := ledger.Entry{Kind: model.TransactionSpend, Minutes: minutes, Cash: true}
	if err := ledger.Check(b.balance, e, b.opts.Limits); err != nil {
		return Receipt{}, b.reject(e, err)
	}

	amount := ledger.CashAmount(minutes, b.opts.Limits)
	if !confirmed {
		return Receipt{}, b.confirm(OpRedeemCash, fmt.Sprintf("确认使用 %d 分钟兑换 ¥%d 零花钱吗？", minutes, amount))
	}

	e.Description = ledger.CashDescription(amount)
	r, err := b.apply(e)
	if err != nil {
		return Receipt{}, err
	}
	r.CashAmount = amount
	return r, nil
}

func (b *Bank) confirm(op, prompt string) error {
	b.opts.Metrics.ConfirmationRequested(op)
	return &ConfirmationError{Operation: op, Prompt: prompt}
}

// AddOption appends opt to the kind-specific catalog.
func (b *Bank) AddOption(kind model.TransactionType, opt model.ActivityOption) (model.ActivityOption, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.load(); err != nil {
		return model.ActivityOption{}, err
	}

	next, added, err := catalog.Add(b.catalog, kind, opt)
	if err != nil {
		return model.ActivityOption{}, err
	}
	if err := b.repo.SaveCatalog(next); err != nil {
		return model.ActivityOption{}, fmt.Errorf("save catalog: %w", err)
	}
	b.catalog = next

	b.logger().Info("option added", "kind", kind, "id", added.ID, "name", added.Name)
	b.notify(Event{Entity: "option", Action: "created", ID: added.ID, Balance: b.balance})
	return added, nil
}

// DeleteOption removes id from the kind-specific catalog. Past
// transactions keep the fields they copied.
func (b *Bank) DeleteOption(kind model.TransactionType, id string, confirmed bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.load(); err != nil {
		return err
	}

	opt, err := b.option(kind, id)
	if err != nil {
		return err
	}
	if !confirmed {
		return b.confirm(OpDeleteOption, fmt.Sprintf("确定要删除「%s」这个标签吗？", opt.Name))
	}

	next, _, err := catalog.Delete(b.catalog, kind, id)
	if err != nil {
		return err
	}
	if err := b.repo.SaveCatalog(next); err != nil {
		return fmt.Errorf("save catalog: %w", err)
	}
	b.catalog = next

	b.logger().Info("option deleted", "kind", kind, "id", id)
	b.notify(Event{Entity: "option", Action: "deleted", ID: id, Balance: b.balance})
	return nil
}

func (b *Bank) SetAgeGroup(g model.AgeGroup) (model.Settings, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.load(); err != nil {
		return model.Settings{}, err
	}

	if !g.Valid() {
		return b.settings, fmt.Errorf("%w: %q", ErrInvalidAgeGroup, g)
	}
	next := b.settings
	next.AgeGroup = g
	if err := b.repo.SaveSettings(next); err != nil {
		return b.settings, fmt.Errorf("save settings: %w", err)
	}
	b.settings = next

	b.notify(Event{Entity: "settings", Action: "updated", Balance: b.balance})
	return next, nil
}

// Clear irreversibly resets the balance to zero and empties the history.
// The catalog and settings are kept.
func (b *Bank) Clear(confirmed bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.load(); err != nil {
		return err
	}

	if !confirmed {
		return b.confirm(OpClear, "确定要清空所有数据吗？此操作无法撤销。")
	}
	if err := b.repo.ClearData(); err != nil {
		return fmt.Errorf("clear data: %w", err)
	}
	removed := len(b.history)
	b.balance = 0
	b.history = []model.Transaction{}

	b.opts.Metrics.State(0, 0)
	b.logger().Warn("ledger cleared", "removed_transactions", removed)
	b.notify(Event{Entity: "ledger", Action: "cleared"})
	return nil
}

// Import replaces balance and history from a backup file, decrypting it
// first when it is sealed. The catalog is untouched. Parse and format
// errors leave state unchanged.
func (b *Bank) Import(data []byte, passphrase string, confirmed bool) (model.LedgerData, error) {
	plain, err := backup.Open(data, passphrase)
	if err != nil {
		return model.LedgerData{}, err
	}
	imported, err := backup.Parse(plain)
	if err != nil {
		b.logger().Warn("import rejected", "error", err)
		return model.LedgerData{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.load(); err != nil {
		return model.LedgerData{}, err
	}

	imported.Balance = ledger.Clamp(imported.Balance, b.opts.Limits.Ceiling())
	if !confirmed {
		return imported, b.confirm(OpImport, fmt.Sprintf("确认导入备份数据？当前余额将变为: %d分钟", imported.Balance))
	}
	if err := b.repo.SaveData(imported); err != nil {
		return model.LedgerData{}, fmt.Errorf("save data: %w", err)
	}
	b.balance = imported.Balance
	b.history = imported.Transactions

	b.opts.Metrics.State(b.balance, len(b.history))
	b.logger().Info("backup imported", "balance", b.balance, "transactions", len(b.history))
	b.notify(Event{Entity: "ledger", Action: "imported", Balance: b.balance})
	return imported, nil
}

func (b *Bank) Balance() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh()
	return b.balance
}

// History returns a copy of the newest-first transaction list.
func (b *Bank) History() []model.Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh()
	return append([]model.Transaction{}, b.history...)
}

func (b *Bank) Catalog() model.Catalog {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh()
	return b.catalog.Clone()
}

func (b *Bank) Settings() model.Settings {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh()
	return b.settings
}

func (b *Bank) Snapshot() model.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh()
	return model.Snapshot{
		Balance:      b.balance,
		MaxMinutes:   b.opts.Limits.Ceiling(),
		Transactions: append([]model.Transaction{}, b.history...),
		Catalog:      b.catalog.Clone(),
		Settings:     b.settings,
	}
}

// Backup returns the full-state export document.
func (b *Bank) Backup() model.Backup {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh()
	c := b.catalog.Clone()
	return model.Backup{
		Balance:      b.balance,
		Transactions: append([]model.Transaction{}, b.history...),
		Earn:         c.Earn,
		Penalty:      c.Penalty,
	}
}
