package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomwugdgz/qqtime/internal/backup"
	"github.com/tomwugdgz/qqtime/internal/bank"
	"github.com/tomwugdgz/qqtime/internal/database"
	"github.com/tomwugdgz/qqtime/internal/handler"
	"github.com/tomwugdgz/qqtime/internal/metrics"
	"github.com/tomwugdgz/qqtime/internal/middleware"
	"github.com/tomwugdgz/qqtime/internal/model"
	"github.com/tomwugdgz/qqtime/internal/store"
	ws "github.com/tomwugdgz/qqtime/internal/websocket"
)

type Server struct {
	db        *sql.DB
	bank      *bank.Bank
	hub       *ws.Hub
	ledgerH   *handler.LedgerHandler
	catalogH  *handler.CatalogHandler
	settingsH *handler.SettingsHandler
	reportH   *handler.ReportHandler
	exportH   *handler.ExportHandler
	backupH   *handler.BackupHandler
	backupMgr *backup.Manager
	logger    *slog.Logger
}

type Config struct {
	Bank bank.Options
	// AgeGroup is reported until settings are first saved.
	AgeGroup model.AgeGroup
	Backup   backup.Config
}

// New opens the bank over db and wires the hub as its notifier. Zero
// fields in cfg.Bank take the bank defaults; Notifier, Metrics and Logger
// are set here.
func New(db *sql.DB, cfg Config, logger *slog.Logger) (*Server, error) {
	hub := ws.NewHub(logger.With("component", "websocket"))

	opts := cfg.Bank
	opts.Notifier = hub
	opts.Metrics = metrics.Prometheus()
	opts.Logger = logger.With("component", "bank")

	repo := store.NewBankStore(db).WithDefaultAgeGroup(cfg.AgeGroup)
	b, err := bank.New(repo, opts)
	if err != nil {
		return nil, fmt.Errorf("open bank: %w", err)
	}

	backupMgr := backup.NewManager(cfg.Backup, b, func(st backup.Status) {
		hub.Broadcast(ws.NewMessage("backup", string(st.State), st.LastFile, b.Balance()))
	}, logger.With("component", "backup"))

	return &Server{
		db:        db,
		bank:      b,
		hub:       hub,
		ledgerH:   handler.NewLedgerHandler(b),
		catalogH:  handler.NewCatalogHandler(b),
		settingsH: handler.NewSettingsHandler(b),
		reportH:   handler.NewReportHandler(b),
		exportH:   handler.NewExportHandler(b),
		backupH:   handler.NewBackupHandler(backupMgr),
		backupMgr: backupMgr,
		logger:    logger,
	}, nil
}

// Bank returns the controller the server mutates.
func (s *Server) Bank() *bank.Bank {
	return s.bank
}

func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// BackupManager returns the scheduled backup manager for Start/Stop.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupMgr
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.hello))

	// Ledger
	mux.HandleFunc("GET /api/balance", s.ledgerH.Balance)
	mux.HandleFunc("GET /api/transactions", s.ledgerH.Transactions)
	mux.HandleFunc("DELETE /api/transactions", s.ledgerH.Clear)
	mux.HandleFunc("POST /api/earn", s.ledgerH.Earn)
	mux.HandleFunc("POST /api/play", s.ledgerH.Play)
	mux.HandleFunc("POST /api/cash", s.ledgerH.Cash)
	mux.HandleFunc("POST /api/penalty", s.ledgerH.Penalty)

	// Catalog
	mux.HandleFunc("GET /api/options", s.catalogH.List)
	mux.HandleFunc("POST /api/options/{kind}", s.catalogH.Create)
	mux.HandleFunc("DELETE /api/options/{kind}/{id}", s.catalogH.Delete)

	mux.HandleFunc("GET /api/settings", s.settingsH.Get)
	mux.HandleFunc("PUT /api/settings", s.settingsH.Update)

	// Reports
	mux.HandleFunc("GET /api/reports/trend", s.reportH.Trend)
	mux.HandleFunc("GET /api/reports/calendar", s.reportH.Calendar)
	mux.HandleFunc("GET /api/reports/day", s.reportH.Day)

	// Files
	mux.HandleFunc("GET /api/export/csv", s.exportH.CSV)
	mux.HandleFunc("GET /api/export/backup", s.exportH.Backup)
	mux.HandleFunc("POST /api/import", s.exportH.Import)

	// Scheduled backups
	mux.HandleFunc("GET /api/backups", s.backupH.List)
	mux.HandleFunc("POST /api/backups/run", s.backupH.RunNow)

	return middleware.RequestLogger(s.logger.With("component", "http"))(middleware.Instrument(mux))
}

func (s *Server) hello() ws.Message {
	return ws.NewMessage("balance", "snapshot", "", s.bank.Balance())
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	schema, err := database.Version(r.Context(), s.db)
	if err != nil {
		s.logger.Error("health check", "error", err)
		status, code = "unavailable", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"status":  status,
		"schema":  schema,
		"clients": s.hub.ClientCount(),
		"backup":  s.backupMgr.Status().State,
	})
}
