package backup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/tomwugdgz/qqtime/internal/model"
)

const (
	scheduledPrefix = "timebank_backup_"
	scheduledLayout = "2006-01-02_150405"
)

// Config controls scheduled backups into a local directory.
type Config struct {
	Dir      string
	Interval time.Duration
	// Keep is how many scheduled files survive cleanup; zero keeps all.
	Keep int
	// Passphrase encrypts scheduled files when set.
	Passphrase string
}

// Source supplies the state to back up.
type Source interface {
	Backup() model.Backup
	Now() time.Time
}

type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDisabled State = "disabled"
	StateError    State = "error"
)

type Status struct {
	State      State      `json:"state"`
	LastBackup *time.Time `json:"last_backup,omitempty"`
	LastFile   string     `json:"last_file,omitempty"`
	Error      string     `json:"error,omitempty"`
	InProgress bool       `json:"in_progress"`
}

// StatusCallback is called whenever the backup state changes.
type StatusCallback func(Status)

var (
	ErrNotConfigured = errors.New("backup directory not configured")
	ErrBackupRunning = errors.New("a backup is already running")
)

// Manager writes periodic backups and prunes old ones.
type Manager struct {
	mu       sync.RWMutex
	cfg      Config
	src      Source
	status   Status
	callback StatusCallback
	logger   *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func NewManager(cfg Config, src Source, callback StatusCallback, logger *slog.Logger) *Manager {
	m := &Manager{
		cfg:      cfg,
		src:      src,
		callback: callback,
		logger:   logger,
		status:   Status{State: StateDisabled},
	}
	if cfg.Dir != "" {
		m.status.State = StateIdle
	}
	return m
}

// Start runs the schedule until ctx is cancelled or Stop is called. It is a
// no-op without a directory or a positive interval, or while a schedule is
// already running.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.status.State == StateDisabled || m.cfg.Interval <= 0 || m.cancel != nil {
		m.mu.Unlock()
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	interval := m.cfg.Interval
	m.mu.Unlock()

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := m.RunNow(); err != nil {
					m.logger.Error("scheduled backup failed", "error", err)
				}
			}
		}
	}()
}

// Stop cancels the schedule and waits for it to exit. Safe to call twice;
// Start may be called again afterwards.
func (m *Manager) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
	if m.callback != nil {
		m.callback(s)
	}
}

// RunNow writes one backup file and prunes old ones. It returns the path
// written, or ErrBackupRunning while another run is in progress.
func (m *Manager) RunNow() (string, error) {
	if m.cfg.Dir == "" {
		return "", ErrNotConfigured
	}

	m.mu.Lock()
	if m.status.InProgress {
		m.mu.Unlock()
		return "", ErrBackupRunning
	}
	prev := m.status
	m.status = Status{State: StateRunning, InProgress: true, LastBackup: prev.LastBackup, LastFile: prev.LastFile}
	running := m.status
	m.mu.Unlock()
	if m.callback != nil {
		m.callback(running)
	}

	path, at, err := m.write()
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error(), LastBackup: prev.LastBackup, LastFile: prev.LastFile})
		return "", err
	}

	if err := m.Cleanup(); err != nil {
		m.logger.Warn("backup cleanup failed", "error", err)
	}

	m.logger.Info("backup written", "path", path)
	m.setStatus(Status{State: StateIdle, LastBackup: &at, LastFile: filepath.Base(path)})
	return path, nil
}

func (m *Manager) write() (string, time.Time, error) {
	at := m.src.Now()
	data, err := Marshal(m.src.Backup())
	if err != nil {
		return "", at, err
	}
	name := scheduledPrefix + at.Format(scheduledLayout) + ".json"
	if m.cfg.Passphrase != "" {
		if data, err = Encrypt(data, m.cfg.Passphrase); err != nil {
			return "", at, err
		}
		name += ".enc"
	}

	if err := os.MkdirAll(m.cfg.Dir, 0o755); err != nil {
		return "", at, fmt.Errorf("create backup dir: %w", err)
	}
	path := filepath.Join(m.cfg.Dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return "", at, fmt.Errorf("write backup: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", at, fmt.Errorf("rename backup: %w", err)
	}
	return path, at, nil
}

// Cleanup removes all but the newest Keep scheduled backups.
func (m *Manager) Cleanup() error {
	if m.cfg.Keep <= 0 {
		return nil
	}
	files, err := m.List()
	if err != nil {
		return err
	}
	if len(files) <= m.cfg.Keep {
		return nil
	}
	var errs []error
	for _, name := range files[:len(files)-m.cfg.Keep] {
		if err := os.Remove(filepath.Join(m.cfg.Dir, name)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// List returns scheduled backup file names, oldest first.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.cfg.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || !strings.HasPrefix(n, scheduledPrefix) || strings.HasSuffix(n, ".tmp") {
			continue
		}
		names = append(names, n)
	}
	slices.Sort(names)
	return names, nil
}
