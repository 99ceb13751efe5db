package backup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomwugdgz/qqtime/internal/model"
)

type fakeSource struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeSource) Backup() model.Backup {
	return model.Backup{Balance: 42, Transactions: []model.Transaction{{ID: "t1", Type: model.TransactionEarn, BankImpactMinutes: 42}}}
}

func (f *fakeSource) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(time.Second)
	return f.now
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestManagerStateLifecycle(t *testing.T) {
	if got := NewManager(Config{}, &fakeSource{}, nil, discardLogger()).Status().State; got != StateDisabled {
		t.Errorf("state = %q, want %q", got, StateDisabled)
	}
	if got := NewManager(Config{Dir: t.TempDir()}, &fakeSource{}, nil, discardLogger()).Status().State; got != StateIdle {
		t.Errorf("state = %q, want %q", got, StateIdle)
	}
}

func TestRunNowWritesReadableBackup(t *testing.T) {
	dir := t.TempDir()
	var mu sync.Mutex
	var received []Status
	m := NewManager(Config{Dir: dir}, &fakeSource{now: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}, func(s Status) {
		mu.Lock()
		received = append(received, s)
		mu.Unlock()
	}, discardLogger())

	path, err := m.RunNow()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if filepath.Base(path) != "timebank_backup_2024-03-10_090001.json" {
		t.Errorf("file = %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	d, err := Parse(data)
	if err != nil {
		t.Fatalf("parse written backup: %v", err)
	}
	if d.Balance != 42 || len(d.Transactions) != 1 {
		t.Errorf("backup = %+v", d)
	}

	st := m.Status()
	if st.State != StateIdle || st.LastBackup == nil || st.LastFile == "" {
		t.Errorf("status = %+v", st)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(received) != 2 || received[0].State != StateRunning || !received[0].InProgress {
		t.Errorf("callbacks = %+v", received)
	}
}

func TestRunNowEncrypts(t *testing.T) {
	m := NewManager(Config{Dir: t.TempDir(), Passphrase: "pw"}, &fakeSource{}, nil, discardLogger())
	path, err := m.RunNow()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(path, ".json.enc") {
		t.Errorf("path = %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	plain, err := Open(data, "pw")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := Parse(plain); err != nil {
		t.Errorf("parse: %v", err)
	}
}

func TestCleanupKeepsNewest(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(Config{Dir: dir, Keep: 2}, &fakeSource{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}, nil, discardLogger())

	var paths []string
	for range 4 {
		p, err := m.RunNow()
		if err != nil {
			t.Fatal(err)
		}
		paths = append(paths, filepath.Base(p))
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	files, err := m.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 || files[0] != paths[2] || files[1] != paths[3] {
		t.Errorf("remaining = %v, want %v", files, paths[2:])
	}
	if _, err := os.Stat(filepath.Join(dir, "notes.txt")); err != nil {
		t.Error("cleanup removed an unrelated file")
	}
}

func TestRunNowNotConfigured(t *testing.T) {
	m := NewManager(Config{}, &fakeSource{}, nil, discardLogger())
	if _, err := m.RunNow(); err != ErrNotConfigured {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestManagerSchedule(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(Config{Dir: dir, Interval: 10 * time.Millisecond}, &fakeSource{}, nil, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if files, _ := m.List(); len(files) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	m.Stop()
	// Double stop should not panic
	m.Stop()

	if files, _ := m.List(); len(files) == 0 {
		t.Error("scheduled backup never ran")
	}
}

func TestStartTwiceKeepsOneSchedule(t *testing.T) {
	m := NewManager(Config{Dir: t.TempDir(), Interval: time.Hour}, &fakeSource{}, nil, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m.Start(ctx)
	first := m.done
	m.Start(ctx)
	if m.done != first {
		t.Error("second Start replaced the running schedule")
	}

	m.Stop()
	select {
	case <-first:
	default:
		t.Error("schedule goroutine still running after Stop")
	}
}

// blockingSource holds Backup until release is closed.
type blockingSource struct {
	fakeSource
	entered chan struct{}
	release chan struct{}
}

func (b *blockingSource) Backup() model.Backup {
	close(b.entered)
	<-b.release
	return b.fakeSource.Backup()
}

func TestRunNowRejectsConcurrentRun(t *testing.T) {
	src := &blockingSource{entered: make(chan struct{}), release: make(chan struct{})}
	m := NewManager(Config{Dir: t.TempDir()}, src, nil, discardLogger())

	errc := make(chan error, 1)
	go func() {
		_, err := m.RunNow()
		errc <- err
	}()
	<-src.entered

	if _, err := m.RunNow(); !errors.Is(err, ErrBackupRunning) {
		t.Errorf("concurrent run err = %v, want ErrBackupRunning", err)
	}
	if !m.Status().InProgress {
		t.Error("status not marked in progress")
	}

	close(src.release)
	if err := <-errc; err != nil {
		t.Fatalf("first run: %v", err)
	}
	if st := m.Status(); st.InProgress || st.State != StateIdle {
		t.Errorf("status after run = %+v", st)
	}
}
