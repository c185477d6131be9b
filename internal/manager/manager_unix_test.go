//go:build !windows

package manager

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/droverhq/drover/internal/env"
	"github.com/droverhq/drover/internal/osproc"
	"github.com/droverhq/drover/internal/process"
	"github.com/droverhq/drover/internal/store"
)

func newRealManager(t *testing.T) *Manager {
	t.Helper()
	dir := t.TempDir()
	st := store.NewFileStore(filepath.Join(dir, "processes.json"))
	return New(st, osproc.New(), env.FromOS(), filepath.Join(dir, "logs"))
}

func TestRealProcessExitCode(t *testing.T) {
	mgr := newRealManager(t)
	rec, err := mgr.Start("exit 3", process.StartOptions{Name: "failing"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !mgr.AwaitExit(rec.ID, 5*time.Second) {
		t.Fatal("process did not exit")
	}
	got, err := mgr.Get(rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != process.StatusStopped || got.ExitCode == nil || *got.ExitCode != 3 {
		t.Fatalf("expected stopped with exit code 3, got %+v", got)
	}
}

func TestRealProcessOutputInLog(t *testing.T) {
	mgr := newRealManager(t)
	rec, err := mgr.Start("echo out; echo err 1>&2", process.StartOptions{Name: "noisy"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !mgr.AwaitExit(rec.ID, 5*time.Second) {
		t.Fatal("process did not exit")
	}
	out, err := mgr.Logs(rec.ID, 10)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	// stdout and stderr interleave into one stream
	if !strings.Contains(out, "out") || !strings.Contains(out, "err") {
		t.Fatalf("combined log missing output: %q", out)
	}
}

func TestRealProcessStop(t *testing.T) {
	mgr := newRealManager(t)
	rec, err := mgr.Start("sleep 30", process.StartOptions{Name: "sleeper"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := mgr.Stop(rec.ID, false); err != nil {
		t.Fatalf("stop: %v", err)
	}
	got, _ := mgr.Get(rec.ID)
	if got.Status != process.StatusStopped || got.StoppedBy != process.StoppedByUser {
		t.Fatalf("expected user stop, got %+v", got)
	}
	// the OS should agree shortly
	adapter := osproc.New()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) && adapter.IsAlive(rec.PID) {
		time.Sleep(20 * time.Millisecond)
	}
	if adapter.IsAlive(rec.PID) {
		t.Fatalf("pid %d still alive after stop", rec.PID)
	}
}

func TestRealReconciliation(t *testing.T) {
	mgr := newRealManager(t)
	rec, err := mgr.Start("sleep 0.05", process.StartOptions{Name: "quick"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !mgr.AwaitExit(rec.ID, 5*time.Second) {
		t.Fatal("process did not exit")
	}
	got, err := mgr.Get(rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != process.StatusStopped {
		t.Fatalf("expected stopped, got %+v", got)
	}
}
