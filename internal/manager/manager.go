// Package manager owns the per-record state machine for managed
// processes. It mediates between the persisted records and the OS
// adapter: spawning detached children, correcting stale running states
// against OS reality, terminating across platforms, and exposing logs.
package manager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/droverhq/drover/internal/env"
	"github.com/droverhq/drover/internal/osproc"
	"github.com/droverhq/drover/internal/process"
	"github.com/droverhq/drover/internal/store"
)

// Manager is the process lifecycle controller. All operations within one
// Manager are safe for concurrent use; coordination across separate
// invocations is the store's job.
type Manager struct {
	store   store.Store
	adapter osproc.Adapter
	env     *env.Env
	logDir  string

	mu        sync.Mutex
	observers map[string]chan struct{} // closed when the exit observer for an id finishes
}

func New(st store.Store, adapter osproc.Adapter, baseEnv *env.Env, logDir string) *Manager {
	return &Manager{
		store:     st,
		adapter:   adapter,
		env:       baseEnv,
		logDir:    logDir,
		observers: make(map[string]chan struct{}),
	}
}

// Start spawns command detached from the terminal and persists a running
// record for it. The returned record carries a fresh id and the live pid.
// A name already attached to a running record is rejected.
func (m *Manager) Start(command string, opts process.StartOptions) (process.Record, error) {
	now := time.Now()
	name := opts.Name
	if name == "" {
		name = process.DefaultName(now)
	}
	recs, err := m.store.Load()
	if err != nil {
		return process.Record{}, err
	}
	for i := range recs {
		if recs[i].Name == name && recs[i].Status == process.StatusRunning {
			return process.Record{}, fmt.Errorf("start %q: a running process already has this name", name)
		}
	}

	workDir := opts.WorkDir
	if workDir == "" {
		if workDir, err = os.Getwd(); err != nil {
			return process.Record{}, fmt.Errorf("resolve working directory: %w", err)
		}
	}

	id := uuid.NewString()
	logPath, logFile := m.openLog(id)

	child, err := m.adapter.SpawnDetached(command, workDir, m.env.Merge(opts.Env), logFile)
	if logFile != nil {
		_ = logFile.Close() // the child holds its own descriptor now
	}
	if err != nil {
		return process.Record{}, fmt.Errorf("start %q: %w: %v", name, process.ErrSpawnFailure, err)
	}

	rec := process.Record{
		ID:          id,
		Name:        name,
		Command:     command,
		PID:         child.PID(),
		Status:      process.StatusRunning,
		StartTime:   now,
		WorkDir:     workDir,
		Env:         opts.Env,
		LogFile:     logPath,
		Autostart:   opts.Autostart,
		LastUpdated: now,
	}
	if err := store.Save(m.store, rec); err != nil {
		return process.Record{}, err
	}
	m.observe(rec.ID, child)
	slog.Info("started process", "name", name, "id", id, "pid", rec.PID)
	return rec, nil
}

// openLog creates the per-process append-only log file. Setup failure is
// not fatal: the record simply carries no log file and output is dropped.
func (m *Manager) openLog(id string) (string, *os.File) {
	if err := os.MkdirAll(m.logDir, 0o750); err != nil {
		slog.Warn("log directory unavailable, process output will be dropped", "dir", m.logDir, "error", err)
		return "", nil
	}
	path := filepath.Join(m.logDir, id+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640) // #nosec G304
	if err != nil {
		slog.Warn("log file unavailable, process output will be dropped", "path", path, "error", err)
		return "", nil
	}
	return path, f
}

// observe waits for the child to exit and records the outcome. An exit
// observed here attaches the real exit code or signal; a child the OS
// failed to run at all flips the record to the error state. Records no
// longer running (an explicit stop won the race) are left untouched.
func (m *Manager) observe(id string, child osproc.Child) {
	done := make(chan struct{})
	m.mu.Lock()
	m.observers[id] = done
	m.mu.Unlock()

	go func() {
		defer close(done)
		waitErr := child.Wait()
		err := m.store.Mutate(func(recs []process.Record) ([]process.Record, error) {
			i, ok := store.Find(recs, id)
			if !ok || recs[i].Status != process.StatusRunning {
				return recs, nil
			}
			now := time.Now()
			rec := &recs[i]
			rec.LastUpdated = now
			rec.StoppedAt = now
			var exitErr *exec.ExitError
			switch {
			case waitErr == nil:
				code := 0
				rec.Status = process.StatusStopped
				rec.ExitCode = &code
			case errors.As(waitErr, &exitErr):
				code, sig := osproc.ExitInfo(exitErr)
				rec.Status = process.StatusStopped
				rec.ExitCode = &code
				rec.Signal = sig
			default:
				rec.Status = process.StatusError
				rec.Error = waitErr.Error()
				rec.PID = 0
			}
			return recs, nil
		})
		if err != nil {
			slog.Warn("failed to record process exit", "id", id, "error", err)
		}
	}()
}

// AwaitExit waits up to timeout for the exit observer of id to finish.
// It reports false when no observer exists or the child is still alive.
func (m *Manager) AwaitExit(id string, timeout time.Duration) bool {
	m.mu.Lock()
	done, ok := m.observers[id]
	m.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Stop terminates the process addressed by nameOrID, gracefully unless
// force. Stopping a record that is not running fails with NotRunning and
// never touches the OS. A process already gone at the OS level still
// resolves successfully, attributed to the system rather than the user.
func (m *Manager) Stop(nameOrID string, force bool) error {
	return m.store.Mutate(func(recs []process.Record) ([]process.Record, error) {
		i, ok := store.Find(recs, nameOrID)
		if !ok {
			return nil, fmt.Errorf("stop %q: %w", nameOrID, process.ErrNotFound)
		}
		rec := &recs[i]
		if rec.Status != process.StatusRunning {
			return nil, fmt.Errorf("stop %q: %w", nameOrID, process.ErrNotRunning)
		}

		stoppedBy := process.StoppedBySystem
		if rec.PID > 0 {
			switch err := m.adapter.Terminate(rec.PID, force); {
			case err == nil:
				stoppedBy = process.StoppedByUser
			case errors.Is(err, osproc.ErrAlreadyExited):
				// gone before we got to it; success either way
			default:
				return nil, fmt.Errorf("stop %q: %w: %v", nameOrID, process.ErrTerminationFailure, err)
			}
		}

		now := time.Now()
		rec.Status = process.StatusStopped
		rec.StoppedBy = stoppedBy
		rec.StoppedAt = now
		rec.LastUpdated = now
		slog.Info("stopped process", "name", rec.Name, "id", rec.ID, "stopped_by", stoppedBy, "force", force)
		return recs, nil
	})
}

// Get returns a single record, correcting a stale running status first:
// if the OS no longer knows the pid, the record is flipped to stopped and
// persisted before it is returned. This lazy reconciliation on reads is
// the only self-healing path; there is no background poller.
func (m *Manager) Get(nameOrID string) (process.Record, error) {
	var out process.Record
	err := m.store.Mutate(func(recs []process.Record) ([]process.Record, error) {
		i, ok := store.Find(recs, nameOrID)
		if !ok {
			return nil, fmt.Errorf("get %q: %w", nameOrID, process.ErrNotFound)
		}
		rec := &recs[i]
		// A record without a pid has no real OS process attached and is
		// never probed.
		if rec.Status == process.StatusRunning && rec.PID > 0 && !m.adapter.IsAlive(rec.PID) {
			now := time.Now()
			rec.Status = process.StatusStopped
			rec.StoppedAt = now
			rec.LastUpdated = now
			slog.Debug("reconciled stale running record", "name", rec.Name, "id", rec.ID)
		}
		out = *rec
		return recs, nil
	})
	return out, err
}

// List returns all records, or only the running ones. No liveness probe
// happens here: list is a cheap, possibly stale view, and only the
// single-record Get reconciles.
func (m *Manager) List(includeAll bool) ([]process.Record, error) {
	recs, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	if includeAll {
		return recs, nil
	}
	running := make([]process.Record, 0, len(recs))
	for _, r := range recs {
		if r.Status == process.StatusRunning {
			running = append(running, r)
		}
	}
	return running, nil
}

// Logs returns the last tail lines of the record's log file.
func (m *Manager) Logs(nameOrID string, tail int) (string, error) {
	path, err := m.logPath(nameOrID)
	if err != nil {
		return "", err
	}
	return osproc.Tail(path, tail)
}

// FollowLogs replays the last tail lines into w, then streams appended
// bytes until ctx is cancelled.
func (m *Manager) FollowLogs(ctx context.Context, nameOrID string, tail int, w io.Writer) error {
	path, err := m.logPath(nameOrID)
	if err != nil {
		return err
	}
	return osproc.Follow(ctx, path, tail, w)
}

func (m *Manager) logPath(nameOrID string) (string, error) {
	rec, err := store.Get(m.store, nameOrID)
	if err != nil {
		return "", err
	}
	if rec.LogFile == "" {
		return "", fmt.Errorf("logs %q: no log file recorded: %w", nameOrID, process.ErrNotFound)
	}
	return rec.LogFile, nil
}

// Restart replaces the record addressed by nameOrID with a freshly
// started one: stop if still running, start a new record preserving
// command, name, working directory, environment and autostart, then
// delete the old record. The new record always carries a new id.
func (m *Manager) Restart(nameOrID string) (process.Record, error) {
	old, err := m.Get(nameOrID)
	if err != nil {
		return process.Record{}, err
	}
	if old.Status == process.StatusRunning {
		if err := m.Stop(old.ID, false); err != nil {
			return process.Record{}, err
		}
	}
	fresh, err := m.Start(old.Command, process.StartOptions{
		Name:      old.Name,
		WorkDir:   old.WorkDir,
		Env:       old.Env,
		Autostart: old.Autostart,
	})
	if err != nil {
		return process.Record{}, fmt.Errorf("restart %q: %w", nameOrID, err)
	}
	if err := store.Delete(m.store, old.ID); err != nil {
		return process.Record{}, err
	}
	return fresh, nil
}

// CleanupResult reports what Cleanup removed.
type CleanupResult struct {
	Records  int `json:"records"`
	LogFiles int `json:"log_files"`
}

// Cleanup removes every record not currently running and best-effort
// deletes its log file. A log file that fails to delete is logged and
// skipped; the batch never aborts part-way.
func (m *Manager) Cleanup() (CleanupResult, error) {
	var res CleanupResult
	err := m.store.Mutate(func(recs []process.Record) ([]process.Record, error) {
		kept := recs[:0]
		for _, r := range recs {
			if r.Status == process.StatusRunning {
				kept = append(kept, r)
				continue
			}
			res.Records++
			if r.LogFile == "" {
				continue
			}
			switch err := os.Remove(r.LogFile); {
			case err == nil:
				res.LogFiles++
			case os.IsNotExist(err):
				// already gone
			default:
				slog.Warn("failed to remove log file", "path", r.LogFile, "error", err)
			}
		}
		return kept, nil
	})
	return res, err
}
