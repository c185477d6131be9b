//go:build !windows

package osproc

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSpawnDetachedWritesLog(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "p.log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	a := New()
	child, err := a.SpawnDetached("echo hello", dir, os.Environ(), f)
	_ = f.Close()
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if child.PID() <= 0 {
		t.Fatalf("bad pid %d", child.PID())
	}
	if err := child.Wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Fatalf("log missing output: %q", data)
	}
}

func TestSpawnDetachedRespectsWorkDirAndEnv(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "p.log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	a := New()
	child, err := a.SpawnDetached("echo $MARKER $PWD", dir, []string{"MARKER=mk-42", "PWD=" + dir}, f)
	_ = f.Close()
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if err := child.Wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}
	data, _ := os.ReadFile(logPath)
	if !strings.Contains(string(data), "mk-42") {
		t.Fatalf("env not applied: %q", data)
	}
}

func TestIsAliveAndTerminate(t *testing.T) {
	a := New()
	child, err := a.SpawnDetached("sleep 30", t.TempDir(), os.Environ(), nil)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	pid := child.PID()
	if !a.IsAlive(pid) {
		t.Fatalf("expected pid %d alive", pid)
	}
	if err := a.Terminate(pid, false); err != nil {
		t.Fatalf("terminate: %v", err)
	}
	_ = child.Wait()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) && a.IsAlive(pid) {
		time.Sleep(20 * time.Millisecond)
	}
	if a.IsAlive(pid) {
		t.Fatalf("pid %d still alive after terminate", pid)
	}
}

func TestTerminateMissingPID(t *testing.T) {
	a := New()
	// spawn and fully reap a process so its pid is free
	child, err := a.SpawnDetached("true", t.TempDir(), os.Environ(), nil)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	_ = child.Wait()
	err = a.Terminate(child.PID(), false)
	if err != nil && !errors.Is(err, ErrAlreadyExited) {
		t.Fatalf("expected nil or ErrAlreadyExited, got %v", err)
	}
}

func TestIsAliveInvalidPID(t *testing.T) {
	a := New()
	if a.IsAlive(0) || a.IsAlive(-5) {
		t.Fatal("invalid pids must not be alive")
	}
}
