// Package osproc provides the platform-specific process primitives:
// detached spawn, liveness probe, termination, and log file access.
// One Adapter implementation exists per OS family and is selected once
// at startup by New.
package osproc

import (
	"errors"
	"os"
	"os/exec"
)

// ErrAlreadyExited reports that a terminate request found no live process.
// The manager treats this as success (the process is gone either way).
var ErrAlreadyExited = errors.New("process already exited")

// Child is a handle to a process spawned by this invocation. Wait blocks
// until the child exits and returns the same error exec.Cmd.Wait would.
type Child interface {
	PID() int
	Wait() error
}

// Adapter is the OS capability set the manager depends on.
type Adapter interface {
	// SpawnDetached launches command via the platform shell such that it
	// survives the caller's exit. Stdout and stderr are both redirected to
	// logFile (append mode); a nil logFile discards output.
	SpawnDetached(command, workDir string, environ []string, logFile *os.File) (Child, error)

	// IsAlive probes whether pid refers to a live process. Any probe
	// failure reports false, never an indeterminate state.
	IsAlive(pid int) bool

	// Terminate requests termination of pid, gracefully unless force.
	// Returns ErrAlreadyExited when the process was already gone.
	Terminate(pid int, force bool) error
}

// New returns the adapter for the current platform.
func New() Adapter { return newAdapter() }

type execChild struct {
	cmd *exec.Cmd
}

func (c execChild) PID() int    { return c.cmd.Process.Pid }
func (c execChild) Wait() error { return c.cmd.Wait() }

// wireStdio attaches logFile (or the null device) to both output streams
// so stdout and stderr interleave into one log.
func wireStdio(cmd *exec.Cmd, logFile *os.File) {
	if logFile == nil {
		logFile, _ = os.OpenFile(os.DevNull, os.O_RDWR, 0)
	}
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.Stdin = nil
}
