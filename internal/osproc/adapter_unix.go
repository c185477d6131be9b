//go:build !windows

package osproc

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

type unixAdapter struct{}

func newAdapter() Adapter { return unixAdapter{} }

// SpawnDetached runs command through /bin/sh -c in a new session so the
// child is detached from the controlling terminal and is not signaled
// when the launcher exits.
func (unixAdapter) SpawnDetached(command, workDir string, environ []string, logFile *os.File) (Child, error) {
	// #nosec G204 -- executing the user-supplied command is the point
	cmd := exec.Command("/bin/sh", "-c", command)
	cmd.Dir = workDir
	cmd.Env = environ
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	wireStdio(cmd, logFile)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return execChild{cmd: cmd}, nil
}

// IsAlive uses the zero-signal existence probe. EPERM and every other
// failure count as not alive (fail-closed toward stopped).
func (unixAdapter) IsAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	return syscall.Kill(pid, 0) == nil
}

func (unixAdapter) Terminate(pid int, force bool) error {
	sig := syscall.SIGTERM
	if force {
		sig = syscall.SIGKILL
	}
	err := syscall.Kill(pid, sig)
	if err == nil {
		return nil
	}
	if errors.Is(err, syscall.ESRCH) {
		return ErrAlreadyExited
	}
	return fmt.Errorf("kill pid %d: %w", pid, err)
}

// ExitInfo extracts the exit code and, when the child died from a signal,
// the signal name from a Wait error.
func ExitInfo(exitErr *exec.ExitError) (code int, signal string) {
	code = exitErr.ExitCode()
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		signal = ws.Signal().String()
	}
	return code, signal
}
