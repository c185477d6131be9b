//go:build windows

package osproc

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
)

// Windows creation flags
const (
	createNewProcessGroup = 0x00000200
	detachedProcess       = 0x00000008
)

// taskkill exits with 128 when the target pid does not exist. Verified
// against the tool shipped with current Windows builds; the code is not
// documented as stable, so the not-found message text is matched as well.
const taskkillNotFound = 128

type windowsAdapter struct{}

func newAdapter() Adapter { return windowsAdapter{} }

// SpawnDetached runs command through cmd /c without a console window so
// the child survives the launcher and never pops an interactive shell.
func (windowsAdapter) SpawnDetached(command, workDir string, environ []string, logFile *os.File) (Child, error) {
	// #nosec G204 -- executing the user-supplied command is the point
	cmd := exec.Command("cmd", "/c", command)
	cmd.Dir = workDir
	cmd.Env = environ
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: createNewProcessGroup | detachedProcess,
		HideWindow:    true,
	}
	wireStdio(cmd, logFile)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return execChild{cmd: cmd}, nil
}

// IsAlive queries the task list filtered by pid and checks whether the
// pid appears in the output. Any query failure reports not alive.
func (windowsAdapter) IsAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	// #nosec G204 -- fixed binary, pid is an integer
	out, err := exec.Command("tasklist", "/FI", fmt.Sprintf("PID eq %d", pid), "/NH", "/FO", "CSV").Output()
	if err != nil {
		return false
	}
	return strings.Contains(string(out), `"`+strconv.Itoa(pid)+`"`)
}

// Terminate kills the process tree rooted at pid via taskkill, adding /F
// for force mode. The not-found outcome maps to ErrAlreadyExited.
func (windowsAdapter) Terminate(pid int, force bool) error {
	args := []string{"/PID", strconv.Itoa(pid), "/T"}
	if force {
		args = append(args, "/F")
	}
	// #nosec G204 -- fixed binary, pid is an integer
	out, err := exec.Command("taskkill", args...).CombinedOutput()
	if err == nil {
		return nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		if exitErr.ExitCode() == taskkillNotFound || strings.Contains(strings.ToLower(string(out)), "not found") {
			return ErrAlreadyExited
		}
	}
	return fmt.Errorf("taskkill pid %d: %w: %s", pid, err, strings.TrimSpace(string(out)))
}

// ExitInfo extracts the exit code from a Wait error. Windows has no
// signal-death notion, so signal is always empty.
func ExitInfo(exitErr *exec.ExitError) (code int, signal string) {
	return exitErr.ExitCode(), ""
}
