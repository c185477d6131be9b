//go:build windows

package autostart

import (
	"encoding/csv"
	"fmt"
	"os/exec"
	"strings"

	"github.com/droverhq/drover/internal/process"
)

const taskFolder = `\drover\`

func newRegistrar() (Registrar, error) {
	return &schtasksRegistrar{}, nil
}

// schtasksRegistrar registers logon-triggered tasks with the Windows
// task scheduler. The Handle path carries the task name rather than a
// file path; the scheduler owns the underlying storage.
type schtasksRegistrar struct{}

func (schtasksRegistrar) Register(rec process.Record) (Handle, error) {
	task := taskFolder + entryName(rec)
	run := "cmd /c " + rec.Command
	if rec.WorkDir != "" {
		run = fmt.Sprintf(`cmd /c cd /d "%s" && %s`, rec.WorkDir, rec.Command)
	}
	args := []string{"/Create", "/TN", task, "/TR", run, "/SC", "ONLOGON", "/F"}
	// #nosec G204 -- fixed binary, task name is sanitized
	if out, err := exec.Command("schtasks", args...).CombinedOutput(); err != nil {
		return Handle{}, fmt.Errorf("schtasks create: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return Handle{Name: rec.Name, Path: task}, nil
}

func (schtasksRegistrar) Unregister(rec process.Record) error {
	task := taskFolder + entryName(rec)
	// #nosec G204 -- fixed binary, task name is sanitized
	out, err := exec.Command("schtasks", "/Delete", "/TN", task, "/F").CombinedOutput()
	if err != nil {
		if strings.Contains(strings.ToLower(string(out)), "cannot find") {
			return nil
		}
		return fmt.Errorf("schtasks delete: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (schtasksRegistrar) List() ([]Handle, error) {
	out, err := exec.Command("schtasks", "/Query", "/FO", "CSV", "/NH").Output()
	if err != nil {
		// No tasks registered at all also surfaces as an error; report
		// an empty list rather than failing the query.
		return []Handle{}, nil
	}
	rows, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse schtasks output: %w", err)
	}
	handles := []Handle{}
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		task := row[0]
		if !strings.HasPrefix(task, taskFolder) {
			continue
		}
		handles = append(handles, Handle{
			Name: strings.TrimPrefix(strings.TrimPrefix(task, taskFolder), "drover-"),
			Path: task,
		})
	}
	return handles, nil
}
