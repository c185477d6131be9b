package process

import (
	"strconv"
	"time"
)

// Status is the lifecycle state of a managed process record.
type Status string

const (
	StatusRunning Status = "running"
	StatusStopped Status = "stopped"
	StatusError   Status = "error"
)

// StoppedBy values recorded on a stop transition.
const (
	StoppedByUser   = "user"   // explicit stop request delivered the signal
	StoppedBySystem = "system" // process was already gone when we tried
)

// Record is the persisted representation of one managed process.
// A record is created by Manager.Start and mutated only through the
// manager's store updates; stopped and error are terminal states.
type Record struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Command     string            `json:"command"`
	PID         int               `json:"pid,omitempty"`
	Status      Status            `json:"status"`
	StartTime   time.Time         `json:"start_time"`
	WorkDir     string            `json:"work_dir"`
	Env         map[string]string `json:"env,omitempty"`
	LogFile     string            `json:"log_file,omitempty"`
	Autostart   bool              `json:"autostart"`
	LastUpdated time.Time         `json:"last_updated,omitzero"`
	ExitCode    *int              `json:"exit_code,omitempty"`
	Signal      string            `json:"signal,omitempty"`
	Error       string            `json:"error,omitempty"`
	StoppedBy   string            `json:"stopped_by,omitempty"`
	StoppedAt   time.Time         `json:"stopped_at,omitzero"`
}

// Matches reports whether key addresses this record by id or name.
func (r *Record) Matches(key string) bool {
	return r.ID == key || r.Name == key
}

// StartOptions carries the caller-supplied knobs for Manager.Start.
type StartOptions struct {
	Name      string            // defaults to process-<unix millis>
	WorkDir   string            // defaults to the caller's current directory
	Env       map[string]string // overlay applied on top of the base environment
	Autostart bool              // informational; registration happens in the CLI layer
}

// DefaultName returns the fallback name for an unnamed process.
func DefaultName(now time.Time) string {
	return "process-" + strconv.FormatInt(now.UnixMilli(), 10)
}
