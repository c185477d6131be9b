package process

import "errors"

// Sentinel errors shared across the store, OS adapter and manager.
// Callers match with errors.Is; wrapping sites attach the nameOrID and
// operation context.
var (
	ErrNotFound           = errors.New("not found")
	ErrNotRunning         = errors.New("process is not running")
	ErrSpawnFailure       = errors.New("failed to spawn process")
	ErrCorruptData        = errors.New("process store is corrupted")
	ErrInvalidFormat      = errors.New("invalid backup format")
	ErrTerminationFailure = errors.New("failed to terminate process")
)
