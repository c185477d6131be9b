package main

// StartFlags holds flags for the start command.
type StartFlags struct {
	Name      string
	CmdStr    string
	WorkDir   string
	Env       []string // KEY=VALUE overlay entries
	Autostart bool
}

// StopFlags holds flags for the stop command.
type StopFlags struct {
	Force bool
}

// ListFlags holds flags for the list command.
type ListFlags struct {
	All  bool
	JSON bool
}

// LogsFlags holds flags for the logs command.
type LogsFlags struct {
	Tail   int
	Follow bool
}

// BackupFlags holds flags for the backup and restore commands.
type BackupFlags struct {
	File string
}
