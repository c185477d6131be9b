package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/droverhq/drover/internal/config"
	"github.com/droverhq/drover/internal/env"
	"github.com/droverhq/drover/internal/logger"
	"github.com/droverhq/drover/internal/manager"
	"github.com/droverhq/drover/internal/osproc"
	"github.com/droverhq/drover/internal/store"
	"github.com/droverhq/drover/internal/store/factory"
)

// command binds the CLI handlers to the resolved settings; the manager
// and store are built per invocation.
type command struct{}

// buildRoot creates the root command and wires all subcommands.
func buildRoot() *cobra.Command {
	c := command{}
	startFlags := &StartFlags{}
	stopFlags := &StopFlags{}
	listFlags := &ListFlags{}
	logsFlags := &LogsFlags{}
	backupFlags := &BackupFlags{}
	restoreFlags := &BackupFlags{}

	root := createRootCommand()
	root.AddCommand(
		createStartCommand(c, startFlags),
		createStopCommand(c, stopFlags),
		createRestartCommand(c),
		createStatusCommand(c),
		createListCommand(c, listFlags),
		createLogsCommand(c, logsFlags),
		createCleanupCommand(c),
		createBackupCommand(c, backupFlags),
		createRestoreCommand(c, restoreFlags),
		createAutostartCommand(c),
	)
	return root
}

func createRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "drover",
		Short: "Run and manage detached background processes",
		Long: `Drover starts commands detached from the terminal, tracks their state
durably, and exposes their logs. Processes survive the shell that
launched them and can be registered with the OS autostart mechanism.

Examples:
  drover start --cmd="python app.py" --name=web
  drover list
  drover logs web --tail=50 --follow
  drover stop web`,
		SilenceUsage: true,
	}
}

// withManager resolves settings, sets up logging, opens the configured
// store, and hands a ready manager to fn.
func (c command) withManager(fn func(mgr *manager.Manager, st store.Store) error) error {
	settings, err := config.Load()
	if err != nil {
		return err
	}
	logger.Setup(settings.LogLevel, settings.AppLog)
	st, err := factory.New(settings.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()
	mgr := manager.New(st, osproc.New(), env.FromOS(), settings.LogDir)
	return fn(mgr, st)
}
