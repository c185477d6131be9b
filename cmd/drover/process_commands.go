package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/droverhq/drover/internal/manager"
	"github.com/droverhq/drover/internal/process"
	"github.com/droverhq/drover/internal/store"
)

// spawnGrace is how long start waits for an immediate exit before
// returning, so commands that die at once are reported with their real
// outcome instead of a stale running record.
const spawnGrace = 300 * time.Millisecond

func createStartCommand(c command, f *StartFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a detached background process",
		Long: `Start a command detached from the terminal. Output goes to a per-process
log file; the process keeps running after this command returns.

Examples:
  drover start --cmd="python app.py" --name=web
  drover start --cmd="npm run dev" --workdir=/srv/app --env PORT=3000
  drover start --cmd="./backup.sh" --autostart`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Start(*f)
		},
	}
	cmd.Flags().StringVar(&f.CmdStr, "cmd", "", "command to run (required)")
	cmd.Flags().StringVar(&f.Name, "name", "", "process name (defaults to process-<timestamp>)")
	cmd.Flags().StringVar(&f.WorkDir, "workdir", "", "working directory (defaults to the current directory)")
	cmd.Flags().StringArrayVar(&f.Env, "env", nil, "extra KEY=VALUE environment entries (repeatable)")
	cmd.Flags().BoolVar(&f.Autostart, "autostart", false, "also register the process with the OS autostart mechanism")
	if err := cmd.MarkFlagRequired("cmd"); err != nil {
		panic(err)
	}
	return cmd
}

func createStopCommand(c command, f *StopFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop <name|id>",
		Short: "Stop a running process",
		Long: `Stop a running process by name or id. Termination is graceful unless
--force is given.

Examples:
  drover stop web
  drover stop web --force`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Stop(args[0], *f)
		},
	}
	cmd.Flags().BoolVar(&f.Force, "force", false, "kill instead of requesting graceful termination")
	return cmd
}

func createRestartCommand(c command) *cobra.Command {
	return &cobra.Command{
		Use:   "restart <name|id>",
		Short: "Restart a process under a fresh record",
		Long: `Stop the process if it is still running, start it again with the same
command, name, working directory, environment and autostart flag, and
replace the old record. The new record always gets a new id.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Restart(args[0])
		},
	}
}

func createStatusCommand(c command) *cobra.Command {
	return &cobra.Command{
		Use:   "status <name|id>",
		Short: "Show one process record",
		Long: `Show the full record of one process. If the record says running but the
OS disagrees, the record is corrected to stopped before it is shown.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Status(args[0])
		},
	}
}

func createListCommand(c command, f *ListFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List managed processes",
		Long: `List running processes, or every record with --all. This is a cheap
view and does not probe liveness; use status for a reconciled record.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.List(*f)
		},
	}
	cmd.Flags().BoolVar(&f.All, "all", false, "include stopped and errored records")
	cmd.Flags().BoolVar(&f.JSON, "json", false, "print records as JSON")
	return cmd
}

func createLogsCommand(c command, f *LogsFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs <name|id>",
		Short: "Show process logs",
		Long: `Print the last lines of a process log. With --follow, keep streaming
new output until interrupted.

Examples:
  drover logs web
  drover logs web --tail=100
  drover logs web --follow`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Logs(args[0], *f)
		},
	}
	cmd.Flags().IntVar(&f.Tail, "tail", 20, "number of trailing lines to show")
	cmd.Flags().BoolVar(&f.Follow, "follow", false, "keep streaming appended output")
	return cmd
}

func createCleanupCommand(c command) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove stopped and errored records",
		Long: `Remove every record that is not running and delete its log file.
Missing log files are tolerated.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Cleanup()
		},
	}
}

// Start handler.
func (c command) Start(f StartFlags) error {
	overlay, err := parseEnvPairs(f.Env)
	if err != nil {
		return err
	}
	return c.withManager(func(mgr *manager.Manager, st store.Store) error {
		rec, err := mgr.Start(f.CmdStr, process.StartOptions{
			Name:      f.Name,
			WorkDir:   f.WorkDir,
			Env:       overlay,
			Autostart: f.Autostart,
		})
		if err != nil {
			return err
		}
		// Catch commands that die instantly so the user sees the failure
		// now instead of on the next status read.
		if mgr.AwaitExit(rec.ID, spawnGrace) {
			if rec, err = mgr.Get(rec.ID); err != nil {
				return err
			}
		}
		if f.Autostart {
			if err := c.registerAutostart(rec); err != nil {
				return err
			}
		}
		printJSON(rec)
		return nil
	})
}

// Stop handler.
func (c command) Stop(nameOrID string, f StopFlags) error {
	return c.withManager(func(mgr *manager.Manager, st store.Store) error {
		if err := mgr.Stop(nameOrID, f.Force); err != nil {
			return err
		}
		fmt.Printf("stopped %s\n", nameOrID)
		return nil
	})
}

// Restart handler.
func (c command) Restart(nameOrID string) error {
	return c.withManager(func(mgr *manager.Manager, st store.Store) error {
		rec, err := mgr.Restart(nameOrID)
		if err != nil {
			return err
		}
		printJSON(rec)
		return nil
	})
}

// Status handler.
func (c command) Status(nameOrID string) error {
	return c.withManager(func(mgr *manager.Manager, st store.Store) error {
		rec, err := mgr.Get(nameOrID)
		if err != nil {
			return err
		}
		printJSON(rec)
		return nil
	})
}

// List handler.
func (c command) List(f ListFlags) error {
	return c.withManager(func(mgr *manager.Manager, st store.Store) error {
		recs, err := mgr.List(f.All)
		if err != nil {
			return err
		}
		if f.JSON {
			printJSON(recs)
			return nil
		}
		printRecordTable(recs)
		return nil
	})
}

// Logs handler.
func (c command) Logs(nameOrID string, f LogsFlags) error {
	return c.withManager(func(mgr *manager.Manager, st store.Store) error {
		if f.Follow {
			ctx, stop := interruptContext()
			defer stop()
			return mgr.FollowLogs(ctx, nameOrID, f.Tail, os.Stdout)
		}
		out, err := mgr.Logs(nameOrID, f.Tail)
		if err != nil {
			return err
		}
		if out != "" {
			fmt.Println(out)
		}
		return nil
	})
}

// Cleanup handler.
func (c command) Cleanup() error {
	return c.withManager(func(mgr *manager.Manager, st store.Store) error {
		res, err := mgr.Cleanup()
		if err != nil {
			return err
		}
		fmt.Printf("removed %d record(s) and %d log file(s)\n", res.Records, res.LogFiles)
		return nil
	})
}

func parseEnvPairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	m := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		i := strings.IndexByte(kv, '=')
		if i <= 0 {
			return nil, fmt.Errorf("invalid --env entry %q, want KEY=VALUE", kv)
		}
		m[kv[:i]] = kv[i+1:]
	}
	return m, nil
}
