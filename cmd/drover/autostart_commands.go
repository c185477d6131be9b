package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/droverhq/drover/internal/autostart"
	"github.com/droverhq/drover/internal/manager"
	"github.com/droverhq/drover/internal/process"
	"github.com/droverhq/drover/internal/store"
)

func createAutostartCommand(c command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autostart",
		Short: "Manage OS autostart registrations",
		Long: `Register processes with the host's native autostart mechanism
(systemd user units, launch agents, scheduled tasks, or XDG autostart
entries) so they resume after reboot.`,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "enable <name|id>",
			Short: "Register a process for autostart",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.AutostartEnable(args[0])
			},
		},
		&cobra.Command{
			Use:   "disable <name|id>",
			Short: "Remove a process autostart registration",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.AutostartDisable(args[0])
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List autostart registrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.AutostartList()
			},
		},
	)
	return cmd
}

func (c command) AutostartEnable(nameOrID string) error {
	return c.withManager(func(mgr *manager.Manager, st store.Store) error {
		rec, err := mgr.Get(nameOrID)
		if err != nil {
			return err
		}
		if err := c.registerAutostart(rec); err != nil {
			return err
		}
		// The flag is informational; registration above is what counts.
		return store.Update(st, rec.ID, func(r *process.Record) error {
			r.Autostart = true
			return nil
		})
	})
}

func (c command) AutostartDisable(nameOrID string) error {
	return c.withManager(func(mgr *manager.Manager, st store.Store) error {
		rec, err := mgr.Get(nameOrID)
		if err != nil {
			return err
		}
		reg, err := autostart.New()
		if err != nil {
			return err
		}
		if err := reg.Unregister(rec); err != nil {
			return err
		}
		fmt.Printf("autostart disabled for %s\n", rec.Name)
		return store.Update(st, rec.ID, func(r *process.Record) error {
			r.Autostart = false
			return nil
		})
	})
}

func (c command) AutostartList() error {
	reg, err := autostart.New()
	if err != nil {
		return err
	}
	handles, err := reg.List()
	if err != nil {
		return err
	}
	printJSON(handles)
	return nil
}

func (c command) registerAutostart(rec process.Record) error {
	reg, err := autostart.New()
	if err != nil {
		return err
	}
	handle, err := reg.Register(rec)
	if err != nil {
		return fmt.Errorf("register autostart for %q: %w", rec.Name, err)
	}
	fmt.Printf("autostart enabled for %s (%s)\n", handle.Name, handle.Path)
	return nil
}
