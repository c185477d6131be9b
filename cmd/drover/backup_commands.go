package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/droverhq/drover/internal/manager"
	"github.com/droverhq/drover/internal/store"
)

func createBackupCommand(c command, f *BackupFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a backup of the process records",
		Long: `Snapshot all process records into a timestamped backup file that
restore can load later.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Backup(*f)
		},
	}
	cmd.Flags().StringVar(&f.File, "file", "", "backup file path (required)")
	if err := cmd.MarkFlagRequired("file"); err != nil {
		panic(err)
	}
	return cmd
}

func createRestoreCommand(c command, f *BackupFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Restore process records from a backup",
		Long: `Replace the stored process records with the contents of a backup file.
The backup must contain a processes array; anything else is rejected
and the current records are left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Restore(*f)
		},
	}
	cmd.Flags().StringVar(&f.File, "file", "", "backup file path (required)")
	if err := cmd.MarkFlagRequired("file"); err != nil {
		panic(err)
	}
	return cmd
}

func (c command) Backup(f BackupFlags) error {
	return c.withManager(func(mgr *manager.Manager, st store.Store) error {
		n, err := store.WriteBackup(st, f.File)
		if err != nil {
			return err
		}
		fmt.Printf("backed up %d record(s) to %s\n", n, f.File)
		return nil
	})
}

func (c command) Restore(f BackupFlags) error {
	return c.withManager(func(mgr *manager.Manager, st store.Store) error {
		n, err := store.Restore(st, f.File)
		if err != nil {
			return err
		}
		fmt.Printf("restored %d record(s) from %s\n", n, f.File)
		return nil
	})
}
