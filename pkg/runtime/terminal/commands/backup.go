package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewBackupCmd(deps *Deps) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Back up the current reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			backupDir, err := deps.Manager.Backup(cmd.Context(), dir)
			if err != nil {
				return fmt.Errorf("failed to back up reports: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup created: %s\n", backupDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Backup directory (default: backups/reports_<timestamp>)")
	return cmd
}
