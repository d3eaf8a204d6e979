package commands

import (
	"errors"
	"fmt"

	"github.com/de-tools/industry-reports/pkg/services/manage"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type UpdateCmd struct {
	deps        *Deps
	period      string
	lastUpdated string
	pattern     string
	skipBackup  bool
}

func NewUpdateCmd(deps *Deps) *cobra.Command {
	uc := &UpdateCmd{deps: deps}
	cmd := &cobra.Command{
		Use:   "update <source_dir>",
		Short: "Back up the current reports, then copy new report files into place",
		Args:  cobra.ExactArgs(1),
		RunE:  uc.run,
	}

	cmd.Flags().StringVar(&uc.period, "period", "", `Report period (e.g. "2025-08-25 to 2025-09-01")`)
	cmd.Flags().StringVar(&uc.lastUpdated, "last-updated", "", `Last updated date (e.g. "September 1, 2025")`)
	cmd.Flags().StringVar(&uc.pattern, "pattern", "", "Glob selecting files to copy (default: files named in the metadata)")
	cmd.Flags().BoolVar(&uc.skipBackup, "skip-backup", false, "Do not back up the current reports first")

	return cmd
}

func (uc *UpdateCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if err := manage.CheckSource(args[0]); err != nil {
		return fmt.Errorf("failed to update reports: %w", err)
	}

	if !uc.skipBackup {
		dir, err := uc.deps.Manager.Backup(ctx, "")
		switch {
		case errors.Is(err, manage.ErrNoReportsDir):
			zerolog.Ctx(ctx).Warn().Msg("no reports directory found, skipping backup")
		case err != nil:
			return fmt.Errorf("failed to back up reports: %w", err)
		default:
			fmt.Fprintf(out, "Backup created: %s\n", dir)
		}
	}

	result, err := uc.deps.Manager.Update(ctx, args[0], uc.pattern)
	if err != nil {
		return fmt.Errorf("failed to update reports: %w", err)
	}

	for _, name := range result.Updated {
		fmt.Fprintf(out, "Updated: %s\n", name)
	}
	for _, name := range result.Missing {
		fmt.Fprintf(out, "Missing: %s\n", name)
	}
	fmt.Fprintf(out, "\nUpdated %d report files\n", len(result.Updated))

	if uc.period != "" || uc.lastUpdated != "" {
		if _, err := uc.deps.Manager.UpdateMetadata(ctx, uc.period, uc.lastUpdated); err != nil {
			return fmt.Errorf("failed to update metadata: %w", err)
		}
		fmt.Fprintln(out, "Updated metadata")
	}

	return nil
}
