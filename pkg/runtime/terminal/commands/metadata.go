package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

type MetadataCmd struct {
	deps        *Deps
	period      string
	lastUpdated string
}

func NewMetadataCmd(deps *Deps) *cobra.Command {
	mc := &MetadataCmd{deps: deps}
	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "Update the persisted report metadata",
		Args:  cobra.NoArgs,
		RunE:  mc.run,
	}

	cmd.Flags().StringVar(&mc.period, "period", "", "Report period")
	cmd.Flags().StringVar(&mc.lastUpdated, "last-updated", "", "Last updated date")

	return cmd
}

func (mc *MetadataCmd) run(cmd *cobra.Command, _ []string) error {
	snapshot, err := mc.deps.Manager.UpdateMetadata(cmd.Context(), mc.period, mc.lastUpdated)
	if err != nil {
		return fmt.Errorf("failed to update metadata: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Updated metadata: period %q, last updated %q, %d reports\n",
		snapshot.CurrentPeriod, snapshot.LastUpdated, len(snapshot.Reports))
	return nil
}
