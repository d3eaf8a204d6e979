package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func NewCheckCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that every report named in the metadata has a backing file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			missing, err := deps.Manager.Check(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to check reports: %w", err)
			}
			if len(missing) > 0 {
				return fmt.Errorf("missing report files: %s", strings.Join(missing, ", "))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All report files found")
			return nil
		},
	}
}
