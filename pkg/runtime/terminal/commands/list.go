package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewListCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List current report files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			files, err := deps.Manager.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list reports: %w", err)
			}
			return deps.Reporter.Handle(files)
		},
	}
}
