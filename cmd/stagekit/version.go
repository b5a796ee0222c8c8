package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/stagekit/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the stagekit version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "stagekit %s\n", version.Get())
			return err
		},
	}
}
