package main

import (
	"github.com/spf13/cobra"
)

const (
	serviceName = "stagekit"

	configFlag  = "config"
	envFileFlag = "env-file"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   serviceName,
		Short: "Run cancellable multi-stage pipelines",
		Long: `stagekit runs sequential pipelines whose runs can be cancelled between
stages or raced against a timeout.

Configuration is read from config.yml, then .env, then the environment
(in increasing precedence). Flags override all three.`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String(configFlag, "", "path to a config.yml file")
	flags.String(envFileFlag, "", "path to a .env file")

	root.AddCommand(
		newOrderCommand(),
		newRenderCommand(),
		newPaymentCommand(),
		newServeCommand(),
		newVersionCommand(),
	)
	return root
}
