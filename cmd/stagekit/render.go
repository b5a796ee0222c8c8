package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/stagekit/pipeline"
	"github.com/kbukum/stagekit/scenarios"
)

const (
	fetchDelayFlag  = "fetch-delay"
	cancelAfterFlag = "cancel-after"
	sourceFlag      = "source"
)

func newRenderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Fetch, decode and display a buffer, optionally cancelling part way",
		Long: `Run fetch_raw -> decode -> display. With --cancel-after the run's signal
is set after the given delay; the stage in flight finishes, no further
stage starts, and "Cancelled!" is printed.`,
		Args: cobra.NoArgs,
		RunE: runRender,
	}

	flags := cmd.Flags()
	flags.String(sourceFlag, "screen", "name of the source to fetch")
	flags.Duration(fetchDelayFlag, scenarios.DefaultFetchDelay, "how long fetch_raw takes")
	flags.Duration(cancelAfterFlag, 500*time.Millisecond, "cancel the run after this delay (0 never cancels)")

	return cmd
}

func runRender(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	source, _ := flags.GetString(sourceFlag)
	fetchDelay, _ := flags.GetDuration(fetchDelayFlag)
	cancelAfter, _ := flags.GetDuration(cancelAfterFlag)

	app, tel, err := newApp(cmd, nil)
	if err != nil {
		return err
	}

	return app.RunTask(cmd.Context(), func(ctx context.Context) error {
		p, err := scenarios.NewRender(cmd.OutOrStdout(), fetchDelay,
			pipelineOptions(app.Logger, tel, scenarios.RenderPipelineName)...)
		if err != nil {
			return err
		}

		sig := pipeline.NewSignal()
		if cancelAfter > 0 {
			t := time.AfterFunc(cancelAfter, sig.Cancel)
			defer t.Stop()
		}

		out := p.Run(ctx, source, sig)
		if out.State == pipeline.Cancelled {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled!")
			return nil
		}
		if appErr := out.AppError(); appErr != nil {
			return appErr
		}
		return nil
	})
}
