package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/stagekit/logger"
	"github.com/kbukum/stagekit/orders"
	"github.com/kbukum/stagekit/pipeline"
	"github.com/kbukum/stagekit/resilience"
	"github.com/kbukum/stagekit/server/endpoint"
)

const (
	userFlag       = "user"
	timeoutFlag    = "timeout"
	stageDelayFlag = "stage-delay"
	attemptsFlag   = "attempts"
)

func newOrderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Place an order for a user's cart",
		Long: `Run the create_order pipeline (get_user_data -> get_items_from_cart ->
create_order) for one user and print the outcome as JSON.

A run that times out is retried up to --attempts times in total.`,
		Args: cobra.NoArgs,
		RunE: runOrder,
	}

	flags := cmd.Flags()
	flags.Int(userFlag, 1, "ID of the user placing the order")
	flags.Duration(timeoutFlag, 0, "run timeout, 0 disables it (overrides pipeline.timeout)")
	flags.Duration(stageDelayFlag, 0, "simulated latency of each service (overrides pipeline.stage_delay)")
	flags.Int(attemptsFlag, 0, "total attempts when a run times out (overrides pipeline.retry.max_attempts)")

	return cmd
}

// pipelineOverrides applies the order flags that were set explicitly.
func pipelineOverrides(cmd *cobra.Command) func(*AppConfig) {
	return func(cfg *AppConfig) {
		flags := cmd.Flags()
		if flags.Changed(timeoutFlag) {
			cfg.Pipeline.Timeout, _ = flags.GetDuration(timeoutFlag)
			if cfg.Pipeline.Timeout <= 0 {
				cfg.Pipeline.Timeout = noTimeout
			}
		}
		if flags.Changed(stageDelayFlag) {
			cfg.Pipeline.StageDelay, _ = flags.GetDuration(stageDelayFlag)
		}
		if flags.Changed(attemptsFlag) {
			cfg.Pipeline.Retry.MaxAttempts, _ = flags.GetInt(attemptsFlag)
		}
	}
}

func runOrder(cmd *cobra.Command, _ []string) error {
	userID, _ := cmd.Flags().GetInt(userFlag)

	app, tel, err := newApp(cmd, pipelineOverrides(cmd))
	if err != nil {
		return err
	}

	return app.RunTask(cmd.Context(), func(ctx context.Context) error {
		cfg := app.Cfg.Pipeline
		svc := orders.NewServices(orders.NewFixtureStore(),
			orders.WithLatency(cfg.StageDelay),
			orders.WithLogger(app.Logger.WithComponent("orders")),
		)
		p, err := orders.NewPipeline(svc, pipelineOptions(app.Logger, tel, orders.PipelineName)...)
		if err != nil {
			return err
		}

		out, err := placeOrder(ctx, p, userID, cfg.Timeout, cfg.Retry, app.Logger)
		if out.RunID != "" {
			if encErr := printJSON(cmd, endpoint.NewRunView(out)); encErr != nil {
				return encErr
			}
		}
		return err
	})
}

// placeOrder runs p, retrying only runs that timed out. It returns the last
// outcome alongside any error.
func placeOrder(ctx context.Context, p *pipeline.Pipeline, userID int, timeout time.Duration, retry resilience.RetryConfig, log *logger.Logger) (pipeline.Outcome, error) {
	var last pipeline.Outcome

	retry.RetryIf = pipeline.IsTimedOut
	retry.OnRetry = func(attempt int, err error, backoff time.Duration) {
		log.Warn("order run timed out, retrying", logger.MergeWithError(logger.Fields(
			logger.FieldRunID, last.RunID,
			"attempt", attempt,
			"backoff_ms", backoff.Milliseconds(),
		), err))
	}

	_, err := resilience.Retry(ctx, retry, func(ctx context.Context, _ int) (pipeline.Outcome, error) {
		last = p.RunWithTimeout(ctx, userID, pipeline.NewSignal(), timeout)
		if appErr := last.AppError(); appErr != nil {
			return last, appErr
		}
		return last, nil
	})
	return last, err
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
