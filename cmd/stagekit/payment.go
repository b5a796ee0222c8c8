package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/kbukum/stagekit/pipeline"
	"github.com/kbukum/stagekit/scenarios"
)

const (
	chargeDelayFlag = "charge-delay"
	amountFlag      = "amount"
	cardFlag        = "card"
)

func newPaymentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payment",
		Short: "Race a slow card charge against a timeout",
		Long: `Run the single-stage payment pipeline with a timeout. When the timeout
wins, the run settles as timed out and the card is never charged.`,
		Args: cobra.NoArgs,
		RunE: runPayment,
	}

	flags := cmd.Flags()
	flags.Duration(timeoutFlag, time.Second, "payment timeout")
	flags.Duration(chargeDelayFlag, scenarios.DefaultChargeDelay, "how long the card processor takes")
	flags.String(amountFlag, "42.00", "amount to charge")
	flags.String(cardFlag, "4242424242424242", "card number to charge")

	return cmd
}

func runPayment(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	timeout, _ := flags.GetDuration(timeoutFlag)
	chargeDelay, _ := flags.GetDuration(chargeDelayFlag)
	rawAmount, _ := flags.GetString(amountFlag)
	card, _ := flags.GetString(cardFlag)

	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return fmt.Errorf("invalid --%s %q: %w", amountFlag, rawAmount, err)
	}

	app, tel, err := newApp(cmd, nil)
	if err != nil {
		return err
	}

	return app.RunTask(cmd.Context(), func(ctx context.Context) error {
		p, err := scenarios.NewPayment(cmd.OutOrStdout(), chargeDelay,
			pipelineOptions(app.Logger, tel, scenarios.PaymentPipelineName)...)
		if err != nil {
			return err
		}

		out := p.RunWithTimeout(ctx, scenarios.Charge{Card: card, Amount: amount}, pipeline.NewSignal(), timeout)
		if appErr := out.AppError(); appErr != nil {
			return appErr
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Payment processed")
		return nil
	})
}
