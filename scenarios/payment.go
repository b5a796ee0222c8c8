package scenarios

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kbukum/stagekit/pipeline"
	"github.com/kbukum/stagekit/provider"
)

const (
	// PaymentPipelineName names the payment pipeline.
	PaymentPipelineName = "payment"
	// DefaultChargeDelay is how long the card processor takes by default.
	DefaultChargeDelay = 2 * time.Second
)

// Charge is a request to charge a card.
type Charge struct {
	Card   string          `json:"card"`
	Amount decimal.Decimal `json:"amount"`
}

// Receipt confirms a successful charge.
type Receipt struct {
	Card      string          `json:"card"`
	Amount    decimal.Decimal `json:"amount"`
	ChargedAt time.Time       `json:"charged_at"`
}

// NewPayment builds the single-stage charge pipeline. A charge that is
// still waiting on the processor when its context ends is never made.
func NewPayment(out io.Writer, chargeDelay time.Duration, opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	charge := provider.NewFunc("charge_card", func(_ context.Context, c Charge) (Receipt, error) {
		if !c.Amount.IsPositive() {
			return Receipt{}, fmt.Errorf("charge_card: amount must be positive, got %s", c.Amount)
		}
		if _, err := fmt.Fprintf(out, "Credit card is charged $%s\n", c.Amount.StringFixed(2)); err != nil {
			return Receipt{}, fmt.Errorf("charge_card: %w", err)
		}
		return Receipt{Card: c.Card, Amount: c.Amount, ChargedAt: time.Now().UTC()}, nil
	}, provider.WithLatency(chargeDelay))

	return pipeline.New(PaymentPipelineName, []pipeline.Stage{
		pipeline.FromProvider[Charge, Receipt](charge),
	}, opts...)
}
