package orders

import (
	"context"

	"github.com/kbukum/stagekit/pipeline"
	"github.com/kbukum/stagekit/provider"
)

// PipelineName names the order pipeline in logs, spans and metrics.
const PipelineName = "create_order"

// NewPipeline builds the three-stage order pipeline:
// user ID -> User -> Draft (user plus cart items) -> Order.
func NewPipeline(svc *Services, opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	// The items service only needs the cart, but the order stage needs the
	// user as well, so the user is carried through the adapter.
	items := provider.Adapt(svc.Items, svc.Items.Name(),
		func(_ context.Context, u User) ([]CartItem, error) { return u.Cart, nil },
		func(u User, found []LineItem) (Draft, error) { return Draft{User: u, Items: found}, nil },
	)

	return pipeline.New(PipelineName, []pipeline.Stage{
		pipeline.FromProvider(svc.Users),
		pipeline.FromProvider(items),
		pipeline.FromProvider(svc.Orders),
	}, opts...)
}
