package orders

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kbukum/stagekit/logger"
	"github.com/kbukum/stagekit/provider"
)

// Users serves user profiles.
type Users struct {
	store *Store
}

// GetUserData returns the user with the given ID.
func (u *Users) GetUserData(_ context.Context, userID int) (User, error) {
	return u.store.User(userID)
}

// Items resolves cart lines against the catalog.
type Items struct {
	store *Store
}

// GetItemsFromCart returns the catalog items in cart. Lines whose item no
// longer exists are skipped.
func (i *Items) GetItemsFromCart(_ context.Context, cart []CartItem) ([]LineItem, error) {
	found := make([]LineItem, 0, len(cart))
	for _, line := range cart {
		if it, ok := i.store.Item(line.ItemID); ok {
			found = append(found, LineItem{Item: it, Quantity: line.Quantity})
		}
	}
	return found, nil
}

// Orders places orders.
type Orders struct {
	store *Store
	log   *logger.Logger
	now   func() time.Time
}

// CreateOrder records an order for the draft and returns it.
func (o *Orders) CreateOrder(ctx context.Context, d Draft) (Order, error) {
	total := decimal.Zero
	for _, li := range d.Items {
		total = total.Add(li.Item.Price.Mul(decimal.NewFromInt(int64(li.Quantity))))
	}
	order := Order{
		ID:       uuid.NewString(),
		UserID:   d.User.ID,
		UserName: d.User.FullName,
		Items:    d.Items,
		Total:    total,
		PlacedAt: o.now(),
	}
	o.store.addOrder(order)

	o.log.WithContext(ctx).Info(d.User.FullName+" placed an order for "+itemCount(len(d.Items)), logger.Fields(
		"order_id", order.ID,
		"total", total.StringFixed(2),
	))
	return order, nil
}

func itemCount(n int) string {
	if n == 1 {
		return "1 item"
	}
	return strconv.Itoa(n) + " items"
}

// Services exposes the three order services as providers.
type Services struct {
	Users  provider.RequestResponse[int, User]
	Items  provider.RequestResponse[[]CartItem, []LineItem]
	Orders provider.RequestResponse[Draft, Order]
}

// ServiceOption configures NewServices.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	latency time.Duration
	log     *logger.Logger
}

// WithLatency simulates a remote call of duration d in every service.
func WithLatency(d time.Duration) ServiceOption {
	return func(o *serviceOptions) { o.latency = d }
}

// WithLogger sets the logger used by the order service.
func WithLogger(log *logger.Logger) ServiceOption {
	return func(o *serviceOptions) { o.log = log }
}

// NewServices builds the services over store.
func NewServices(store *Store, opts ...ServiceOption) *Services {
	o := serviceOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Get("orders")
	}

	latency := provider.WithLatency(o.latency)
	users := &Users{store: store}
	items := &Items{store: store}
	orders := &Orders{store: store, log: o.log, now: time.Now}

	return &Services{
		Users:  provider.NewFunc("get_user_data", users.GetUserData, latency),
		Items:  provider.NewFunc("get_items_from_cart", items.GetItemsFromCart, latency),
		Orders: provider.NewFunc("create_order", orders.CreateOrder, latency),
	}
}
