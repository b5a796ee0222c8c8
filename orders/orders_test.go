package orders

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	apperrors "github.com/kbukum/stagekit/errors"
	"github.com/kbukum/stagekit/logger"
	"github.com/kbukum/stagekit/pipeline"
)

func newTestPipeline(t *testing.T, store *Store, opts ...ServiceOption) *pipeline.Pipeline {
	t.Helper()
	opts = append([]ServiceOption{WithLogger(logger.Nop())}, opts...)
	p, err := NewPipeline(NewServices(store, opts...), pipeline.WithRunLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	return p
}

func TestFixtureStore(t *testing.T) {
	s := NewFixtureStore()
	u, err := s.User(1)
	if err != nil {
		t.Fatal(err)
	}
	if u.FullName != "Joe Shmoe" || len(u.Cart) != 2 {
		t.Errorf("unexpected fixture user %+v", u)
	}
	if it, ok := s.Item(2); !ok || it.Name != "item_2" || !it.Price.Equal(decimal.NewFromInt(15)) {
		t.Errorf("unexpected fixture item %+v", it)
	}
}

func TestStore_UserNotFound(t *testing.T) {
	_, err := NewStore().User(42)
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeNotFound || appErr.Details["id"] != "42" {
		t.Errorf("expected NOT_FOUND for user 42, got %v", err)
	}
}

func TestItems_SkipsUnknownItems(t *testing.T) {
	items := &Items{store: NewFixtureStore()}
	got, err := items.GetItemsFromCart(context.Background(), []CartItem{
		{ItemID: 1, Quantity: 3},
		{ItemID: 99, Quantity: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Item.ID != 1 || got[0].Quantity != 3 {
		t.Errorf("expected only item 1, got %+v", got)
	}
}

func TestPipeline_PlacesOrder(t *testing.T) {
	store := NewFixtureStore()
	p := newTestPipeline(t, store)

	out := p.Run(context.Background(), 1, pipeline.NewSignal())

	if out.State != pipeline.Completed {
		t.Fatalf("expected completed, got %s (%v)", out.State, out.Err)
	}
	order, ok := out.Value.(Order)
	if !ok {
		t.Fatalf("expected Order value, got %T", out.Value)
	}
	if order.UserName != "Joe Shmoe" || len(order.Items) != 2 {
		t.Errorf("unexpected order %+v", order)
	}
	// 1 x 20 + 2 x 15
	if !order.Total.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected total 50, got %s", order.Total)
	}
	if placed := store.Orders(); len(placed) != 1 || placed[0].ID != order.ID {
		t.Errorf("expected the order to be recorded, got %+v", placed)
	}

	names := make([]string, 0, len(out.Reports))
	for _, r := range out.Reports {
		names = append(names, r.Name)
	}
	if diff := cmp.Diff([]string{"get_user_data", "get_items_from_cart", "create_order"}, names); diff != "" {
		t.Errorf("unexpected stage order (-want +got):\n%s", diff)
	}
}

func TestPipeline_MissingUser(t *testing.T) {
	store := NewFixtureStore()
	p := newTestPipeline(t, store)

	out := p.Run(context.Background(), 7, pipeline.NewSignal())

	if out.State != pipeline.Failed {
		t.Fatalf("expected failed, got %s", out.State)
	}
	var se *pipeline.StageError
	if !errors.As(out.Err, &se) || se.Stage != "get_user_data" {
		t.Errorf("expected failure in get_user_data, got %v", out.Err)
	}
	appErr := out.AppError()
	if appErr == nil || appErr.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected 404, got %+v", appErr)
	}
	if len(store.Orders()) != 0 {
		t.Error("no order should be placed")
	}
}

func TestPipeline_TimeoutPlacesNoOrder(t *testing.T) {
	store := NewFixtureStore()
	p := newTestPipeline(t, store, WithLatency(50*time.Millisecond))

	out := p.RunWithTimeout(context.Background(), 1, pipeline.NewSignal(), 70*time.Millisecond)

	if out.State != pipeline.TimedOut {
		t.Fatalf("expected timed out, got %s", out.State)
	}
	if out.StagesRun != 2 {
		t.Errorf("expected the second stage to be in flight, got %d stages", out.StagesRun)
	}
	time.Sleep(100 * time.Millisecond)
	if len(store.Orders()) != 0 {
		t.Error("no order may be placed after the timeout")
	}
}

func TestPipeline_CancelBeforeOrder(t *testing.T) {
	store := NewFixtureStore()
	p := newTestPipeline(t, store, WithLatency(30*time.Millisecond))

	h := p.Start(context.Background(), 1)
	time.AfterFunc(45*time.Millisecond, h.Cancel)

	out, err := h.Wait(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if out.State != pipeline.Cancelled {
		t.Fatalf("expected cancelled, got %s", out.State)
	}
	if len(store.Orders()) != 0 {
		t.Error("cancelled run must not place an order")
	}
}

func TestCreateOrder_Logs(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "info", Format: "json"}, "test", &buf)
	o := &Orders{store: NewStore(), log: log, now: time.Now}

	_, err := o.CreateOrder(context.Background(), Draft{
		User:  User{ID: 1, FullName: "Joe Shmoe"},
		Items: []LineItem{
			{Item: Item{ID: 1, Price: decimal.RequireFromString("20.50")}, Quantity: 1},
			{Item: Item{ID: 2, Price: decimal.NewFromInt(15)}, Quantity: 2},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Joe Shmoe placed an order for 2 items") {
		t.Errorf("expected order log line, got %s", buf.String())
	}
	if !strings.Contains(buf.String(), `"total":"50.50"`) {
		t.Errorf("expected the total in the log line, got %s", buf.String())
	}
}
