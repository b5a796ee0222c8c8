package orders

import (
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/kbukum/stagekit/errors"
)

// CartItem is one line of a user's shopping cart.
type CartItem struct {
	ItemID   int `json:"item_id"`
	Quantity int `json:"qty"`
}

// User is a customer with a cart.
type User struct {
	ID       int        `json:"id"`
	FullName string     `json:"fullname"`
	Address  string     `json:"address"`
	Cart     []CartItem `json:"cart"`
}

// Item is a catalog entry.
type Item struct {
	ID    int             `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// LineItem is a catalog item resolved from a cart line.
type LineItem struct {
	Item     Item `json:"item"`
	Quantity int  `json:"qty"`
}

// Draft carries the user along with the items resolved from their cart.
type Draft struct {
	User  User       `json:"user"`
	Items []LineItem `json:"items"`
}

// Order is a placed order.
type Order struct {
	ID       string          `json:"id"`
	UserID   int             `json:"user_id"`
	UserName string          `json:"user_name"`
	Items    []LineItem      `json:"items"`
	Total    decimal.Decimal `json:"total"`
	PlacedAt time.Time       `json:"placed_at"`
}

// Store is an in-memory catalog of users and items plus the orders placed
// against it.
type Store struct {
	mu     sync.RWMutex
	users  map[int]User
	items  map[int]Item
	orders []Order
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users: make(map[int]User),
		items: make(map[int]Item),
	}
}

// NewFixtureStore returns a store seeded with the demo user and items.
func NewFixtureStore() *Store {
	s := NewStore()
	s.PutUser(User{
		ID:       1,
		FullName: "Joe Shmoe",
		Address:  "Fake Address 123",
		Cart: []CartItem{
			{ItemID: 1, Quantity: 1},
			{ItemID: 2, Quantity: 2},
		},
	})
	s.PutItem(Item{ID: 1, Name: "item_1", Price: decimal.NewFromInt(20)})
	s.PutItem(Item{ID: 2, Name: "item_2", Price: decimal.NewFromInt(15)})
	return s
}

// PutUser adds or replaces a user.
func (s *Store) PutUser(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// PutItem adds or replaces a catalog item.
func (s *Store) PutItem(it Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[it.ID] = it
}

// User looks up a user by ID.
func (s *Store) User(id int) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, apperrors.NotFound("user", strconv.Itoa(id))
	}
	return u, nil
}

// Item looks up a catalog item by ID.
func (s *Store) Item(id int) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	return it, ok
}

func (s *Store) addOrder(o Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, o)
}

// Orders returns the orders placed so far, oldest first.
func (s *Store) Orders() []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.orders)
}
