package test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// MemoryStore keeps the repository set in memory. Transactions are
// serialized and work on a private copy that replaces the committed state
// only when the callback succeeds.
type MemoryStore struct {
	mu    sync.Mutex
	state *memoryState

	// Now stamps created rows. Defaults to time.Now.
	Now func() time.Time
	// OnDecrement runs inside the transaction before the stock check and may
	// change the product, e.g. to simulate a competing checkout.
	OnDecrement func(p *model.Product)
	// OnCreateOrder can reject an order insert, e.g. with ErrDuplicateIdentifier.
	OnCreateOrder func(o *model.Order) error
	// CommitErrors are returned by the next commits instead of committing.
	CommitErrors []error

	Commits   int
	Rollbacks int
}

type memoryState struct {
	seq       int64
	users     map[int64]model.User
	addresses map[int64]model.Address
	products  map[int64]model.Product
	coupons   map[string]model.Coupon
	orders    map[int64]model.Order
	movements []model.StockMovement
	events    []model.OrderEvent
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: &memoryState{
			users:     make(map[int64]model.User),
			addresses: make(map[int64]model.Address),
			products:  make(map[int64]model.Product),
			coupons:   make(map[string]model.Coupon),
			orders:    make(map[int64]model.Order),
		},
		Now: time.Now,
	}
}

func (s *memoryState) clone() *memoryState {
	cp := &memoryState{
		seq:       s.seq,
		users:     make(map[int64]model.User, len(s.users)),
		addresses: make(map[int64]model.Address, len(s.addresses)),
		products:  make(map[int64]model.Product, len(s.products)),
		coupons:   make(map[string]model.Coupon, len(s.coupons)),
		orders:    make(map[int64]model.Order, len(s.orders)),
		movements: append([]model.StockMovement(nil), s.movements...),
		events:    append([]model.OrderEvent(nil), s.events...),
	}
	for k, v := range s.users {
		cp.users[k] = v
	}
	for k, v := range s.addresses {
		cp.addresses[k] = v
	}
	for k, v := range s.products {
		cp.products[k] = v
	}
	for k, v := range s.coupons {
		cp.coupons[k] = v
	}
	for k, v := range s.orders {
		cp.orders[k] = *v.Clone()
	}
	return cp
}

func (s *memoryState) nextID() int64 {
	s.seq++
	return s.seq
}

// WithinTransaction implements repository.Transactor.
func (m *MemoryStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos repository.Factory) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := m.state.clone()
	repos := memoryRepos{memoryBase{store: m, view: func() (*memoryState, func()) { return tx, func() {} }}}

	if err := fn(ctx, repos); err != nil {
		m.Rollbacks++
		return err
	}
	if len(m.CommitErrors) > 0 {
		err := m.CommitErrors[0]
		m.CommitErrors = m.CommitErrors[1:]
		m.Rollbacks++
		return err
	}
	m.state = tx
	m.Commits++
	return nil
}

func (m *MemoryStore) repos() memoryRepos {
	return memoryRepos{memoryBase{store: m, view: func() (*memoryState, func()) {
		m.mu.Lock()
		return m.state, m.mu.Unlock
	}}}
}

func (m *MemoryStore) Users() repository.UserRepository {
	return m.repos().Users()
}

func (m *MemoryStore) Addresses() repository.AddressRepository {
	return m.repos().Addresses()
}

func (m *MemoryStore) Products() repository.ProductRepository {
	return m.repos().Products()
}

func (m *MemoryStore) Inventory() repository.InventoryRepository {
	return m.repos().Inventory()
}

func (m *MemoryStore) Movements() repository.MovementRepository {
	return m.repos().Movements()
}

func (m *MemoryStore) Coupons() repository.CouponRepository {
	return m.repos().Coupons()
}

func (m *MemoryStore) Orders() repository.OrderRepository {
	return m.repos().Orders()
}

func (m *MemoryStore) Events() repository.EventRepository {
	return m.repos().Events()
}

func (m *MemoryStore) locked(fn func(s *memoryState)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.state)
}

// SeedProduct stores a product and returns it with identifier assigned.
func (m *MemoryStore) SeedProduct(p model.Product) model.Product {
	m.locked(func(s *memoryState) {
		if p.ID == 0 {
			p.ID = s.nextID()
		}
		s.products[p.ID] = p
	})
	return p
}

// SeedCoupon stores a coupon under its code.
func (m *MemoryStore) SeedCoupon(c model.Coupon) model.Coupon {
	m.locked(func(s *memoryState) {
		if c.ID == 0 {
			c.ID = s.nextID()
		}
		s.coupons[c.Code] = c
	})
	return c
}

// SeedAddress stores an address for its user.
func (m *MemoryStore) SeedAddress(a model.Address) model.Address {
	m.locked(func(s *memoryState) {
		if a.ID == 0 {
			a.ID = s.nextID()
		}
		s.addresses[a.ID] = a
	})
	return a
}

// SeedUser stores a user.
func (m *MemoryStore) SeedUser(u model.User) model.User {
	m.locked(func(s *memoryState) {
		if u.ID == 0 {
			u.ID = s.nextID()
		}
		s.users[u.ID] = u
	})
	return u
}

// SeedOrder stores an order together with its items.
func (m *MemoryStore) SeedOrder(o model.Order) model.Order {
	m.locked(func(s *memoryState) {
		if o.ID == 0 {
			o.ID = s.nextID()
		}
		for i := range o.Items {
			if o.Items[i].ID == 0 {
				o.Items[i].ID = s.nextID()
			}
			o.Items[i].OrderID = o.ID
		}
		s.orders[o.ID] = *o.Clone()
	})
	return o
}

// Product returns committed product state.
func (m *MemoryStore) Product(id int64) (p model.Product) {
	m.locked(func(s *memoryState) { p = s.products[id] })
	return p
}

// Coupon returns committed coupon state.
func (m *MemoryStore) Coupon(code string) (c model.Coupon) {
	m.locked(func(s *memoryState) { c = s.coupons[code] })
	return c
}

// Order returns committed order state.
func (m *MemoryStore) Order(id int64) (o model.Order) {
	m.locked(func(s *memoryState) {
		if stored, ok := s.orders[id]; ok {
			o = *stored.Clone()
		}
	})
	return o
}

// AllOrders returns committed orders sorted by identifier.
func (m *MemoryStore) AllOrders() (out []model.Order) {
	m.locked(func(s *memoryState) {
		for _, o := range s.orders {
			out = append(out, *o.Clone())
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AllMovements returns the committed stock movements.
func (m *MemoryStore) AllMovements() (out []model.StockMovement) {
	m.locked(func(s *memoryState) { out = append(out, s.movements...) })
	return out
}

// AllEvents returns committed outbox events.
func (m *MemoryStore) AllEvents() (out []model.OrderEvent) {
	m.locked(func(s *memoryState) { out = append(out, s.events...) })
	return out
}

var (
	_ repository.Factory    = (*MemoryStore)(nil)
	_ repository.Transactor = (*MemoryStore)(nil)
	_ repository.Factory    = memoryRepos{}
)
