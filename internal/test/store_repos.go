package test

import (
	"context"
	"sort"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

type memoryBase struct {
	store *MemoryStore
	view  func() (*memoryState, func())
}

func (b memoryBase) with(fn func(s *memoryState) error) error {
	s, done := b.view()
	defer done()
	return fn(s)
}

func (b memoryBase) now() time.Time {
	if b.store.Now != nil {
		return b.store.Now()
	}
	return time.Now()
}

type memoryRepos struct {
	memoryBase
}

func (r memoryRepos) Users() repository.UserRepository {
	return memoryUsers(r)
}

func (r memoryRepos) Addresses() repository.AddressRepository {
	return memoryAddresses(r)
}

func (r memoryRepos) Products() repository.ProductRepository {
	return memoryProducts(r)
}

func (r memoryRepos) Inventory() repository.InventoryRepository {
	return memoryInventory(r)
}

func (r memoryRepos) Movements() repository.MovementRepository {
	return memoryMovements(r)
}

func (r memoryRepos) Coupons() repository.CouponRepository {
	return memoryCoupons(r)
}

func (r memoryRepos) Orders() repository.OrderRepository {
	return memoryOrders(r)
}

func (r memoryRepos) Events() repository.EventRepository {
	return memoryEvents(r)
}

type memoryUsers struct{ memoryBase }

func (r memoryUsers) Create(ctx context.Context, login, passwordHash string) (*model.User, error) {
	var out model.User
	err := r.with(func(s *memoryState) error {
		for _, u := range s.users {
			if u.Login == login {
				return domainErrors.ErrAlreadyExists
			}
		}
		out = model.User{ID: s.nextID(), Login: login, PasswordHash: passwordHash, CreatedAt: r.now()}
		s.users[out.ID] = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r memoryUsers) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	var out *model.User
	err := r.with(func(s *memoryState) error {
		for _, u := range s.users {
			if u.Login == login {
				out = &u
				return nil
			}
		}
		return domainErrors.ErrNotFound
	})
	return out, err
}

func (r memoryUsers) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var out *model.User
	err := r.with(func(s *memoryState) error {
		u, ok := s.users[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

type memoryAddresses struct{ memoryBase }

func (r memoryAddresses) Create(ctx context.Context, a model.Address) (*model.Address, error) {
	err := r.with(func(s *memoryState) error {
		if a.Default {
			for id, other := range s.addresses {
				if other.UserID == a.UserID && other.Default {
					other.Default = false
					s.addresses[id] = other
				}
			}
		}
		a.ID = s.nextID()
		a.CreatedAt = r.now()
		s.addresses[a.ID] = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r memoryAddresses) ListByUser(ctx context.Context, userID int64) ([]model.Address, error) {
	var out []model.Address
	_ = r.with(func(s *memoryState) error {
		for _, a := range s.addresses {
			if a.UserID == userID {
				out = append(out, a)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Default != out[j].Default {
			return out[i].Default
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r memoryAddresses) GetForUser(ctx context.Context, userID, id int64) (*model.Address, error) {
	var out *model.Address
	err := r.with(func(s *memoryState) error {
		a, ok := s.addresses[id]
		if !ok || a.UserID != userID {
			return domainErrors.ErrNotFound
		}
		out = &a
		return nil
	})
	return out, err
}

func (r memoryAddresses) GetDefault(ctx context.Context, userID int64) (*model.Address, error) {
	list, _ := r.ListByUser(ctx, userID)
	if len(list) == 0 {
		return nil, domainErrors.ErrNotFound
	}
	return &list[0], nil
}

type memoryProducts struct{ memoryBase }

func (r memoryProducts) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var out *model.Product
	err := r.with(func(s *memoryState) error {
		p, ok := s.products[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (r memoryProducts) GetByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	out := make(map[int64]model.Product, len(ids))
	_ = r.with(func(s *memoryState) error {
		for _, id := range ids {
			if p, ok := s.products[id]; ok {
				out[id] = p
			}
		}
		return nil
	})
	return out, nil
}

func (r memoryProducts) Create(ctx context.Context, p model.Product) (*model.Product, error) {
	err := r.with(func(s *memoryState) error {
		for _, other := range s.products {
			if other.SKU == p.SKU {
				return domainErrors.ErrAlreadyExists
			}
		}
		p.ID = s.nextID()
		p.CreatedAt = r.now()
		p.UpdatedAt = p.CreatedAt
		s.products[p.ID] = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r memoryProducts) Update(ctx context.Context, product model.Product) (*model.Product, error) {
	var out model.Product
	err := r.with(func(s *memoryState) error {
		p, ok := s.products[product.ID]
		if !ok {
			return domainErrors.ErrNotFound
		}
		p.Name, p.Price, p.Active, p.UpdatedAt = product.Name, product.Price, product.Active, r.now()
		s.products[p.ID] = p
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type memoryInventory struct{ memoryBase }

func (r memoryInventory) Decrement(ctx context.Context, productID int64, qty int) error {
	return r.with(func(s *memoryState) error {
		p, ok := s.products[productID]
		if !ok {
			return domainErrors.ErrInsufficientStock
		}
		if r.store.OnDecrement != nil {
			r.store.OnDecrement(&p)
			s.products[productID] = p
		}
		if p.Stock < qty {
			return domainErrors.ErrInsufficientStock
		}
		p.Stock -= qty
		p.SoldCount += qty
		s.products[productID] = p
		return nil
	})
}

func (r memoryInventory) Restore(ctx context.Context, productID int64, qty int) error {
	return r.with(func(s *memoryState) error {
		p, ok := s.products[productID]
		if !ok {
			return domainErrors.ErrNotFound
		}
		p.Stock += qty
		s.products[productID] = p
		return nil
	})
}

type memoryMovements struct{ memoryBase }

func (r memoryMovements) Record(ctx context.Context, m model.StockMovement) (bool, error) {
	inserted := false
	err := r.with(func(s *memoryState) error {
		for _, existing := range s.movements {
			if existing.OrderID == m.OrderID && existing.ProductID == m.ProductID && existing.Reason == m.Reason {
				return nil
			}
		}
		m.ID = s.nextID()
		m.CreatedAt = r.now()
		s.movements = append(s.movements, m)
		inserted = true
		return nil
	})
	return inserted, err
}

func (r memoryMovements) ListByOrder(ctx context.Context, orderID int64) ([]model.StockMovement, error) {
	var out []model.StockMovement
	_ = r.with(func(s *memoryState) error {
		for _, m := range s.movements {
			if m.OrderID == orderID {
				out = append(out, m)
			}
		}
		return nil
	})
	return out, nil
}

type memoryCoupons struct{ memoryBase }

func (r memoryCoupons) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	var out *model.Coupon
	err := r.with(func(s *memoryState) error {
		c, ok := s.coupons[code]
		if !ok {
			return domainErrors.ErrNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

func (r memoryCoupons) GetByCodeForUpdate(ctx context.Context, code string) (*model.Coupon, error) {
	return r.GetByCode(ctx, code)
}

func (r memoryCoupons) IncrementUsage(ctx context.Context, id int64) error {
	return r.with(func(s *memoryState) error {
		for code, c := range s.coupons {
			if c.ID != id {
				continue
			}
			if c.Exhausted() {
				return domainErrors.NewCouponError(domainErrors.ErrCouponUsageLimitReached)
			}
			c.UsedCount++
			s.coupons[code] = c
			return nil
		}
		return domainErrors.NewCouponError(domainErrors.ErrCouponUsageLimitReached)
	})
}

func (r memoryCoupons) Upsert(ctx context.Context, c model.Coupon) (*model.Coupon, error) {
	err := r.with(func(s *memoryState) error {
		if existing, ok := s.coupons[c.Code]; ok {
			c.ID, c.UsedCount, c.CreatedAt = existing.ID, existing.UsedCount, existing.CreatedAt
		} else {
			c.ID, c.UsedCount, c.CreatedAt = s.nextID(), 0, r.now()
		}
		s.coupons[c.Code] = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r memoryCoupons) Delete(ctx context.Context, code string) error {
	return r.with(func(s *memoryState) error {
		if _, ok := s.coupons[code]; !ok {
			return domainErrors.ErrNotFound
		}
		delete(s.coupons, code)
		return nil
	})
}

func (r memoryCoupons) List(ctx context.Context) ([]model.Coupon, error) {
	var out []model.Coupon
	_ = r.with(func(s *memoryState) error {
		for _, c := range s.coupons {
			out = append(out, c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

type memoryOrders struct{ memoryBase }

func (r memoryOrders) Create(ctx context.Context, order *model.Order) error {
	if r.store.OnCreateOrder != nil {
		if err := r.store.OnCreateOrder(order); err != nil {
			return err
		}
	}
	return r.with(func(s *memoryState) error {
		for _, o := range s.orders {
			if o.Number == order.Number || (order.TrackingCode != "" && o.TrackingCode == order.TrackingCode) {
				return domainErrors.ErrDuplicateIdentifier
			}
		}
		order.ID = s.nextID()
		order.UpdatedAt = order.CreatedAt
		stored := *order.Clone()
		stored.Items = nil
		s.orders[order.ID] = stored
		return nil
	})
}

func (r memoryOrders) AddItem(ctx context.Context, orderID int64, item model.LineItem) (*model.OrderItem, error) {
	var out model.OrderItem
	err := r.with(func(s *memoryState) error {
		o, ok := s.orders[orderID]
		if !ok {
			return domainErrors.ErrNotFound
		}
		out = model.OrderItem{ID: s.nextID(), OrderID: orderID, LineItem: item}
		o.Items = append(o.Items, out)
		s.orders[orderID] = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r memoryOrders) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var out *model.Order
	err := r.with(func(s *memoryState) error {
		o, ok := s.orders[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		out = o.Clone()
		return nil
	})
	return out, err
}

func (r memoryOrders) GetByIDForUpdate(ctx context.Context, id int64) (*model.Order, error) {
	return r.GetByID(ctx, id)
}

func (r memoryOrders) GetByNumberForUpdate(ctx context.Context, number string) (*model.Order, error) {
	var out *model.Order
	err := r.with(func(s *memoryState) error {
		for _, o := range s.orders {
			if o.Number == number {
				out = o.Clone()
				return nil
			}
		}
		return domainErrors.ErrNotFound
	})
	return out, err
}

func (r memoryOrders) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return r.filter(func(o model.Order) bool { return o.UserID == userID }), nil
}

func (r memoryOrders) List(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	return r.filter(func(o model.Order) bool { return status == "" || o.Status == status }), nil
}

func (r memoryOrders) filter(keep func(model.Order) bool) []model.Order {
	var out []model.Order
	_ = r.with(func(s *memoryState) error {
		for _, o := range s.orders {
			if keep(o) {
				cp := o.Clone()
				cp.Items = nil
				out = append(out, *cp)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r memoryOrders) Update(ctx context.Context, order *model.Order) error {
	return r.with(func(s *memoryState) error {
		o, ok := s.orders[order.ID]
		if !ok {
			return domainErrors.ErrNotFound
		}
		if order.TrackingCode != "" {
			for id, other := range s.orders {
				if id != order.ID && other.TrackingCode == order.TrackingCode {
					return domainErrors.ErrDuplicateIdentifier
				}
			}
		}
		o.Status = order.Status
		o.PaymentStatus = order.PaymentStatus
		o.PaymentID = order.PaymentID
		o.TrackingCode = order.TrackingCode
		o.DeliveredAt = order.DeliveredAt
		o.UpdatedAt = order.UpdatedAt
		s.orders[order.ID] = *o.Clone()
		return nil
	})
}

func (r memoryOrders) CountCouponUses(ctx context.Context, userID int64, code string) (int, error) {
	n := 0
	_ = r.with(func(s *memoryState) error {
		for _, o := range s.orders {
			if o.UserID == userID && o.CouponCode == code {
				n++
			}
		}
		return nil
	})
	return n, nil
}

type memoryEvents struct{ memoryBase }

func (r memoryEvents) Append(ctx context.Context, event model.OrderEvent) error {
	return r.with(func(s *memoryState) error {
		event.ID = s.nextID()
		event.Status = model.EventStatusPending
		s.events = append(s.events, event)
		return nil
	})
}

func (r memoryEvents) ClaimBatch(ctx context.Context, limit int) ([]model.OrderEvent, error) {
	var out []model.OrderEvent
	_ = r.with(func(s *memoryState) error {
		for i := range s.events {
			if len(out) >= limit {
				break
			}
			if s.events[i].Status != model.EventStatusPending {
				continue
			}
			s.events[i].Status = model.EventStatusProcessing
			s.events[i].Attempts++
			out = append(out, s.events[i])
		}
		return nil
	})
	return out, nil
}

func (r memoryEvents) MarkPublished(ctx context.Context, id int64) error {
	return r.setStatus(id, model.EventStatusPublished)
}

func (r memoryEvents) Release(ctx context.Context, id int64) error {
	return r.setStatus(id, model.EventStatusPending)
}

func (r memoryEvents) setStatus(id int64, status model.EventStatus) error {
	return r.with(func(s *memoryState) error {
		for i := range s.events {
			if s.events[i].ID == id {
				s.events[i].Status = status
				return nil
			}
		}
		return domainErrors.ErrNotFound
	})
}
