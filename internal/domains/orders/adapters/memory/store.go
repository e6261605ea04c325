package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jakubzimnol/internet-shop/internal/domains/orders/domain"
	"github.com/jakubzimnol/internet-shop/internal/domains/orders/ports"
	"github.com/jakubzimnol/internet-shop/internal/platform/memtx"
)

var _ ports.OrderStore = (*Store)(nil)

// Store is an in-memory OrderStore used for local runs and tests. Writes made
// inside a memtx transaction are undone when it fails.
type Store struct {
	mu        sync.RWMutex
	orders    map[int64]*domain.Order
	byGateway map[string]int64
	nextOrder int64
	nextLine  int64
	now       func() time.Time
}

func NewStore() *Store {
	return &Store{
		orders:    map[int64]*domain.Order{},
		byGateway: map[string]int64{},
		now:       time.Now,
	}
}

func (s *Store) CreateOrder(ctx context.Context, input ports.NewOrder) (*domain.Order, error) {
	order, err := domain.NewOrder(input.Buyer, input.Description, input.Lines)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextOrder++
	order.ID = s.nextOrder
	for i := range order.Lines {
		s.nextLine++
		order.Lines[i].ID = s.nextLine
	}
	ts := s.now().UTC()
	order.CreatedAt, order.UpdatedAt = ts, ts
	s.orders[order.ID] = order.Clone()

	id := order.ID
	memtx.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.orders, id)
	})
	return order, nil
}

func (s *Store) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

func (s *Store) FindByGatewayOrderID(_ context.Context, gatewayOrderID string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byGateway[gatewayOrderID]
	if !ok {
		return nil, fmt.Errorf("%w: gateway order %q", ports.ErrNotFound, gatewayOrderID)
	}
	return s.orders[id].Clone(), nil
}

func (s *Store) RecordGatewayOrderID(ctx context.Context, orderID int64, gatewayOrderID string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if owner, taken := s.byGateway[gatewayOrderID]; taken && owner != orderID {
		return nil, fmt.Errorf("%w: gateway order id already assigned", ports.ErrPersistenceConflict)
	}
	previous := order.Clone()
	changed, err := order.AssignGatewayOrderID(gatewayOrderID)
	if err != nil {
		return nil, err
	}
	if changed {
		order.UpdatedAt = s.now().UTC()
		s.byGateway[order.GatewayOrderID] = orderID
		s.restoreOnRollback(ctx, previous)
	}
	return order.Clone(), nil
}

func (s *Store) ApplyPaymentStatus(ctx context.Context, orderID int64, status domain.PaymentStatus) (*domain.Order, error) {
	if _, err := domain.ParsePaymentStatus(string(status)); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	previous := order.Clone()
	if err := order.ApplyPayment(status); err != nil {
		return nil, err
	}
	order.UpdatedAt = s.now().UTC()
	s.restoreOnRollback(ctx, previous)
	return order.Clone(), nil
}

func (s *Store) UpdateFulfillment(ctx context.Context, orderID int64, status domain.FulfillmentStatus) (*domain.Order, error) {
	if _, err := domain.ParseFulfillmentStatus(string(status)); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	previous := order.Clone()
	order.Status = status
	order.UpdatedAt = s.now().UTC()
	s.restoreOnRollback(ctx, previous)
	return order.Clone(), nil
}

func (s *Store) ListByBuyer(_ context.Context, buyerID int64) ([]*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []*domain.Order
	for _, order := range s.orders {
		if buyerID == 0 || order.Buyer.ID == buyerID {
			list = append(list, order.Clone())
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// ItemReferenced reports whether any order line points at itemID, which keeps
// the catalog from deleting items that orders may still release stock to.
func (s *Store) ItemReferenced(_ context.Context, itemID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, order := range s.orders {
		for _, line := range order.Lines {
			if line.ItemID == itemID {
				return true, nil
			}
		}
	}
	return false, nil
}

// restoreOnRollback must be called with s.mu held.
func (s *Store) restoreOnRollback(ctx context.Context, previous *domain.Order) {
	memtx.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		current, ok := s.orders[previous.ID]
		if ok && current.GatewayOrderID != previous.GatewayOrderID {
			delete(s.byGateway, current.GatewayOrderID)
		}
		s.orders[previous.ID] = previous
	})
}
