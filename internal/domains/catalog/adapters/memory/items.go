package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jakubzimnol/internet-shop/internal/domains/catalog/domain"
	"github.com/jakubzimnol/internet-shop/internal/domains/catalog/ports"
	"github.com/jakubzimnol/internet-shop/internal/platform/memtx"
	"github.com/jakubzimnol/internet-shop/internal/shared/projection"
)

var _ ports.ItemRepository = (*ItemRepository)(nil)

// ItemRepository is an in-memory implementation used for demos/tests.
type ItemRepository struct {
	mu         sync.RWMutex
	items      map[int64]*storedItem
	nextID     int64
	now        func() time.Time
	references ports.ItemReferences
}

type storedItem struct {
	item     *domain.Item
	metadata projection.Metadata
}

// ItemOption customises the ItemRepository.
type ItemOption func(*ItemRepository)

// WithItemReferences makes Delete refuse items that refs still points at.
func WithItemReferences(refs ports.ItemReferences) ItemOption {
	return func(r *ItemRepository) { r.references = refs }
}

func NewItemRepository(opts ...ItemOption) *ItemRepository {
	r := &ItemRepository{
		items: map[int64]*storedItem{},
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *ItemRepository) Create(_ context.Context, item *domain.Item) (*ports.ItemProjection, error) {
	if item == nil {
		return nil, errors.New("cannot save nil item")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nameTaken(item.Name, 0) {
		return nil, ports.ErrDuplicateName
	}
	r.nextID++
	stored := &storedItem{item: item.Clone(), metadata: projection.NewMetadata(r.now())}
	stored.item.ID = r.nextID
	r.items[stored.item.ID] = stored
	return projectionCopy(stored), nil
}

func (r *ItemRepository) Update(_ context.Context, item *domain.Item) (*ports.ItemProjection, error) {
	if item == nil {
		return nil, errors.New("cannot save nil item")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.items[item.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if r.nameTaken(item.Name, item.ID) {
		return nil, ports.ErrDuplicateName
	}
	amount := entry.item.Amount
	entry.item = item.Clone()
	entry.item.Amount = amount
	entry.metadata.Touch(r.now())
	return projectionCopy(entry), nil
}

func (r *ItemRepository) SetAmount(ctx context.Context, id int64, amount int32) (*ports.ItemProjection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.items[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	previous := entry.item.Amount
	if err := entry.item.Restock(amount); err != nil {
		return nil, err
	}
	entry.metadata.Touch(r.now())
	memtx.OnRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if current, ok := r.items[id]; ok {
			current.item.Amount = previous
		}
	})
	return projectionCopy(entry), nil
}

func (r *ItemRepository) GetByID(_ context.Context, id int64) (*ports.ItemProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.items[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return projectionCopy(entry), nil
}

func (r *ItemRepository) List(_ context.Context) ([]*ports.ItemProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*ports.ItemProjection, 0, len(r.items))
	for _, entry := range r.items {
		list = append(list, projectionCopy(entry))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Entity.ID < list[j].Entity.ID })
	return list, nil
}

func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return ports.ErrNotFound
	}
	if r.references != nil {
		referenced, err := r.references.ItemReferenced(ctx, id)
		if err != nil {
			return err
		}
		if referenced {
			return ports.ErrInUse
		}
	}
	delete(r.items, id)
	return nil
}

// AdjustAmount checks and applies delta under the repository lock. Inside a
// memtx transaction the change is reverted on rollback.
func (r *ItemRepository) AdjustAmount(ctx context.Context, id int64, delta int32) (*ports.ItemProjection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.items[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if err := entry.item.Adjust(delta); err != nil {
		return nil, err
	}
	entry.metadata.Touch(r.now())
	memtx.OnRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if current, ok := r.items[id]; ok {
			current.item.Amount -= delta
		}
	})
	return projectionCopy(entry), nil
}

func (r *ItemRepository) nameTaken(name string, except int64) bool {
	for id, entry := range r.items {
		if id != except && strings.EqualFold(entry.item.Name, name) {
			return true
		}
	}
	return false
}

func projectionCopy(entry *storedItem) *ports.ItemProjection {
	return &ports.ItemProjection{
		Entity:   entry.item.Clone(),
		Metadata: entry.metadata,
	}
}
