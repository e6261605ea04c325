package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jakubzimnol/internet-shop/internal/domains/catalog/domain"
	"github.com/jakubzimnol/internet-shop/internal/domains/catalog/ports"
)

var _ ports.CategoryRepository = (*CategoryRepository)(nil)

type CategoryRepository struct {
	mu         sync.RWMutex
	categories map[int64]domain.Category
	nextID     int64
}

func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{categories: map[int64]domain.Category{}}
}

func (r *CategoryRepository) Create(_ context.Context, category *domain.Category) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nameTaken(category.Name, 0) {
		return nil, ports.ErrDuplicateName
	}
	r.nextID++
	stored := *category
	stored.ID = r.nextID
	r.categories[stored.ID] = stored
	return &stored, nil
}

func (r *CategoryRepository) Update(_ context.Context, category *domain.Category) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[category.ID]; !ok {
		return nil, ports.ErrNotFound
	}
	if r.nameTaken(category.Name, category.ID) {
		return nil, ports.ErrDuplicateName
	}
	stored := *category
	r.categories[stored.ID] = stored
	return &stored, nil
}

func (r *CategoryRepository) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	category, ok := r.categories[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &category, nil
}

func (r *CategoryRepository) List(_ context.Context, subcategories bool) ([]*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []*domain.Category
	for _, category := range r.categories {
		if category.IsSubcategory() == subcategories {
			c := category
			list = append(list, &c)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *CategoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.categories, id)
	return nil
}

func (r *CategoryRepository) nameTaken(name string, except int64) bool {
	for id, c := range r.categories {
		if id != except && strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}
