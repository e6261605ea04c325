package ports

import (
	"context"
	"errors"

	"github.com/jakubzimnol/internet-shop/internal/domains/catalog/domain"
	"github.com/jakubzimnol/internet-shop/internal/shared/projection"
)

var (
	ErrNotFound      = errors.New("catalog entry not found")
	ErrDuplicateName = errors.New("catalog entry name already exists")
	// ErrInUse is returned when deleting an entry that orders or items still reference.
	ErrInUse = errors.New("catalog entry is still referenced")
)

// ItemProjection is an item plus persistence metadata.
type ItemProjection = projection.Projection[*domain.Item]

// ItemRepository persists catalog items.
type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) (*ItemProjection, error)
	// Update writes every attribute except Amount. Stock only moves through
	// AdjustAmount and SetAmount so reservations are never overwritten.
	Update(ctx context.Context, item *domain.Item) (*ItemProjection, error)
	GetByID(ctx context.Context, id int64) (*ItemProjection, error)
	List(ctx context.Context) ([]*ItemProjection, error)
	Delete(ctx context.Context, id int64) error
	// AdjustAmount atomically adds delta to the available amount. It fails
	// with domain.ErrInsufficientAmount instead of going below zero.
	AdjustAmount(ctx context.Context, id int64, delta int32) (*ItemProjection, error)
	// SetAmount overwrites the available amount on a seller restock.
	SetAmount(ctx context.Context, id int64, amount int32) (*ItemProjection, error)
}

// ItemReferences reports whether anything outside the catalog still points
// at an item. Stores that enforce the relation themselves do not need one.
type ItemReferences interface {
	ItemReferenced(ctx context.Context, itemID int64) (bool, error)
}

// CategoryRepository persists categories and subcategories.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) (*domain.Category, error)
	Update(ctx context.Context, category *domain.Category) (*domain.Category, error)
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	// List returns top level categories when subcategories is false, and
	// subcategories otherwise.
	List(ctx context.Context, subcategories bool) ([]*domain.Category, error)
	Delete(ctx context.Context, id int64) error
}
