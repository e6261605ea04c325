// Package catalog exposes catalog item stock to the order flow as an
// InventoryLedger.
package catalog

import (
	"context"
	"errors"
	"fmt"

	catalogdomain "github.com/jakubzimnol/internet-shop/internal/domains/catalog/domain"
	catalogports "github.com/jakubzimnol/internet-shop/internal/domains/catalog/ports"
	"github.com/jakubzimnol/internet-shop/internal/domains/orders/ports"
)

var _ ports.InventoryLedger = (*Ledger)(nil)

// Ledger reserves and releases stock through the catalog item repository.
// Both the memory and postgres repositories apply adjustments atomically and
// join the transaction carried by ctx.
type Ledger struct {
	items catalogports.ItemRepository
}

func NewLedger(items catalogports.ItemRepository) *Ledger {
	return &Ledger{items: items}
}

func (l *Ledger) Lookup(ctx context.Context, itemID int64) (ports.ItemSnapshot, error) {
	item, err := l.items.GetByID(ctx, itemID)
	if err != nil {
		return ports.ItemSnapshot{}, translate(itemID, err)
	}
	return ports.ItemSnapshot{
		ID:     item.Entity.ID,
		Name:   item.Entity.Name,
		Price:  item.Entity.Price,
		Amount: item.Entity.Amount,
	}, nil
}

func (l *Ledger) Reserve(ctx context.Context, itemID int64, quantity int32) error {
	if quantity <= 0 {
		return fmt.Errorf("reserve item %d: quantity must be positive", itemID)
	}
	_, err := l.items.AdjustAmount(ctx, itemID, -quantity)
	return translate(itemID, err)
}

func (l *Ledger) Release(ctx context.Context, itemID int64, quantity int32) error {
	if quantity <= 0 {
		return fmt.Errorf("release item %d: quantity must be positive", itemID)
	}
	_, err := l.items.AdjustAmount(ctx, itemID, quantity)
	return translate(itemID, err)
}

func translate(itemID int64, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, catalogports.ErrNotFound):
		return fmt.Errorf("%w: %d", ports.ErrItemNotFound, itemID)
	case errors.Is(err, catalogdomain.ErrInsufficientAmount):
		return fmt.Errorf("%w: item %d", ports.ErrInsufficientInventory, itemID)
	case errors.Is(err, catalogports.ErrDuplicateName):
		return fmt.Errorf("%w: %w", ports.ErrPersistenceConflict, err)
	default:
		return err
	}
}
