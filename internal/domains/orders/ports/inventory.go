package ports

import (
	"context"
	"errors"
)

var (
	// ErrInsufficientInventory signals that an item cannot cover the requested quantity.
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrItemNotFound          = errors.New("item not found")
)

// ItemSnapshot is the read view of a catalog item the order flow needs.
type ItemSnapshot struct {
	ID     int64
	Name   string
	Price  int64
	Amount int32
}

// InventoryLedger owns available item quantities.
type InventoryLedger interface {
	// Lookup returns ErrItemNotFound when the item does not exist.
	Lookup(ctx context.Context, itemID int64) (ItemSnapshot, error)
	// Reserve decrements amount when amount >= quantity, otherwise fails
	// with ErrInsufficientInventory and changes nothing.
	Reserve(ctx context.Context, itemID int64, quantity int32) error
	Release(ctx context.Context, itemID int64, quantity int32) error
}
