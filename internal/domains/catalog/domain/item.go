package domain

import (
	"errors"
	"math"
	"strings"
)

var (
	ErrEmptyName      = errors.New("name is required")
	ErrNegativePrice  = errors.New("price must not be negative")
	ErrPriceTooHigh   = errors.New("price exceeds the supported maximum")
	ErrNegativeAmount = errors.New("amount must not be negative")
	// ErrInsufficientAmount is returned when an adjustment would take amount below zero.
	ErrInsufficientAmount = errors.New("amount would become negative")
	ErrAmountOverflow     = errors.New("amount exceeds the supported maximum")
)

// MaxPrice caps a unit price at ten billion in major units.
const MaxPrice int64 = 1_000_000_000_000

// Item is a sellable catalog entry. Price is in minor currency units.
type Item struct {
	ID            int64
	Name          string
	Description   string
	Price         int64
	Amount        int32
	SellerID      int64
	CategoryID    *int64
	SubcategoryID *int64
	ImageURLs     []string
}

// NewItem validates the invariants and builds a new Item.
func NewItem(name string, price int64, amount int32) (*Item, error) {
	item := &Item{}
	if err := item.Rename(name); err != nil {
		return nil, err
	}
	if err := item.Reprice(price); err != nil {
		return nil, err
	}
	if err := item.Restock(amount); err != nil {
		return nil, err
	}
	return item, nil
}

func (i *Item) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	i.Name = name
	return nil
}

func (i *Item) Reprice(price int64) error {
	if price < 0 {
		return ErrNegativePrice
	}
	if price > MaxPrice {
		return ErrPriceTooHigh
	}
	i.Price = price
	return nil
}

// Restock overwrites the available amount.
func (i *Item) Restock(amount int32) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	i.Amount = amount
	return nil
}

// Adjust applies delta to the available amount and never lets it go negative.
func (i *Item) Adjust(delta int32) error {
	next := int64(i.Amount) + int64(delta)
	if next < 0 {
		return ErrInsufficientAmount
	}
	if next > math.MaxInt32 {
		return ErrAmountOverflow
	}
	i.Amount = int32(next)
	return nil
}

// Clone returns a copy that shares no slices or pointers.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	cp := *i
	cp.ImageURLs = append([]string(nil), i.ImageURLs...)
	if i.CategoryID != nil {
		id := *i.CategoryID
		cp.CategoryID = &id
	}
	if i.SubcategoryID != nil {
		id := *i.SubcategoryID
		cp.SubcategoryID = &id
	}
	return &cp
}
