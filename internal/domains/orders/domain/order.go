package domain

import (
	"errors"
	"math"
	"strings"
	"time"
)

var (
	ErrInvalidBuyer           = errors.New("buyer id must be greater than zero")
	ErrEmptyCart              = errors.New("order must contain at least one line")
	ErrInvalidItemID          = errors.New("item id must be greater than zero")
	ErrInvalidQuantity        = errors.New("quantity must be greater than zero")
	ErrInvalidPrice           = errors.New("unit price must not be negative")
	ErrTotalOverflow          = errors.New("order total exceeds the supported maximum")
	ErrInvalidTransition      = errors.New("order status transition is not allowed")
	ErrEmptyGatewayOrderID    = errors.New("gateway order id must not be empty")
	ErrGatewayOrderIDConflict = errors.New("order already has a different gateway order id")
)

// Buyer is the authenticated identity placing the order.
type Buyer struct {
	ID    int64
	Email string
	Name  string
}

// Line is a single cart position. Name and price are snapshots taken when the
// order was created.
type Line struct {
	ID        int64
	ItemID    int64
	ItemName  string
	UnitPrice int64
	Quantity  int32
}

// Subtotal returns unit price times quantity in minor units. Lines of a
// validated order never overflow.
func (l Line) Subtotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

func (l Line) checkedSubtotal() (int64, error) {
	if l.Quantity > 0 && l.UnitPrice > math.MaxInt64/int64(l.Quantity) {
		return 0, ErrTotalOverflow
	}
	return l.Subtotal(), nil
}

// Order models the checkout aggregate. Lines are immutable after creation.
type Order struct {
	ID             int64
	Description    string
	Buyer          Buyer
	Lines          []Line
	GatewayOrderID string
	PaymentStatus  PaymentStatus
	Status         FulfillmentStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewOrder validates and constructs an order in NEW/NEW.
func NewOrder(buyer Buyer, description string, lines []Line) (*Order, error) {
	order := &Order{
		Description:   strings.TrimSpace(description),
		Buyer:         buyer,
		Lines:         append([]Line(nil), lines...),
		PaymentStatus: PaymentNew,
		Status:        FulfillmentNew,
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// Validate enforces invariants on the aggregate.
func (o *Order) Validate() error {
	if o.Buyer.ID <= 0 {
		return ErrInvalidBuyer
	}
	if len(o.Lines) == 0 {
		return ErrEmptyCart
	}
	for _, line := range o.Lines {
		if line.ItemID <= 0 {
			return ErrInvalidItemID
		}
		if line.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		if line.UnitPrice < 0 {
			return ErrInvalidPrice
		}
	}
	if _, err := o.checkedTotal(); err != nil {
		return err
	}
	if !o.PaymentStatus.Valid() || !o.Status.Valid() {
		return ErrUnrecognizedStatus
	}
	return nil
}

// Total sums unit price times quantity over every line.
func (o *Order) Total() int64 {
	var total int64
	for _, line := range o.Lines {
		total += line.Subtotal()
	}
	return total
}

func (o *Order) checkedTotal() (int64, error) {
	var total int64
	for _, line := range o.Lines {
		subtotal, err := line.checkedSubtotal()
		if err != nil {
			return 0, err
		}
		if total > math.MaxInt64-subtotal {
			return 0, ErrTotalOverflow
		}
		total += subtotal
	}
	return total, nil
}

// HasGatewayOrderID reports whether the gateway already assigned an id.
func (o *Order) HasGatewayOrderID() bool {
	return o.GatewayOrderID != ""
}

// AssignGatewayOrderID records the external id once. Re-assigning the same
// id returns false without error.
func (o *Order) AssignGatewayOrderID(id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, ErrEmptyGatewayOrderID
	}
	if o.GatewayOrderID == id {
		return false, nil
	}
	if o.HasGatewayOrderID() {
		return false, ErrGatewayOrderIDConflict
	}
	o.GatewayOrderID = id
	return true, nil
}

// PaymentTransition describes what a notification does to an order.
type PaymentTransition struct {
	From    PaymentStatus
	To      PaymentStatus
	Apply   bool
	Release bool
}

// PlanPayment decides the effect of a reported payment status. Once the
// fulfillment status has left NEW the order no longer reacts to
// notifications, and repeating the current status is a no-op.
func (o *Order) PlanPayment(status PaymentStatus) PaymentTransition {
	plan := PaymentTransition{From: o.PaymentStatus, To: status}
	if o.Status != FulfillmentNew {
		return plan
	}
	if status == o.PaymentStatus || status == PaymentNew {
		return plan
	}
	plan.Apply = true
	plan.Release = releasesInventory(status)
	return plan
}

// ApplyPayment stores the payment status and its fulfillment projection.
func (o *Order) ApplyPayment(status PaymentStatus) error {
	if !status.Valid() {
		return ErrUnrecognizedStatus
	}
	o.PaymentStatus = status
	o.Status = FulfillmentFor(status, o.Status)
	return nil
}

// Advance moves a paid order through shipping. Only PAID -> SEND and
// SEND -> FINISHED are allowed.
func (o *Order) Advance(to FulfillmentStatus) error {
	switch {
	case o.Status == FulfillmentPaid && to == FulfillmentSend:
	case o.Status == FulfillmentSend && to == FulfillmentFinished:
	default:
		return ErrInvalidTransition
	}
	o.Status = to
	return nil
}

// Clone returns a deep copy safe to hand across adapter boundaries.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	cp := *o
	cp.Lines = append([]Line(nil), o.Lines...)
	return &cp
}
