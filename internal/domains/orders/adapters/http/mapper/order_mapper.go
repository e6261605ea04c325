package mapper

import (
	"time"

	orderdomain "github.com/jakubzimnol/internet-shop/internal/domains/orders/domain"
	orderports "github.com/jakubzimnol/internet-shop/internal/domains/orders/ports"
)

// Cart is the checkout payload accepted by POST /api/orders and /api/buy.
type Cart struct {
	Description string     `json:"description,omitempty"`
	Items       []CartLine `json:"items"`
}

// CartLine is a single requested item.
type CartLine struct {
	ItemID   int64 `json:"itemId"`
	Quantity int32 `json:"quantity"`
}

// Line is an order position as stored.
type Line struct {
	ItemID    int64  `json:"itemId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int32  `json:"quantity"`
}

// Order is the transport representation of an order.
type Order struct {
	ID             int64     `json:"id"`
	Description    string    `json:"description,omitempty"`
	BuyerID        int64     `json:"buyerId"`
	Lines          []Line    `json:"lines"`
	Total          int64     `json:"total"`
	GatewayOrderID string    `json:"gatewayOrderId,omitempty"`
	PaymentStatus  string    `json:"paymentStatus"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// PaymentRedirect tells the buyer where to pay.
type PaymentRedirect struct {
	OrderID     int64  `json:"orderId"`
	RedirectURI string `json:"redirectUri"`
}

// FulfillmentUpdate is the PATCH /api/orders/:id/fulfillment payload.
type FulfillmentUpdate struct {
	Status string `json:"status"`
}

// NotificationAck is returned to the gateway after a processed callback.
type NotificationAck struct {
	Applied       bool   `json:"applied"`
	PaymentStatus string `json:"paymentStatus,omitempty"`
	Status        string `json:"status,omitempty"`
}

// ToCreateOrderInput binds a cart to the authenticated buyer.
func ToCreateOrderInput(buyer orderdomain.Buyer, cart Cart, idempotencyKey string) orderports.CreateOrderInput {
	lines := make([]orderports.CartLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, orderports.CartLine{ItemID: item.ItemID, Quantity: item.Quantity})
	}
	return orderports.CreateOrderInput{
		Buyer:          buyer,
		Description:    cart.Description,
		Lines:          lines,
		IdempotencyKey: idempotencyKey,
	}
}

// FromDomainOrder converts a domain order to the transport representation.
func FromDomainOrder(order *orderdomain.Order) Order {
	if order == nil {
		return Order{}
	}
	lines := make([]Line, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, Line{
			ItemID:    line.ItemID,
			Name:      line.ItemName,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}
	return Order{
		ID:             order.ID,
		Description:    order.Description,
		BuyerID:        order.Buyer.ID,
		Lines:          lines,
		Total:          order.Total(),
		GatewayOrderID: order.GatewayOrderID,
		PaymentStatus:  string(order.PaymentStatus),
		Status:         string(order.Status),
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
}

func FromDomainOrders(orders []*orderdomain.Order) []Order {
	result := make([]Order, 0, len(orders))
	for _, order := range orders {
		result = append(result, FromDomainOrder(order))
	}
	return result
}

// FromNotificationResult summarises what a callback changed.
func FromNotificationResult(result *orderports.NotificationResult) NotificationAck {
	if result == nil || result.Order == nil {
		return NotificationAck{}
	}
	return NotificationAck{
		Applied:       result.Transition.Apply,
		PaymentStatus: string(result.Order.PaymentStatus),
		Status:        string(result.Order.Status),
	}
}
