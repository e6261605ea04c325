// Package payu adapts the PayU HTTP client and notification signature scheme
// to the order ports.
package payu

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	openapi_types "github.com/oapi-codegen/runtime/types"

	payuclient "github.com/jakubzimnol/internet-shop/internal/clients/http/payu"
	"github.com/jakubzimnol/internet-shop/internal/domains/orders/domain"
	"github.com/jakubzimnol/internet-shop/internal/domains/orders/ports"
)

// OrderCreator is the subset of the PayU client the gateway needs.
type OrderCreator interface {
	CreateOrder(ctx context.Context, order payuclient.OrderRequest) (*payuclient.OrderResponse, error)
}

var _ ports.PaymentGateway = (*Gateway)(nil)

// Gateway submits orders to PayU.
type Gateway struct {
	client OrderCreator
	posID  string
}

func NewGateway(client OrderCreator, posID string) *Gateway {
	return &Gateway{client: client, posID: posID}
}

func (g *Gateway) SubmitOrder(ctx context.Context, order *domain.Order, req ports.PaymentRequest) (ports.PaymentSession, error) {
	resp, err := g.client.CreateOrder(ctx, BuildOrderRequest(order, req, g.posID))
	if err != nil {
		return ports.PaymentSession{}, mapClientError(err)
	}
	return ports.PaymentSession{GatewayOrderID: resp.OrderID, RedirectURI: resp.RedirectURI}, nil
}

// BuildOrderRequest maps an order onto the PayU payload. Each product carries
// its real quantity and the total is the sum of unit price times quantity.
func BuildOrderRequest(order *domain.Order, req ports.PaymentRequest, posID string) payuclient.OrderRequest {
	products := make([]payuclient.Product, 0, len(order.Lines))
	for _, line := range order.Lines {
		products = append(products, payuclient.Product{
			Name:      line.ItemName,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}
	description := order.Description
	if strings.TrimSpace(description) == "" {
		description = "Order " + strconv.FormatInt(order.ID, 10)
	}
	out := payuclient.OrderRequest{
		NotifyURL:     req.NotifyURL,
		ContinueURL:   req.ContinueURL,
		CustomerIP:    req.BuyerIP,
		MerchantPosID: posID,
		Description:   description,
		CurrencyCode:  req.Currency,
		TotalAmount:   order.Total(),
		Products:      products,
	}
	if order.Buyer.Email != "" {
		out.Buyer = &payuclient.Buyer{
			Email:     openapi_types.Email(order.Buyer.Email),
			FirstName: order.Buyer.Name,
			Language:  req.Language,
		}
	}
	return out
}

func mapClientError(err error) error {
	var rejected *payuclient.RejectedError
	switch {
	case errors.As(err, &rejected):
		return fmt.Errorf("%w: %w", &ports.RejectedError{Reason: rejected.Reason}, err)
	case errors.Is(err, payuclient.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %w", ports.ErrGatewayUnavailable, err)
	default:
		return err
	}
}
