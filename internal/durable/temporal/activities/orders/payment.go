package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	orderports "github.com/jakubzimnol/internet-shop/internal/domains/orders/ports"
)

// SubmitForPaymentActivityName registers the payment submission activity.
const SubmitForPaymentActivityName = "orders.activities.SubmitForPayment"

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	service orderports.Service
}

// NewActivities wires the order service into the Temporal activities bundle.
func NewActivities(service orderports.Service) *Activities {
	return &Activities{service: service}
}

// SubmitForPayment registers the order with the payment gateway. Failures are
// returned as non-retryable application errors carrying a stable type so the
// caller can map them back to the order ports errors.
func (a *Activities) SubmitForPayment(ctx context.Context, input orderports.SubmitPaymentInput) (*orderports.SubmitPaymentResult, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("payment activity not initialized", "orderId", input.OrderID)
		return nil, errors.New("payment activity not initialized")
	}
	logger.Info("SubmitForPayment activity started", "orderId", input.OrderID)
	result, err := a.service.SubmitForPayment(ctx, input)
	if err != nil {
		logger.Error("SubmitForPayment activity failed", "orderId", input.OrderID, "error", err)
		return nil, EncodeError(err)
	}
	logger.Info("SubmitForPayment activity completed", "orderId", input.OrderID, "gatewayOrderId", result.Order.GatewayOrderID)
	return result, nil
}
