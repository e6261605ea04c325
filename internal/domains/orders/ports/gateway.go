package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/jakubzimnol/internet-shop/internal/domains/orders/domain"
)

var (
	// ErrGatewayUnavailable is transient and may be retried by resubmitting.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrGatewayRejected is terminal for the attempt.
	ErrGatewayRejected = errors.New("payment gateway rejected the request")
	// ErrAlreadySubmitted is returned when the order already has a gateway order id.
	ErrAlreadySubmitted = errors.New("order already submitted for payment")
)

// RejectedError carries the gateway supplied reason.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	if e.Reason == "" {
		return ErrGatewayRejected.Error()
	}
	return fmt.Sprintf("%s: %s", ErrGatewayRejected, e.Reason)
}

func (e *RejectedError) Unwrap() error { return ErrGatewayRejected }

// PaymentRequest carries the per-submission context the gateway needs.
type PaymentRequest struct {
	BuyerIP     string
	Currency    string
	Language    string
	NotifyURL   string
	ContinueURL string
}

// PaymentSession is what a successful submission returns.
type PaymentSession struct {
	GatewayOrderID string
	RedirectURI    string
}

// PaymentGateway submits orders to the external payment processor.
type PaymentGateway interface {
	SubmitOrder(ctx context.Context, order *domain.Order, req PaymentRequest) (PaymentSession, error)
}
