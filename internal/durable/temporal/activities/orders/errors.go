package orders

import (
	"errors"

	"go.temporal.io/sdk/temporal"

	"github.com/jakubzimnol/internet-shop/internal/domains/orders/application"
	"github.com/jakubzimnol/internet-shop/internal/domains/orders/domain"
	orderports "github.com/jakubzimnol/internet-shop/internal/domains/orders/ports"
)

// Error types survive serialization between the activity and the starter.
var errorTypes = []struct {
	name string
	err  error
}{
	{"OrderNotFound", orderports.ErrNotFound},
	{"AlreadySubmitted", orderports.ErrAlreadySubmitted},
	{"InvalidTransition", domain.ErrInvalidTransition},
	{"InvalidInput", application.ErrInvalidInput},
	{"GatewayRejected", orderports.ErrGatewayRejected},
	{"GatewayUnavailable", orderports.ErrGatewayUnavailable},
	{"PersistenceConflict", orderports.ErrPersistenceConflict},
}

// EncodeError converts a service error into a non-retryable application
// error. Submissions are never retried automatically; a second attempt could
// register the order with the gateway twice.
func EncodeError(err error) error {
	if err == nil {
		return nil
	}
	var reason string
	var rejected *orderports.RejectedError
	if errors.As(err, &rejected) {
		reason = rejected.Reason
	}
	for _, candidate := range errorTypes {
		if errors.Is(err, candidate.err) {
			return temporal.NewNonRetryableApplicationError(err.Error(), candidate.name, err, reason)
		}
	}
	return temporal.NewNonRetryableApplicationError(err.Error(), "Unknown", err)
}

// DecodeError maps a workflow failure back onto the order ports errors.
func DecodeError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	if appErr.Type() == "GatewayRejected" {
		var reason string
		if appErr.HasDetails() {
			_ = appErr.Details(&reason)
		}
		return &orderports.RejectedError{Reason: reason}
	}
	for _, candidate := range errorTypes {
		if appErr.Type() == candidate.name {
			return errors.Join(candidate.err, errors.New(appErr.Error()))
		}
	}
	return err
}
