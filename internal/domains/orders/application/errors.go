package application

import (
	"errors"
	"fmt"

	"github.com/jakubzimnol/internet-shop/internal/domains/orders/domain"
	"github.com/jakubzimnol/internet-shop/internal/domains/orders/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid order input")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrInvalidBuyer),
		errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrInvalidItemID),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrTotalOverflow),
		errors.Is(err, domain.ErrEmptyGatewayOrderID),
		errors.Is(err, ports.ErrItemNotFound):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, domain.ErrGatewayOrderIDConflict):
		return fmt.Errorf("%w: %w", ports.ErrAlreadySubmitted, err)
	}
	return err
}
