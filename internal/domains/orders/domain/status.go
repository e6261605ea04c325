package domain

import (
	"errors"
	"fmt"
)

// PaymentStatus is the state reported by the payment gateway.
type PaymentStatus string

const (
	PaymentNew       PaymentStatus = "NEW"
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentRejected  PaymentStatus = "REJECTED"
	PaymentCanceled  PaymentStatus = "CANCELED"
)

// FulfillmentStatus is the local order progression.
type FulfillmentStatus string

const (
	FulfillmentNew      FulfillmentStatus = "NEW"
	FulfillmentPaid     FulfillmentStatus = "PAID"
	FulfillmentSend     FulfillmentStatus = "SEND"
	FulfillmentFinished FulfillmentStatus = "FINISHED"
	FulfillmentCanceled FulfillmentStatus = "CANCELED"
)

var ErrUnrecognizedStatus = errors.New("unrecognized status")

// ParsePaymentStatus accepts only the exact gateway enum values.
func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	status := PaymentStatus(raw)
	if !status.Valid() {
		return "", fmt.Errorf("%w: payment status %q", ErrUnrecognizedStatus, raw)
	}
	return status, nil
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentNew, PaymentPending, PaymentCompleted, PaymentRejected, PaymentCanceled:
		return true
	default:
		return false
	}
}

// ParseFulfillmentStatus accepts only the local enum values.
func ParseFulfillmentStatus(raw string) (FulfillmentStatus, error) {
	status := FulfillmentStatus(raw)
	if !status.Valid() {
		return "", fmt.Errorf("%w: fulfillment status %q", ErrUnrecognizedStatus, raw)
	}
	return status, nil
}

func (s FulfillmentStatus) Valid() bool {
	switch s {
	case FulfillmentNew, FulfillmentPaid, FulfillmentSend, FulfillmentFinished, FulfillmentCanceled:
		return true
	default:
		return false
	}
}

// FulfillmentFor projects a payment status onto the fulfillment status.
// PENDING and NEW leave the current value untouched.
func FulfillmentFor(status PaymentStatus, current FulfillmentStatus) FulfillmentStatus {
	switch status {
	case PaymentCompleted:
		return FulfillmentPaid
	case PaymentRejected, PaymentCanceled:
		return FulfillmentCanceled
	default:
		return current
	}
}

// releasesInventory reports whether reaching status gives reserved stock back.
func releasesInventory(status PaymentStatus) bool {
	return status == PaymentRejected || status == PaymentCanceled
}
