package ports

import (
	"errors"
	"net/http"
)

var (
	// ErrUnauthenticated means the notification signature was missing or wrong.
	ErrUnauthenticated = errors.New("notification is not authenticated")
	// ErrMalformedNotification means the payload lacks the order id or status.
	ErrMalformedNotification = errors.New("malformed notification")
)

// NotificationVerifier authenticates an inbound gateway callback over its raw body.
type NotificationVerifier interface {
	Verify(headers http.Header, body []byte) error
}
