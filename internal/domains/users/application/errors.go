package application

import (
	"errors"
	"fmt"

	"github.com/jakubzimnol/internet-shop/internal/domains/users/domain"
	"github.com/jakubzimnol/internet-shop/internal/domains/users/ports"
)

var (
	// ErrInvalidInput wraps registration data the account rules reject.
	ErrInvalidInput = errors.New("invalid user input")
	// ErrAuthentication wraps bad credentials and dead or forged tokens.
	ErrAuthentication = errors.New("authentication failed")
)

var (
	inputErrors = []error{
		domain.ErrEmptyUsername,
		domain.ErrEmptyPassword,
		domain.ErrWeakPassword,
		domain.ErrInvalidEmail,
		domain.ErrInvalidRole,
	}
	authenticationErrors = []error{
		ports.ErrInvalidCredentials,
		ports.ErrInvalidToken,
	}
)

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case isAny(err, inputErrors):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case isAny(err, authenticationErrors):
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	return err
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
