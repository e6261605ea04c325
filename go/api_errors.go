package shopserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	catalogapp "github.com/jakubzimnol/internet-shop/internal/domains/catalog/application"
	catalogdomain "github.com/jakubzimnol/internet-shop/internal/domains/catalog/domain"
	catalogports "github.com/jakubzimnol/internet-shop/internal/domains/catalog/ports"
	ordersapp "github.com/jakubzimnol/internet-shop/internal/domains/orders/application"
	ordersdomain "github.com/jakubzimnol/internet-shop/internal/domains/orders/domain"
	ordersports "github.com/jakubzimnol/internet-shop/internal/domains/orders/ports"
	usersapp "github.com/jakubzimnol/internet-shop/internal/domains/users/application"
	usersdomain "github.com/jakubzimnol/internet-shop/internal/domains/users/domain"
	usersports "github.com/jakubzimnol/internet-shop/internal/domains/users/ports"
	apierrors "github.com/jakubzimnol/internet-shop/internal/shared/errors"
)

// Problem types specific to the shop.
const (
	TypeInsufficientInventory = "/problems/insufficient-inventory"
	TypeGatewayUnavailable    = "/problems/payment-gateway-unavailable"
	TypeGatewayRejected       = "/problems/payment-gateway-rejected"
)

var (
	errInsufficientInventory = apierrors.ProblemDetail{
		Type:   TypeInsufficientInventory,
		Title:  "Insufficient Inventory",
		Status: http.StatusConflict,
	}
	errGatewayUnavailable = apierrors.ProblemDetail{
		Type:   TypeGatewayUnavailable,
		Title:  "Payment Gateway Unavailable",
		Status: http.StatusServiceUnavailable,
	}
	errGatewayRejected = apierrors.ProblemDetail{
		Type:   TypeGatewayRejected,
		Title:  "Payment Gateway Rejected",
		Status: http.StatusBadGateway,
	}
)

// problems is consulted in order; the first mapper that recognises the error wins.
var problems = apierrors.NewChainedResponder("",
	mapInventoryError,
	mapGatewayError,
	mapAuthError,
	mapConflictError,
	mapInputError,
	mapNotFoundError,
)

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	problems.Respond(c, problem)
}

func respondBadRequest(c *gin.Context, err error) {
	respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
}

// respondError renders any service error as RFC 7807 problem details.
func respondError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	problems.RespondError(c, err)
}

func mapInventoryError(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, ordersports.ErrInsufficientInventory) || errors.Is(err, catalogdomain.ErrInsufficientAmount) {
		return errInsufficientInventory.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapGatewayError(err error) (apierrors.ProblemDetail, bool) {
	var rejected *ordersports.RejectedError
	switch {
	case errors.As(err, &rejected):
		return errGatewayRejected.WithDetail(err.Error()).WithExtension("reason", rejected.Reason), true
	case errors.Is(err, ordersports.ErrGatewayRejected):
		return errGatewayRejected.WithDetail(err.Error()), true
	case errors.Is(err, ordersports.ErrGatewayUnavailable):
		return errGatewayUnavailable.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapAuthError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, ordersports.ErrUnauthenticated),
		errors.Is(err, usersapp.ErrAuthentication),
		errors.Is(err, usersports.ErrInvalidToken),
		errors.Is(err, usersports.ErrInvalidCredentials):
		return apierrors.ErrUnauthorized.WithDetail(err.Error()), true
	case errors.Is(err, usersdomain.ErrForbidden):
		return apierrors.ErrForbidden.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapConflictError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, ordersports.ErrPersistenceConflict),
		errors.Is(err, ordersports.ErrAlreadySubmitted),
		errors.Is(err, ordersports.ErrIdempotencyConflict),
		errors.Is(err, ordersdomain.ErrInvalidTransition),
		errors.Is(err, catalogports.ErrDuplicateName),
		errors.Is(err, catalogports.ErrInUse),
		errors.Is(err, usersports.ErrDuplicateUsername):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapNotFoundError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, ordersports.ErrNotFound),
		errors.Is(err, catalogports.ErrNotFound),
		errors.Is(err, usersports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

// mapInputError runs before the not-found mapper: a missing category named in
// an item payload is a bad request, not a missing resource.
func mapInputError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, ordersdomain.ErrUnrecognizedStatus):
		return apierrors.ErrUnprocessable.WithDetail(err.Error()), true
	case errors.Is(err, ordersports.ErrMalformedNotification):
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	case errors.Is(err, ordersapp.ErrInvalidInput),
		errors.Is(err, catalogapp.ErrInvalidInput),
		errors.Is(err, usersapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}
