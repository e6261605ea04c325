// Package errors renders RFC 7807 problem details for the shop API.
package errors

import (
	"encoding/json"
	"net/http"
)

// ProblemDetail is an RFC 7807 problem. Extensions are written as top-level
// members next to the standard ones.
type ProblemDetail struct {
	Type     string
	Title    string
	Status   int
	Detail   string
	Instance string
	// Extensions never override the standard members.
	Extensions map[string]any
}

var reservedMembers = map[string]struct{}{
	"type": {}, "title": {}, "status": {}, "detail": {}, "instance": {},
}

func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return p.Title + ": " + p.Detail
	}
	return p.Title
}

func (p ProblemDetail) MarshalJSON() ([]byte, error) {
	body := make(map[string]any, len(p.Extensions)+5)
	for key, value := range p.Extensions {
		if _, reserved := reservedMembers[key]; !reserved {
			body[key] = value
		}
	}
	body["type"] = p.Type
	body["title"] = p.Title
	body["status"] = p.Status
	if p.Detail != "" {
		body["detail"] = p.Detail
	}
	if p.Instance != "" {
		body["instance"] = p.Instance
	}
	return json.Marshal(body)
}

// WithDetail returns a copy carrying detail.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithExtension returns a copy with one more extension member. The
// template's map is never shared with the copy.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	extensions := make(map[string]any, len(p.Extensions)+1)
	for k, v := range p.Extensions {
		extensions[k] = v
	}
	extensions[key] = value
	p.Extensions = extensions
	return p
}

const (
	TypeValidation    = "/problems/validation-error"
	TypeNotFound      = "/problems/not-found"
	TypeConflict      = "/problems/conflict"
	TypeInternal      = "/problems/internal-error"
	TypeUnauthorized  = "/problems/unauthorized"
	TypeForbidden     = "/problems/forbidden"
	TypeBadRequest    = "/problems/bad-request"
	TypeUnprocessable = "/problems/unprocessable-entity"
)

var (
	ErrNotFound = ProblemDetail{
		Type:   TypeNotFound,
		Title:  "Resource Not Found",
		Status: http.StatusNotFound,
	}
	ErrValidation = ProblemDetail{
		Type:   TypeValidation,
		Title:  "Validation Error",
		Status: http.StatusBadRequest,
	}
	ErrBadRequest = ProblemDetail{
		Type:   TypeBadRequest,
		Title:  "Bad Request",
		Status: http.StatusBadRequest,
	}
	ErrConflict = ProblemDetail{
		Type:   TypeConflict,
		Title:  "Conflict",
		Status: http.StatusConflict,
	}
	// ErrInternal never carries the underlying error text.
	ErrInternal = ProblemDetail{
		Type:   TypeInternal,
		Title:  "Internal Server Error",
		Status: http.StatusInternalServerError,
	}
	ErrUnauthorized = ProblemDetail{
		Type:   TypeUnauthorized,
		Title:  "Unauthorized",
		Status: http.StatusUnauthorized,
	}
	ErrForbidden = ProblemDetail{
		Type:   TypeForbidden,
		Title:  "Forbidden",
		Status: http.StatusForbidden,
	}
	// ErrUnprocessable covers well-formed requests the shop cannot act on,
	// such as a payment status it does not know.
	ErrUnprocessable = ProblemDetail{
		Type:   TypeUnprocessable,
		Title:  "Unprocessable Entity",
		Status: http.StatusUnprocessableEntity,
	}
)
