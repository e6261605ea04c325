package ports

import (
	"errors"
	"time"

	"github.com/jakubzimnol/internet-shop/internal/domains/users/domain"
)

// ErrInvalidToken covers malformed, forged and expired tokens, and tokens of
// the wrong kind.
var ErrInvalidToken = errors.New("invalid access token")

// TokenKind separates short-lived access tokens from refresh tokens.
type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

// Claims are the fields the service relies on after verifying a token.
type Claims struct {
	SessionID string
	UserID    int64
	Role      domain.Role
	Kind      TokenKind
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies access and refresh tokens.
type TokenIssuer interface {
	Issue(user *domain.User, now time.Time) (string, Claims, error)
	IssueRefresh(user *domain.User, now time.Time) (string, Claims, error)
	Parse(token string) (Claims, error)
}
