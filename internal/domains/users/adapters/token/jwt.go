package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jakubzimnol/internet-shop/internal/domains/users/domain"
	"github.com/jakubzimnol/internet-shop/internal/domains/users/ports"
)

const issuer = "internet-shop"

const (
	// DefaultTTL is used when NewIssuer gets a non-positive ttl.
	DefaultTTL = 24 * time.Hour
	// DefaultRefreshTTL bounds refresh tokens unless WithRefreshTTL says otherwise.
	DefaultRefreshTTL = 30 * 24 * time.Hour
)

type claims struct {
	Role string `json:"role"`
	Kind string `json:"typ,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs HS256 access and refresh tokens, each carrying a random jti
// that names its server-side session.
type Issuer struct {
	secret     []byte
	ttl        time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

var _ ports.TokenIssuer = (*Issuer)(nil)

type IssuerOption func(*Issuer)

func WithRefreshTTL(ttl time.Duration) IssuerOption {
	return func(i *Issuer) {
		if ttl > 0 {
			i.refreshTTL = ttl
		}
	}
}

func NewIssuer(secret string, ttl time.Duration, opts ...IssuerOption) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	i := &Issuer{secret: []byte(secret), ttl: ttl, refreshTTL: DefaultRefreshTTL, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

func (i *Issuer) Issue(user *domain.User, now time.Time) (string, ports.Claims, error) {
	return i.issue(user, ports.AccessToken, now.Add(i.ttl), now)
}

// IssueRefresh signs a refresh token that can only be exchanged for access
// tokens, never used as one.
func (i *Issuer) IssueRefresh(user *domain.User, now time.Time) (string, ports.Claims, error) {
	return i.issue(user, ports.RefreshToken, now.Add(i.refreshTTL), now)
}

func (i *Issuer) issue(user *domain.User, kind ports.TokenKind, expires, now time.Time) (string, ports.Claims, error) {
	if user == nil || user.ID == 0 {
		return "", ports.Claims{}, errors.New("cannot issue a token for an unsaved user")
	}
	c := claims{
		Role: string(user.Role),
		Kind: string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
	if err != nil {
		return "", ports.Claims{}, err
	}
	return signed, ports.Claims{
		SessionID: c.ID,
		UserID:    user.ID,
		Role:      user.Role,
		Kind:      kind,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}

func (i *Issuer) Parse(raw string) (ports.Claims, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return ports.Claims{}, fmt.Errorf("%w: %w", ports.ErrInvalidToken, err)
	}
	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || userID <= 0 || c.ID == "" {
		return ports.Claims{}, fmt.Errorf("%w: missing subject or id", ports.ErrInvalidToken)
	}
	kind := ports.TokenKind(c.Kind)
	switch kind {
	case "":
		kind = ports.AccessToken
	case ports.AccessToken, ports.RefreshToken:
	default:
		return ports.Claims{}, fmt.Errorf("%w: unknown token type %q", ports.ErrInvalidToken, c.Kind)
	}
	return ports.Claims{
		SessionID: c.ID,
		UserID:    userID,
		Role:      domain.Role(c.Role),
		Kind:      kind,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}
