package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jakubzimnol/internet-shop/internal/domains/users/domain"
	"github.com/jakubzimnol/internet-shop/internal/domains/users/ports"
)

// Service exposes user bounded context use cases.
type Service struct {
	repo     ports.Repository
	sessions ports.SessionStore
	tokens   ports.TokenIssuer
	now      func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source used for token issue and expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo ports.Repository, sessions ports.SessionStore, tokens ports.TokenIssuer, opts ...Option) *Service {
	s := &Service{repo: repo, sessions: sessions, tokens: tokens, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Register creates the account and logs it in. Self-registration cannot
// grant the admin role.
func (s *Service) Register(ctx context.Context, input ports.RegisterInput) (*ports.LoginResult, error) {
	role := input.Role
	if role == "" {
		role = domain.RoleBuyer
	}
	if role == domain.RoleAdmin {
		return nil, mapError(domain.ErrInvalidRole)
	}
	user, err := domain.NewUser(input.Username, input.Email, input.Password, role)
	if err != nil {
		return nil, mapError(err)
	}
	user.FirstName = strings.TrimSpace(input.FirstName)
	user.LastName = strings.TrimSpace(input.LastName)
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, created)
}

func (s *Service) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return nil, mapError(ports.ErrInvalidCredentials)
	}
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, mapError(ports.ErrInvalidCredentials)
		}
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, mapError(ports.ErrInvalidCredentials)
	}
	return s.startSession(ctx, user)
}

// Logout revokes the session behind an access token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.revoke(ctx, token, ports.AccessToken)
}

// LogoutRefresh revokes a refresh token so it can no longer mint access tokens.
func (s *Service) LogoutRefresh(ctx context.Context, refreshToken string) error {
	return s.revoke(ctx, refreshToken, ports.RefreshToken)
}

// Authenticate verifies token, checks its session has not been revoked and
// loads the current user. The role comes from storage, not from the token.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	return s.resolve(ctx, token, ports.AccessToken)
}

// Refresh issues a new access token for the owner of a live refresh token.
// The refresh token itself stays valid until it expires or is revoked.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*ports.LoginResult, error) {
	user, err := s.resolve(ctx, refreshToken, ports.RefreshToken)
	if err != nil {
		return nil, err
	}
	token, claims, err := s.issue(ctx, user, s.tokens.Issue)
	if err != nil {
		return nil, err
	}
	return &ports.LoginResult{Token: token, ExpiresAt: claims.ExpiresAt, User: user}, nil
}

func (s *Service) parse(token string, kind ports.TokenKind) (ports.Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return ports.Claims{}, mapError(err)
	}
	if claims.Kind != kind {
		return ports.Claims{}, mapError(fmt.Errorf("%w: expected %s token", ports.ErrInvalidToken, kind))
	}
	return claims, nil
}

func (s *Service) revoke(ctx context.Context, token string, kind ports.TokenKind) error {
	claims, err := s.parse(token, kind)
	if err != nil {
		return err
	}
	return s.sessions.Delete(ctx, claims.SessionID)
}

func (s *Service) resolve(ctx context.Context, token string, kind ports.TokenKind) (*domain.User, error) {
	claims, err := s.parse(token, kind)
	if err != nil {
		return nil, err
	}
	ok, err := s.sessions.Exists(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, mapError(ports.ErrInvalidToken)
	}
	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, mapError(ports.ErrInvalidToken)
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}

func (s *Service) startSession(ctx context.Context, user *domain.User) (*ports.LoginResult, error) {
	token, claims, err := s.issue(ctx, user, s.tokens.Issue)
	if err != nil {
		return nil, err
	}
	refresh, refreshClaims, err := s.issue(ctx, user, s.tokens.IssueRefresh)
	if err != nil {
		return nil, err
	}
	return &ports.LoginResult{
		Token:            token,
		ExpiresAt:        claims.ExpiresAt,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshClaims.ExpiresAt,
		User:             user,
	}, nil
}

// issue signs a token with sign and records its session.
func (s *Service) issue(ctx context.Context, user *domain.User, sign func(*domain.User, time.Time) (string, ports.Claims, error)) (string, ports.Claims, error) {
	token, claims, err := sign(user, s.now())
	if err != nil {
		return "", ports.Claims{}, err
	}
	session := ports.Session{ID: claims.SessionID, UserID: user.ID, ExpiresAt: claims.ExpiresAt}
	if err := s.sessions.Save(ctx, session); err != nil {
		return "", ports.Claims{}, err
	}
	return token, claims, nil
}

var _ ports.Service = (*Service)(nil)
