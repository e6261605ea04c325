package ports

import (
	"context"
	"time"

	"github.com/jakubzimnol/internet-shop/internal/domains/users/domain"
)

// RegisterInput carries the registration form.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      domain.Role
}

// LoginResult is returned on successful authentication. A token refresh
// leaves RefreshToken empty.
type LoginResult struct {
	Token            string
	ExpiresAt        time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
	User             *domain.User
}

// Service exposes user bounded context use cases to adapters.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*LoginResult, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	// Refresh exchanges a live refresh token for a new access token.
	Refresh(ctx context.Context, refreshToken string) (*LoginResult, error)
	LogoutRefresh(ctx context.Context, refreshToken string) error
	Authenticate(ctx context.Context, token string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}
