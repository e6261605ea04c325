package ports

import (
	"context"
	"errors"

	"github.com/jakubzimnol/internet-shop/internal/domains/users/domain"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Repository persists user accounts. Usernames are unique case-insensitively.
type Repository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}
