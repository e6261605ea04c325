package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/jakubzimnol/internet-shop/internal/domains/users/domain"
	"github.com/jakubzimnol/internet-shop/internal/domains/users/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory user persistence adapter.
type Repository struct {
	mu         sync.RWMutex
	users      map[int64]*domain.User
	byUsername map[string]int64
	nextID     int64
}

func NewRepository() *Repository {
	return &Repository{users: map[int64]*domain.User{}, byUsername: map[string]int64{}}
}

func normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func (r *Repository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if user == nil || user.Username == "" {
		return nil, errors.New("username is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := normalize(user.Username)
	if _, taken := r.byUsername[key]; taken {
		return nil, ports.ErrDuplicateUsername
	}
	r.nextID++
	clone := *user
	clone.ID = r.nextID
	r.users[clone.ID] = &clone
	r.byUsername[key] = clone.ID
	out := clone
	return &out, nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *Repository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUsername[normalize(username)]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *r.users[id]
	return &clone, nil
}

func (r *Repository) List(_ context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.User, 0, len(r.users))
	for _, user := range r.users {
		clone := *user
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}
