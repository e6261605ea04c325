package ports

import (
	"context"
	"time"
)

// Session is one issued access token, identified by its JWT id.
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// SessionStore abstracts session persistence. A token is only honoured while
// its session exists and has not expired.
type SessionStore interface {
	Save(ctx context.Context, session Session) error
	Exists(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
	DeleteForUser(ctx context.Context, userID int64) error
	// PurgeExpired removes expired sessions and reports how many went.
	PurgeExpired(ctx context.Context) (int64, error)
}
