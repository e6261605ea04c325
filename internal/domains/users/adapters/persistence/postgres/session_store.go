package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	userports "github.com/jakubzimnol/internet-shop/internal/domains/users/ports"
)

// SessionStore persists user sessions in PostgreSQL.
type SessionStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSessionStore wires a PostgreSQL-backed session store. Caller owns DB lifecycle.
func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{db: db, now: time.Now}
}

type sessionRecord struct {
	ID        string      `gorm:"primaryKey;column:id;size:64"`
	UserID    int64       `gorm:"column:user_id;index;not null"`
	User      *userRecord `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	ExpiresAt time.Time   `gorm:"column:expires_at;index;not null"`
	CreatedAt time.Time   `gorm:"column:created_at"`
}

func (sessionRecord) TableName() string { return "user_sessions" }

func (s *SessionStore) Save(ctx context.Context, session userports.Session) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if strings.TrimSpace(session.ID) == "" || session.UserID == 0 {
		return errors.New("session id and user are required")
	}
	rec := sessionRecord{ID: session.ID, UserID: session.UserID, ExpiresAt: session.ExpiresAt}
	return s.db.WithContext(ctx).Omit("User").Create(&rec).Error
}

func (s *SessionStore) Exists(ctx context.Context, id string) (bool, error) {
	if err := s.ensureDB(); err != nil {
		return false, err
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&sessionRecord{}).
		Where("id = ? AND expires_at > ?", id, s.now()).
		Count(&count).Error
	return count > 0, err
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&sessionRecord{}, "id = ?", id).Error
}

func (s *SessionStore) DeleteForUser(ctx context.Context, userID int64) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&sessionRecord{}, "user_id = ?", userID).Error
}

// PurgeExpired removes all expired sessions. Use for housekeeping or cron.
func (s *SessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	result := s.db.WithContext(ctx).Where("expires_at <= ?", s.now()).Delete(&sessionRecord{})
	return result.RowsAffected, result.Error
}

func (s *SessionStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres session store not configured")
	}
	return nil
}

var _ userports.SessionStore = (*SessionStore)(nil)
