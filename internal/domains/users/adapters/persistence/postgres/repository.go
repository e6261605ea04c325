package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/jakubzimnol/internet-shop/internal/domains/users/domain"
	"github.com/jakubzimnol/internet-shop/internal/domains/users/ports"
	pgplatform "github.com/jakubzimnol/internet-shop/internal/platform/postgres"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists users in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB
// lifecycle and schema (see AutoMigrate).
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AutoMigrate creates the users and user_sessions tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&userRecord{}, &sessionRecord{})
}

type userRecord struct {
	ID           int64     `gorm:"primaryKey;column:id"`
	Username     string    `gorm:"column:username;size:80;not null;uniqueIndex"`
	Email        string    `gorm:"column:email;size:120"`
	FirstName    string    `gorm:"column:first_name;size:80"`
	LastName     string    `gorm:"column:last_name;size:80"`
	PasswordHash string    `gorm:"column:password_hash;size:128"`
	Role         string    `gorm:"column:role;type:varchar(16);not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userRecord) TableName() string { return "users" }

// Create inserts a user. Usernames compare case-insensitively.
func (r *Repository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user is nil")
	}
	conn := pgplatform.Conn(ctx, r.db)
	var count int64
	if err := conn.Model(&userRecord{}).Where("lower(username) = lower(?)", user.Username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ports.ErrDuplicateUsername
	}
	record := toRecord(user)
	record.ID = 0
	if err := conn.Create(&record).Error; err != nil {
		if pgplatform.IsUniqueViolation(err) {
			return nil, ports.ErrDuplicateUsername
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record userRecord
	if err := pgplatform.Conn(ctx, r.db).First(&record, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return record.toDomain(), nil
}

// GetByUsername fetches a user by username.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	username = strings.TrimSpace(username)
	var record userRecord
	if err := pgplatform.Conn(ctx, r.db).First(&record, "lower(username) = lower(?)", username).Error; err != nil {
		return nil, translate(err)
	}
	return record.toDomain(), nil
}

// List returns all users.
func (r *Repository) List(ctx context.Context) ([]*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []userRecord
	if err := pgplatform.Conn(ctx, r.db).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	users := make([]*domain.User, 0, len(records))
	for i := range records {
		users = append(users, records[i].toDomain())
	}
	return users, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres user repository not configured")
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ports.ErrNotFound
	}
	return err
}

func toRecord(user *domain.User) userRecord {
	return userRecord{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		PasswordHash: user.PasswordHash,
		Role:         string(user.Role),
	}
}

func (r userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		PasswordHash: r.PasswordHash,
		Role:         domain.Role(r.Role),
	}
}
