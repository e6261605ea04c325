package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jakubzimnol/internet-shop/internal/domains/orders/ports"
	pgplatform "github.com/jakubzimnol/internet-shop/internal/platform/postgres"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore persists idempotency keys in PostgreSQL.
type IdempotencyStore struct {
	db *gorm.DB
}

// NewIdempotencyStore wires a PostgreSQL-backed idempotency store.
func NewIdempotencyStore(db *gorm.DB) *IdempotencyStore {
	return &IdempotencyStore{db: db}
}

// Get loads a record by key, returning nil when absent.
func (s *IdempotencyStore) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record idempotencyRecord
	if err := pgplatform.Conn(ctx, s.db).First(&record, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toPortRecord(&record), nil
}

// Save inserts the record. ON CONFLICT DO NOTHING keeps the surrounding
// transaction usable when a concurrent request already claimed the key; the
// stored record is then returned, with ErrIdempotencyConflict when its hash
// differs.
func (s *IdempotencyStore) Save(ctx context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	dbRecord := toDBRecord(record)
	result := pgplatform.Conn(ctx, s.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "key"}}, DoNothing: true}).
		Create(&dbRecord)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 1 {
		return toPortRecord(&dbRecord), nil
	}
	existing, err := s.Get(ctx, record.Key)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errors.New("idempotency key vanished after conflict")
	}
	if existing.RequestHash != record.RequestHash {
		return existing, ports.ErrIdempotencyConflict
	}
	return existing, nil
}

func (s *IdempotencyStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres idempotency store not configured")
	}
	return nil
}

type idempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128"`
	OrderID     int64     `gorm:"column:order_id;index"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (idempotencyRecord) TableName() string { return "order_idempotency_keys" }

func toDBRecord(rec ports.IdempotencyRecord) idempotencyRecord {
	return idempotencyRecord{
		Key:         rec.Key,
		RequestHash: rec.RequestHash,
		OrderID:     rec.OrderID,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}

func toPortRecord(rec *idempotencyRecord) *ports.IdempotencyRecord {
	if rec == nil {
		return nil
	}
	return &ports.IdempotencyRecord{
		Key:         rec.Key,
		RequestHash: rec.RequestHash,
		OrderID:     rec.OrderID,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}
