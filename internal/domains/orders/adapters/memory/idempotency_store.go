package memory

import (
	"context"
	"sync"

	"github.com/jakubzimnol/internet-shop/internal/domains/orders/ports"
	"github.com/jakubzimnol/internet-shop/internal/platform/memtx"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore keeps idempotency keys in memory.
type IdempotencyStore struct {
	mu      sync.RWMutex
	records map[string]ports.IdempotencyRecord
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{records: map[string]ports.IdempotencyRecord{}}
}

func (s *IdempotencyStore) Get(_ context.Context, key string) (*ports.IdempotencyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.records[record.Key]; ok {
		if existing.RequestHash != record.RequestHash {
			return &existing, ports.ErrIdempotencyConflict
		}
		return &existing, nil
	}
	s.records[record.Key] = record
	key := record.Key
	memtx.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.records, key)
	})
	return &record, nil
}
