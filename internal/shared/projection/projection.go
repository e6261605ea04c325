// Package projection pairs an aggregate with the bookkeeping its store keeps
// about it.
package projection

import "time"

// Metadata holds persistence timestamps, always in UTC.
type Metadata struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewMetadata stamps a freshly stored record.
func NewMetadata(at time.Time) Metadata {
	at = at.UTC()
	return Metadata{CreatedAt: at, UpdatedAt: at}
}

// Touch records a later write. Clock skew never moves UpdatedAt backwards.
func (m *Metadata) Touch(at time.Time) {
	at = at.UTC()
	if at.After(m.UpdatedAt) {
		m.UpdatedAt = at
	}
}

// Projection is a stored entity as a read model: the entity plus Metadata.
type Projection[T any] struct {
	Entity   T
	Metadata Metadata
}

// Of wraps entity with metadata read back from storage.
func Of[T any](entity T, createdAt, updatedAt time.Time) Projection[T] {
	return Projection[T]{
		Entity:   entity,
		Metadata: Metadata{CreatedAt: createdAt.UTC(), UpdatedAt: updatedAt.UTC()},
	}
}
