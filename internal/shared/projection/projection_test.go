package projection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTouchNeverMovesBackwards(t *testing.T) {
	warsaw := time.FixedZone("CET", 3600)
	created := time.Date(2026, 10, 16, 12, 0, 0, 0, warsaw)
	meta := NewMetadata(created)
	assert.Equal(t, time.UTC, meta.CreatedAt.Location())

	meta.Touch(created.Add(-time.Minute))
	assert.True(t, meta.UpdatedAt.Equal(created))

	meta.Touch(created.Add(time.Hour))
	assert.True(t, meta.UpdatedAt.Equal(created.Add(time.Hour)))
	assert.True(t, meta.CreatedAt.Equal(created))
}

func TestOf(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p := Of("item", at, at.Add(time.Second))
	assert.Equal(t, "item", p.Entity)
	assert.Equal(t, time.Second, p.Metadata.UpdatedAt.Sub(p.Metadata.CreatedAt))
}
