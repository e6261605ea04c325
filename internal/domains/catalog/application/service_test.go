package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakubzimnol/internet-shop/internal/domains/catalog/adapters/memory"
	"github.com/jakubzimnol/internet-shop/internal/domains/catalog/application"
	"github.com/jakubzimnol/internet-shop/internal/domains/catalog/domain"
	"github.com/jakubzimnol/internet-shop/internal/domains/catalog/ports"
)

// reservingRepository takes stock between the service's read and its write,
// the way a concurrent checkout would.
type reservingRepository struct {
	*memory.ItemRepository
	reserve int32
}

func (r *reservingRepository) GetByID(ctx context.Context, id int64) (*ports.ItemProjection, error) {
	current, err := r.ItemRepository.GetByID(ctx, id)
	if err != nil || r.reserve == 0 {
		return current, err
	}
	if _, err := r.ItemRepository.AdjustAmount(ctx, id, -r.reserve); err != nil {
		return nil, err
	}
	r.reserve = 0
	return current, nil
}

func ptr[T any](v T) *T { return &v }

func TestUpdateItem_KeepsConcurrentReservation(t *testing.T) {
	repo := &reservingRepository{ItemRepository: memory.NewItemRepository()}
	svc := application.NewService(repo, memory.NewCategoryRepository())
	ctx := context.Background()

	created, err := svc.CreateItem(ctx, application.CreateItemInput{Name: "Mouse", Price: 15000, Amount: 5})
	require.NoError(t, err)

	repo.reserve = 3
	updated, err := svc.UpdateItem(ctx, application.UpdateItemInput{ID: created.Entity.ID, Name: ptr("Wireless mouse")})
	require.NoError(t, err)
	assert.Equal(t, "Wireless mouse", updated.Entity.Name)
	assert.Equal(t, int32(2), updated.Entity.Amount)

	stored, err := svc.GetItem(ctx, created.Entity.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(2), stored.Entity.Amount)
}

func TestUpdateItem_Restock(t *testing.T) {
	svc := application.NewService(memory.NewItemRepository(), memory.NewCategoryRepository())
	ctx := context.Background()

	created, err := svc.CreateItem(ctx, application.CreateItemInput{Name: "Mouse", Price: 15000, Amount: 5})
	require.NoError(t, err)

	updated, err := svc.UpdateItem(ctx, application.UpdateItemInput{ID: created.Entity.ID, Amount: ptr(int32(12)), Price: ptr(int64(14000))})
	require.NoError(t, err)
	assert.Equal(t, int32(12), updated.Entity.Amount)
	assert.Equal(t, int64(14000), updated.Entity.Price)

	_, err = svc.UpdateItem(ctx, application.UpdateItemInput{ID: created.Entity.ID, Amount: ptr(int32(-1))})
	require.ErrorIs(t, err, application.ErrInvalidInput)
	_, err = svc.UpdateItem(ctx, application.UpdateItemInput{ID: created.Entity.ID, Price: ptr(domain.MaxPrice + 1)})
	require.ErrorIs(t, err, application.ErrInvalidInput)

	stored, err := svc.GetItem(ctx, created.Entity.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(12), stored.Entity.Amount)
	assert.Equal(t, int64(14000), stored.Entity.Price)
}
