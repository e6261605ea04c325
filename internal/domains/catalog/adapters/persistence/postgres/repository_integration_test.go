//go:build integration

package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogpg "github.com/jakubzimnol/internet-shop/internal/domains/catalog/adapters/persistence/postgres"
	"github.com/jakubzimnol/internet-shop/internal/domains/catalog/domain"
	"github.com/jakubzimnol/internet-shop/internal/domains/catalog/ports"
	"github.com/jakubzimnol/internet-shop/internal/platform/postgres/pgtest"
)

func TestItemRepository_CRUD(t *testing.T) {
	db := pgtest.Start(t)
	repo := catalogpg.NewItemRepository(db)
	ctx := context.Background()

	item, err := domain.NewItem("Mouse", 3000, 3)
	require.NoError(t, err)
	item.ImageURLs = []string{"https://img.example/mouse.png"}

	created, err := repo.Create(ctx, item)
	require.NoError(t, err)
	require.NotZero(t, created.Entity.ID)
	assert.Equal(t, []string{"https://img.example/mouse.png"}, created.Entity.ImageURLs)
	assert.False(t, created.Metadata.CreatedAt.IsZero())

	created.Entity.Description = "wireless"
	require.NoError(t, created.Entity.Reprice(3500))
	updated, err := repo.Update(ctx, created.Entity)
	require.NoError(t, err)
	assert.Equal(t, int64(3500), updated.Entity.Price)
	assert.Equal(t, "wireless", updated.Entity.Description)

	_, err = repo.Create(ctx, &domain.Item{Name: "mouse"})
	assert.ErrorIs(t, err, ports.ErrDuplicateName)

	require.NoError(t, repo.Delete(ctx, created.Entity.ID))
	_, err = repo.GetByID(ctx, created.Entity.ID)
	assert.ErrorIs(t, err, ports.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, created.Entity.ID), ports.ErrNotFound)
}

func TestItemRepository_AdjustAmount(t *testing.T) {
	db := pgtest.Start(t)
	repo := catalogpg.NewItemRepository(db)
	ctx := context.Background()

	item, err := domain.NewItem("Keyboard", 15000, 2)
	require.NoError(t, err)
	created, err := repo.Create(ctx, item)
	require.NoError(t, err)
	id := created.Entity.ID

	adjusted, err := repo.AdjustAmount(ctx, id, -2)
	require.NoError(t, err)
	assert.Equal(t, int32(0), adjusted.Entity.Amount)

	_, err = repo.AdjustAmount(ctx, id, -1)
	assert.ErrorIs(t, err, domain.ErrInsufficientAmount)

	adjusted, err = repo.AdjustAmount(ctx, id, 5)
	require.NoError(t, err)
	assert.Equal(t, int32(5), adjusted.Entity.Amount)

	_, err = repo.AdjustAmount(ctx, id+1000, 1)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestCategoryRepository_ListAndRestrictDelete(t *testing.T) {
	db := pgtest.Start(t)
	categories := catalogpg.NewCategoryRepository(db)
	items := catalogpg.NewItemRepository(db)
	ctx := context.Background()

	parent, err := categories.Create(ctx, &domain.Category{Name: "Electronics"})
	require.NoError(t, err)
	sub, err := categories.Create(ctx, &domain.Category{Name: "Mice", ParentID: &parent.ID})
	require.NoError(t, err)

	top, err := categories.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Electronics", top[0].Name)

	subs, err := categories.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, parent.ID, *subs[0].ParentID)

	item, err := domain.NewItem("Trackball", 9000, 1)
	require.NoError(t, err)
	item.CategoryID, item.SubcategoryID = &parent.ID, &sub.ID
	_, err = items.Create(ctx, item)
	require.NoError(t, err)

	assert.ErrorIs(t, categories.Delete(ctx, sub.ID), ports.ErrInUse)
}
