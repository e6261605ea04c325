//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	userspg "github.com/jakubzimnol/internet-shop/internal/domains/users/adapters/persistence/postgres"
	"github.com/jakubzimnol/internet-shop/internal/domains/users/domain"
	"github.com/jakubzimnol/internet-shop/internal/domains/users/ports"
	"github.com/jakubzimnol/internet-shop/internal/platform/postgres/pgtest"
)

func TestRepository_CreateAndGet(t *testing.T) {
	db := pgtest.Start(t)
	repo := userspg.NewRepository(db)
	ctx := context.Background()

	user, err := domain.NewUser("alice", "alice@example.com", "secret", domain.RoleSeller)
	require.NoError(t, err)
	user.FirstName, user.LastName = "Alice", "Doe"

	saved, err := repo.Create(ctx, user)
	require.NoError(t, err)
	require.NotZero(t, saved.ID)

	byName, err := repo.GetByUsername(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, byName.ID)
	assert.Equal(t, domain.RoleSeller, byName.Role)
	assert.True(t, byName.CheckPassword("secret"))

	byID, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Doe", byID.DisplayName())

	_, err = repo.GetByID(ctx, saved.ID+100)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_DuplicateUsername(t *testing.T) {
	db := pgtest.Start(t)
	repo := userspg.NewRepository(db)
	ctx := context.Background()

	first, err := domain.NewUser("bob", "", "secret", domain.RoleBuyer)
	require.NoError(t, err)
	_, err = repo.Create(ctx, first)
	require.NoError(t, err)

	second, err := domain.NewUser("Bob", "", "secret", domain.RoleBuyer)
	require.NoError(t, err)
	_, err = repo.Create(ctx, second)
	assert.ErrorIs(t, err, ports.ErrDuplicateUsername)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSessionStore_Lifecycle(t *testing.T) {
	db := pgtest.Start(t)
	repo := userspg.NewRepository(db)
	sessions := userspg.NewSessionStore(db)
	ctx := context.Background()

	user, err := domain.NewUser("carol", "", "secret", domain.RoleBuyer)
	require.NoError(t, err)
	saved, err := repo.Create(ctx, user)
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, sessions.Save(ctx, ports.Session{ID: "live", UserID: saved.ID, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, sessions.Save(ctx, ports.Session{ID: "stale", UserID: saved.ID, ExpiresAt: now.Add(-time.Hour)}))

	ok, err := sessions.Exists(ctx, "live")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = sessions.Exists(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, ok)

	purged, err := sessions.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	require.NoError(t, sessions.Delete(ctx, "live"))
	ok, err = sessions.Exists(ctx, "live")
	require.NoError(t, err)
	assert.False(t, ok)
}
