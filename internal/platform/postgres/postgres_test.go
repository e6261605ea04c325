package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestConnectRejectsEmptyDSN(t *testing.T) {
	_, err := Connect(context.Background(), "  ")
	require.Error(t, err)
}

func TestConflictClassification(t *testing.T) {
	unique := fmt.Errorf("insert item: %w", &pgconn.PgError{Code: "23505"})
	foreignKey := &pgconn.PgError{Code: "23503"}

	assert.True(t, IsUniqueViolation(unique))
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsForeignKeyViolation(foreignKey))
	assert.True(t, IsForeignKeyViolation(gorm.ErrForeignKeyViolated))
	assert.True(t, IsConflict(foreignKey))
	assert.False(t, IsConflict(errors.New("connection reset")))
	assert.False(t, IsConflict(&pgconn.PgError{Code: "40001"}))
}

func TestWithinTxRequiresDatabase(t *testing.T) {
	var uow *UnitOfWork
	err := uow.WithinTx(context.Background(), func(context.Context) error { return nil })
	require.Error(t, err)
	assert.False(t, InTx(context.Background()))
}
