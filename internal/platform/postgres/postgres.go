// Package postgres holds the shared GORM connection and transaction plumbing
// used by the shop's PostgreSQL adapters.
package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// PoolOptions bounds the connection pool. Zero values keep database/sql
// defaults.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultPool suits one API or worker process.
var DefaultPool = PoolOptions{
	MaxOpenConns:    20,
	MaxIdleConns:    5,
	ConnMaxLifetime: 30 * time.Minute,
}

const pingTimeout = 5 * time.Second

// Connect opens dsn with DefaultPool and pings it.
func Connect(ctx context.Context, dsn string) (*gorm.DB, error) {
	return ConnectWithPool(ctx, dsn, DefaultPool)
}

// ConnectWithPool opens dsn, applies pool and pings the server. Driver
// errors are translated so adapters can match gorm.ErrDuplicatedKey and
// gorm.ErrForeignKeyViolated. Timestamps are written in UTC.
func ConnectWithPool(ctx context.Context, dsn string, pool PoolOptions) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres DSN is empty")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}
