package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jakubzimnol/internet-shop/internal/app/api"
	userpostgres "github.com/jakubzimnol/internet-shop/internal/domains/users/adapters/persistence/postgres"
	platformpostgres "github.com/jakubzimnol/internet-shop/internal/platform/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if cfg.PostgresDSN == "" {
		log.Fatal("POSTGRES_DSN not set; cannot purge sessions")
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	purged, err := userpostgres.NewSessionStore(db).PurgeExpired(ctx)
	if err != nil {
		log.Fatalf("failed to purge sessions: %v", err)
	}
	logger.Info("session purge completed", slog.Int64("purged", purged))
}
