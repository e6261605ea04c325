package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"gorm.io/gorm"

	payuclient "github.com/jakubzimnol/internet-shop/internal/clients/http/payu"
	catalogmemory "github.com/jakubzimnol/internet-shop/internal/domains/catalog/adapters/memory"
	catalogpostgres "github.com/jakubzimnol/internet-shop/internal/domains/catalog/adapters/persistence/postgres"
	catalogports "github.com/jakubzimnol/internet-shop/internal/domains/catalog/ports"
	ordercatalog "github.com/jakubzimnol/internet-shop/internal/domains/orders/adapters/catalog"
	orderkafka "github.com/jakubzimnol/internet-shop/internal/domains/orders/adapters/events/kafka"
	orderpayu "github.com/jakubzimnol/internet-shop/internal/domains/orders/adapters/external/payu"
	ordermemory "github.com/jakubzimnol/internet-shop/internal/domains/orders/adapters/memory"
	ordersobs "github.com/jakubzimnol/internet-shop/internal/domains/orders/adapters/observability"
	orderpostgres "github.com/jakubzimnol/internet-shop/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/jakubzimnol/internet-shop/internal/domains/orders/application"
	orderports "github.com/jakubzimnol/internet-shop/internal/domains/orders/ports"
	usermemory "github.com/jakubzimnol/internet-shop/internal/domains/users/adapters/memory"
	usersobs "github.com/jakubzimnol/internet-shop/internal/domains/users/adapters/observability"
	userpostgres "github.com/jakubzimnol/internet-shop/internal/domains/users/adapters/persistence/postgres"
	"github.com/jakubzimnol/internet-shop/internal/domains/users/adapters/token"
	usersapp "github.com/jakubzimnol/internet-shop/internal/domains/users/application"
	userports "github.com/jakubzimnol/internet-shop/internal/domains/users/ports"
	"github.com/jakubzimnol/internet-shop/internal/platform/memtx"
	"github.com/jakubzimnol/internet-shop/internal/platform/migrations"
	platformobservability "github.com/jakubzimnol/internet-shop/internal/platform/observability"
	platformpostgres "github.com/jakubzimnol/internet-shop/internal/platform/postgres"
)

// Storage groups every repository the processes need, all backed by the
// same database (or the same in-memory unit of work).
type Storage struct {
	DB          *gorm.DB
	UnitOfWork  orderports.UnitOfWork
	Users       userports.Repository
	Sessions    userports.SessionStore
	Items       catalogports.ItemRepository
	Categories  catalogports.CategoryRepository
	Orders      orderports.OrderStore
	Idempotency orderports.IdempotencyStore
}

// Postgres reports whether the storage is durable.
func (s *Storage) Postgres() bool {
	return s.DB != nil
}

// OpenStorage connects to PostgreSQL and migrates the schema. Without a DSN,
// or when the database is unreachable, it falls back to in-memory adapters.
func OpenStorage(ctx context.Context, cfg Config, logger *slog.Logger) (*Storage, func(), error) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory repositories")
		return memoryStorage(), func() {}, nil
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to in-memory repositories", slog.String("error", err.Error()))
		return memoryStorage(), func() {}, nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to in-memory repositories", slog.String("error", err.Error()))
		return memoryStorage(), func() {}, nil
	}
	cleanup := func() { _ = sqlDB.Close() }
	if err := migrations.Run(db.WithContext(ctx)); err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("migrate schema: %w", err)
	}
	logger.Info("repositories configured with postgres")
	return &Storage{
		DB:          db,
		UnitOfWork:  platformpostgres.NewUnitOfWork(db),
		Users:       userpostgres.NewRepository(db),
		Sessions:    userpostgres.NewSessionStore(db),
		Items:       catalogpostgres.NewItemRepository(db),
		Categories:  catalogpostgres.NewCategoryRepository(db),
		Orders:      orderpostgres.NewStore(db),
		Idempotency: orderpostgres.NewIdempotencyStore(db),
	}, cleanup, nil
}

func memoryStorage() *Storage {
	orders := ordermemory.NewStore()
	return &Storage{
		UnitOfWork:  memtx.New(),
		Users:       usermemory.NewRepository(),
		Sessions:    usermemory.NewSessionStore(),
		Items:       catalogmemory.NewItemRepository(catalogmemory.WithItemReferences(orders)),
		Categories:  catalogmemory.NewCategoryRepository(),
		Orders:      orders,
		Idempotency: ordermemory.NewIdempotencyStore(),
	}
}

// NewOrderService wires the order lifecycle with the PayU gateway, the
// notification verifier and, when brokers are configured, Kafka events.
func NewOrderService(cfg Config, storage *Storage, instruments *platformobservability.Instruments) (orderports.Service, func(), error) {
	logger := instruments.Logger
	client, err := payuclient.NewClient(payuclient.Config{
		BaseURL:      cfg.PayU.BaseURL,
		ClientID:     cfg.PayU.ClientID,
		ClientSecret: cfg.PayU.ClientSecret,
		PosID:        cfg.PayU.PosID,
	}, &http.Client{Timeout: cfg.PayU.Timeout})
	if err != nil {
		return nil, func() {}, fmt.Errorf("configure payu client: %w", err)
	}
	if cfg.PayU.ClientID == "" || cfg.PayU.PosID == "" {
		logger.Warn("CLIENT_ID or POS_ID not set, payment submissions will be rejected by the gateway")
	}
	if cfg.PayU.SecondKey == "" {
		logger.Warn("MD5 second key not set, every payment notification will be refused")
	}

	options := []ordersapp.Option{
		ordersapp.WithIdempotencyStore(storage.Idempotency),
		ordersapp.WithLogger(logger),
		ordersapp.WithCurrency(cfg.PayU.Currency),
		ordersapp.WithGatewayTimeout(cfg.PayU.Timeout),
	}
	cleanup := func() {}
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := orderkafka.NewPublisher(cfg.KafkaBrokers, cfg.OrderEventsTopic)
		if err != nil {
			return nil, func() {}, fmt.Errorf("configure kafka publisher: %w", err)
		}
		options = append(options, ordersapp.WithEventPublisher(publisher))
		cleanup = func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("failed to close kafka publisher", slog.String("error", err.Error()))
			}
		}
		logger.Info("order events published to kafka", slog.String("topic", cfg.OrderEventsTopic))
	}

	core := ordersapp.NewService(
		storage.UnitOfWork,
		storage.Orders,
		ordercatalog.NewLedger(storage.Items),
		orderpayu.NewGateway(client, cfg.PayU.PosID),
		orderpayu.NewVerifier(cfg.PayU.SecondKey),
		options...,
	)
	service := ordersobs.New(
		core,
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	return service, cleanup, nil
}

// NewUserService wires registration and JWT-backed sessions.
func NewUserService(cfg Config, storage *Storage, instruments *platformobservability.Instruments) (userports.Service, error) {
	issuer, err := token.NewIssuer(cfg.JWTSecret, cfg.SessionTTL, token.WithRefreshTTL(cfg.RefreshTTL))
	if err != nil {
		return nil, fmt.Errorf("configure token issuer: %w", err)
	}
	core := usersapp.NewService(storage.Users, storage.Sessions, issuer)
	return usersobs.New(
		core,
		usersobs.WithLogger(instruments.Logger),
		usersobs.WithTracer(instruments.Tracer("internal.users.application")),
		usersobs.WithMeter(instruments.Meter("internal.users.application")),
	), nil
}
