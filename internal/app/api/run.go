package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	shopserver "github.com/jakubzimnol/internet-shop/go"

	catalogapp "github.com/jakubzimnol/internet-shop/internal/domains/catalog/application"
	orderworkflows "github.com/jakubzimnol/internet-shop/internal/domains/orders/adapters/workflows"
	orderports "github.com/jakubzimnol/internet-shop/internal/domains/orders/ports"
	"github.com/jakubzimnol/internet-shop/internal/platform/metrics"
	platformobservability "github.com/jakubzimnol/internet-shop/internal/platform/observability"
)

const (
	serviceName     = "internet-shop-api"
	metricsPrefix   = "internet_shop"
	shutdownTimeout = 10 * time.Second
)

// Run boots the shop HTTP API with observability, repositories, and workflows
// wired. It returns when ctx is canceled or the server fails.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	storage, closeStorage, err := OpenStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStorage()

	orderService, closeOrders, err := NewOrderService(cfg, storage, instruments)
	if err != nil {
		return err
	}
	defer closeOrders()
	userService, err := NewUserService(cfg, storage, instruments)
	if err != nil {
		return err
	}
	catalogService := catalogapp.NewService(storage.Items, storage.Categories)

	payments, closePayments := paymentOrchestrator(storage, orderService, func() (client.Client, error) {
		return ConnectTemporalClient(cfg, instruments)
	}, logger)
	defer closePayments()

	handlers := shopserver.ApiHandleFunctions{
		Auth:       shopserver.NewAuthenticator(userService),
		UserAPI:    shopserver.NewUserAPI(userService),
		CatalogAPI: shopserver.NewCatalogAPI(catalogService),
		OrderAPI:   shopserver.NewOrderAPI(orderService, payments, cfg.PublicBaseURL),
	}

	httpMetrics := metrics.NewHTTP(metricsPrefix)
	router := gin.New()
	router.Use(
		gin.Recovery(),
		metrics.RequestID(),
		otelgin.Middleware(serviceName),
		httpMetrics.Middleware(),
		requestLogger(logger),
	)
	router.GET("/metrics", gin.WrapH(httpMetrics.Handler()))
	shopserver.NewRouterWithGinEngine(router, handlers)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srvErr := make(chan error, 1)
	go func() {
		logger.Info("shop API listening", slog.String("addr", server.Addr))
		srvErr <- server.ListenAndServe()
	}()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("shop API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
			return err
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping server")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// requestLogger emits one structured line per request.
// paymentOrchestrator hands submissions to Temporal only when orders live in
// PostgreSQL, where the worker process can read them. Memory storage is
// private to this process, so payments stay inline.
func paymentOrchestrator(storage *Storage, orders orderports.Service, connect func() (client.Client, error), logger *slog.Logger) (orderports.PaymentOrchestrator, func()) {
	inline := orderworkflows.NewInlinePaymentWorkflows(orders)
	if !storage.Postgres() {
		logger.Info("Order storage is in memory, submitting payments inline")
		return inline, func() {}
	}
	temporalClient, err := connect()
	if err != nil {
		logger.Warn("Temporal workflows unavailable, submitting payments inline", slog.String("error", err.Error()))
		return inline, func() {}
	}
	logger.Info("Temporal workflows enabled")
	return orderworkflows.NewTemporalPaymentWorkflows(temporalClient), temporalClient.Close
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.LogAttrs(c.Request.Context(), level, "http request",
			slog.String("request.id", metrics.RequestIDFrom(c)),
			slog.String("http.method", c.Request.Method),
			slog.String("http.route", c.FullPath()),
			slog.Int("http.status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	}
}

// ConnectTemporalClient dials Temporal with tracing and structured logging,
// unless TEMPORAL_DISABLED is set.
func ConnectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
