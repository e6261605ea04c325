package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/jakubzimnol/internet-shop/internal/app/api"
	orderactivities "github.com/jakubzimnol/internet-shop/internal/durable/temporal/activities/orders"
	orderworkflows "github.com/jakubzimnol/internet-shop/internal/durable/temporal/workflows/orders"
	platformobservability "github.com/jakubzimnol/internet-shop/internal/platform/observability"
)

func main() {
	ctx := context.Background()
	const serviceName = "internet-shop-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	storage, closeStorage, err := api.OpenStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStorage()
	if !storage.Postgres() {
		logger.Warn("worker is running on in-memory storage; orders created by the API are not visible here")
	}

	orderService, closeOrders, err := api.NewOrderService(cfg, storage, instruments)
	if err != nil {
		logger.Error("failed to build order service", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeOrders()
	paymentActivities := orderactivities.NewActivities(orderService)

	temporalClient, err := api.ConnectTemporalClient(cfg, instruments)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.PaymentSubmissionTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.PaymentSubmissionWorkflow, workflow.RegisterOptions{Name: orderworkflows.PaymentSubmissionWorkflowName})
	w.RegisterActivityWithOptions(paymentActivities.SubmitForPayment, activity.RegisterOptions{Name: orderactivities.SubmitForPaymentActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.PaymentSubmissionTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
