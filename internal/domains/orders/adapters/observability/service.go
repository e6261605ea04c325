package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	orderdomain "github.com/jakubzimnol/internet-shop/internal/domains/orders/domain"
	orderports "github.com/jakubzimnol/internet-shop/internal/domains/orders/ports"
)

const tracerName = "github.com/jakubzimnol/internet-shop/internal/domains/orders/adapters/observability/service"

// Service decorates the order service with tracing, logging, and metrics.
type Service struct {
	inner   orderports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core order service.
func New(inner orderports.Service, opts ...Option) orderports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.DiscardHandler),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

func (s *Service) CreateOrder(ctx context.Context, input orderports.CreateOrderInput) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CreateOrder", trace.WithAttributes(
		attribute.Int64("order.buyer_id", input.Buyer.ID),
		attribute.Int("order.lines", len(input.Lines)),
		attribute.Bool("order.idempotent", input.IdempotencyKey != ""),
	))
	defer span.End()

	s.logInfo(ctx, "creating order", slog.Int64("buyer.id", input.Buyer.ID), slog.Int("lines", len(input.Lines)))
	order, err := s.inner.CreateOrder(ctx, input)
	if err != nil {
		s.metrics.recordCreated(ctx, err)
		return nil, s.handleError(ctx, span, err, "failed to create order", slog.Int64("buyer.id", input.Buyer.ID))
	}
	s.metrics.recordCreated(ctx, nil)
	span.SetAttributes(attribute.Int64("order.id", order.ID), attribute.Int64("order.total", order.Total()))
	s.logInfo(ctx, "order created", slog.Int64("order.id", order.ID), slog.Int64("order.total", order.Total()))
	return order, nil
}

func (s *Service) SubmitForPayment(ctx context.Context, input orderports.SubmitPaymentInput) (*orderports.SubmitPaymentResult, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.SubmitForPayment", trace.WithAttributes(attribute.Int64("order.id", input.OrderID)))
	defer span.End()

	s.logInfo(ctx, "submitting order for payment", slog.Int64("order.id", input.OrderID))
	result, err := s.inner.SubmitForPayment(ctx, input)
	s.metrics.recordSubmission(ctx, err)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "payment submission failed", slog.Int64("order.id", input.OrderID))
	}
	span.SetAttributes(attribute.String("order.gateway_order_id", result.Order.GatewayOrderID))
	s.logInfo(ctx, "order submitted for payment",
		slog.Int64("order.id", input.OrderID),
		slog.String("gateway.order_id", result.Order.GatewayOrderID))
	return result, nil
}

// Checkout keeps the partial result the inner service returns when payment
// submission fails after the order was created.
func (s *Service) Checkout(ctx context.Context, order orderports.CreateOrderInput, payment orderports.SubmitPaymentInput) (*orderports.SubmitPaymentResult, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Checkout", trace.WithAttributes(attribute.Int64("order.buyer_id", order.Buyer.ID)))
	defer span.End()

	result, err := s.inner.Checkout(ctx, order, payment)
	if result != nil && result.Order != nil {
		span.SetAttributes(attribute.Int64("order.id", result.Order.ID))
		s.metrics.recordCreated(ctx, nil)
	}
	if err != nil {
		if result != nil && result.Order != nil {
			s.metrics.recordSubmission(ctx, err)
		}
		return result, s.handleError(ctx, span, err, "checkout failed", slog.Int64("buyer.id", order.Buyer.ID))
	}
	s.metrics.recordSubmission(ctx, nil)
	s.logInfo(ctx, "checkout completed", slog.Int64("order.id", result.Order.ID))
	return result, nil
}

func (s *Service) HandleNotification(ctx context.Context, notification orderports.Notification) (*orderports.NotificationResult, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.HandleNotification", trace.WithAttributes(attribute.Int("notification.size", len(notification.Body))))
	defer span.End()

	result, err := s.inner.HandleNotification(ctx, notification)
	if err != nil {
		s.metrics.recordNotification(ctx, "error")
		return nil, s.handleError(ctx, span, err, "notification rejected")
	}
	outcome := "ignored"
	if result.Transition.Apply {
		outcome = "applied"
	}
	s.metrics.recordNotification(ctx, outcome)
	span.SetAttributes(
		attribute.Int64("order.id", result.Order.ID),
		attribute.String("payment.from", string(result.Transition.From)),
		attribute.String("payment.to", string(result.Transition.To)),
	)
	s.logInfo(ctx, "notification handled",
		slog.Int64("order.id", result.Order.ID),
		slog.String("payment.status", string(result.Transition.To)),
		slog.String("outcome", outcome),
		slog.Bool("inventory.released", result.Transition.Release))
	return result, nil
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrder", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := s.inner.GetOrder(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.Int64("order.id", id))
	}
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context, buyerID int64) ([]*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListOrders", trace.WithAttributes(attribute.Int64("order.buyer_id", buyerID)))
	defer span.End()

	orders, err := s.inner.ListOrders(ctx, buyerID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders", slog.Int64("buyer.id", buyerID))
	}
	span.SetAttributes(attribute.Int("order.count", len(orders)))
	return orders, nil
}

func (s *Service) AdvanceFulfillment(ctx context.Context, orderID int64, status orderdomain.FulfillmentStatus) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.AdvanceFulfillment", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.String("order.status", string(status)),
	))
	defer span.End()

	order, err := s.inner.AdvanceFulfillment(ctx, orderID, status)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to advance fulfillment", slog.Int64("order.id", orderID))
	}
	s.logInfo(ctx, "fulfillment advanced", slog.Int64("order.id", orderID), slog.String("status", string(order.Status)))
	return order, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	return err
}

type serviceMetrics struct {
	ordersCreated      metric.Int64Counter
	notifications      metric.Int64Counter
	paymentSubmissions metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("orders.service.orders_created", metric.WithDescription("Number of order creation attempts"))
	notifications, _ := m.Int64Counter("orders.service.notifications", metric.WithDescription("Number of payment notifications received"))
	submissions, _ := m.Int64Counter("orders.service.payment_submissions", metric.WithDescription("Number of payment submissions"))
	return serviceMetrics{ordersCreated: created, notifications: notifications, paymentSubmissions: submissions}
}

func (m serviceMetrics) recordCreated(ctx context.Context, err error) {
	if m.ordersCreated != nil {
		m.ordersCreated.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", err == nil)))
	}
}

func (m serviceMetrics) recordSubmission(ctx context.Context, err error) {
	if m.paymentSubmissions != nil {
		m.paymentSubmissions.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", err == nil)))
	}
}

func (m serviceMetrics) recordNotification(ctx context.Context, outcome string) {
	if m.notifications != nil {
		m.notifications.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

var _ orderports.Service = (*Service)(nil)
