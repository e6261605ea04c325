package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jakubzimnol/internet-shop/internal/domains/orders/domain"
	"github.com/jakubzimnol/internet-shop/internal/domains/orders/ports"
)

const (
	defaultCurrency       = "PLN"
	defaultLanguage       = "pl"
	defaultGatewayTimeout = 10 * time.Second

	notifyPath = "api/items/notify"
)

// Service orchestrates the order lifecycle: reservation, payment submission
// and notification reconciliation.
type Service struct {
	uow      ports.UnitOfWork
	store    ports.OrderStore
	ledger   ports.InventoryLedger
	gateway  ports.PaymentGateway
	verifier ports.NotificationVerifier

	idempotency    ports.IdempotencyStore
	publisher      ports.EventPublisher
	logger         *slog.Logger
	now            func() time.Time
	currency       string
	language       string
	gatewayTimeout time.Duration

	// submitting holds order ids with a gateway call in flight.
	submitting sync.Map
}

// Option customises the Service.
type Option func(*Service)

// WithIdempotencyStore enables Idempotency-Key handling on CreateOrder.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) { s.idempotency = store }
}

// WithEventPublisher sets where committed events go.
func WithEventPublisher(publisher ports.EventPublisher) Option {
	return func(s *Service) {
		if publisher != nil {
			s.publisher = publisher
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCurrency sets the ISO currency code sent to the gateway.
func WithCurrency(code string) Option {
	return func(s *Service) {
		if code = strings.TrimSpace(code); code != "" {
			s.currency = code
		}
	}
}

// WithGatewayTimeout bounds each outbound gateway submission.
func WithGatewayTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.gatewayTimeout = d
		}
	}
}

func NewService(
	uow ports.UnitOfWork,
	store ports.OrderStore,
	ledger ports.InventoryLedger,
	gateway ports.PaymentGateway,
	verifier ports.NotificationVerifier,
	opts ...Option,
) *Service {
	s := &Service{
		uow:            uow,
		store:          store,
		ledger:         ledger,
		gateway:        gateway,
		verifier:       verifier,
		publisher:      ports.NoopPublisher{},
		logger:         slog.New(slog.DiscardHandler),
		now:            time.Now,
		currency:       defaultCurrency,
		language:       defaultLanguage,
		gatewayTimeout: defaultGatewayTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// replayedOrder aborts a creation transaction when a concurrent request
// already stored the same idempotency key.
type replayedOrder struct {
	orderID int64
}

func (r *replayedOrder) Error() string {
	return fmt.Sprintf("idempotent replay of order %d", r.orderID)
}

// CreateOrder validates the cart, reserves inventory for every line and
// persists the order in one transaction. Any failure leaves stock untouched.
func (s *Service) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	if err := validateCart(input); err != nil {
		return nil, mapError(err)
	}

	var fingerprint string
	if input.IdempotencyKey != "" && s.idempotency != nil {
		hash, err := FingerprintCart(input)
		if err != nil {
			return nil, err
		}
		fingerprint = hash
		existing, err := s.idempotency.Get(ctx, input.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			if existing.RequestHash != fingerprint {
				return nil, ports.ErrIdempotencyConflict
			}
			return s.store.GetByID(ctx, existing.OrderID)
		}
	}

	var created *domain.Order
	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		lines := make([]domain.Line, 0, len(input.Lines))
		for _, cartLine := range input.Lines {
			item, err := s.ledger.Lookup(ctx, cartLine.ItemID)
			if err != nil {
				return err
			}
			lines = append(lines, domain.Line{
				ItemID:    item.ID,
				ItemName:  item.Name,
				UnitPrice: item.Price,
				Quantity:  cartLine.Quantity,
			})
		}
		if _, err := domain.NewOrder(input.Buyer, input.Description, lines); err != nil {
			return err
		}
		for _, reservation := range aggregateLines(input.Lines) {
			if err := s.ledger.Reserve(ctx, reservation.ItemID, int32(reservation.Quantity)); err != nil {
				return err
			}
		}

		order, err := s.store.CreateOrder(ctx, ports.NewOrder{
			Buyer:       input.Buyer,
			Description: input.Description,
			Lines:       lines,
		})
		if err != nil {
			return err
		}

		if fingerprint != "" {
			now := s.now().UTC()
			stored, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{
				Key:         input.IdempotencyKey,
				RequestHash: fingerprint,
				OrderID:     order.ID,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
			if err != nil {
				return err
			}
			if stored.OrderID != order.ID {
				return &replayedOrder{orderID: stored.OrderID}
			}
		}
		created = order
		return nil
	})
	var replay *replayedOrder
	if errors.As(err, &replay) {
		return s.store.GetByID(ctx, replay.orderID)
	}
	if err != nil {
		return nil, mapError(err)
	}

	s.publish(ctx, domain.OrderPlaced{
		BaseEvent: domain.BaseEvent{OrderID: created.ID, Timestamp: s.now().UTC()},
		BuyerID:   created.Buyer.ID,
		Total:     created.Total(),
		Lines:     len(created.Lines),
	})
	return created, nil
}

func validateCart(input ports.CreateOrderInput) error {
	lines := make([]domain.Line, 0, len(input.Lines))
	for _, line := range input.Lines {
		lines = append(lines, domain.Line{ItemID: line.ItemID, Quantity: line.Quantity})
	}
	if _, err := domain.NewOrder(input.Buyer, input.Description, lines); err != nil {
		return err
	}
	for _, reservation := range aggregateLines(input.Lines) {
		if reservation.Quantity > math.MaxInt32 {
			return domain.ErrInvalidQuantity
		}
	}
	return nil
}

// SubmitForPayment requests a payment session and records the gateway order
// id. On gateway failure the order stays NEW without an external id. A
// second call for an order whose submission is still in flight is refused
// before it reaches the gateway.
func (s *Service) SubmitForPayment(ctx context.Context, input ports.SubmitPaymentInput) (*ports.SubmitPaymentResult, error) {
	if _, busy := s.submitting.LoadOrStore(input.OrderID, struct{}{}); busy {
		return nil, fmt.Errorf("%w: submission of order %d in progress", ports.ErrAlreadySubmitted, input.OrderID)
	}
	defer s.submitting.Delete(input.OrderID)

	order, err := s.store.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.HasGatewayOrderID() {
		return nil, ports.ErrAlreadySubmitted
	}
	if order.Status != domain.FulfillmentNew || order.PaymentStatus != domain.PaymentNew {
		return nil, domain.ErrInvalidTransition
	}

	language := input.Language
	if language == "" {
		language = s.language
	}
	base := strings.TrimSuffix(input.BaseURL, "/") + "/"
	req := ports.PaymentRequest{
		BuyerIP:     input.BuyerIP,
		Currency:    s.currency,
		Language:    language,
		NotifyURL:   base + notifyPath,
		ContinueURL: base + "api/orders/" + strconv.FormatInt(order.ID, 10),
	}

	gatewayCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	session, err := s.gateway.SubmitOrder(gatewayCtx, order, req)
	timedOut := errors.Is(gatewayCtx.Err(), context.DeadlineExceeded)
	cancel()
	if err != nil {
		if timedOut && !errors.Is(err, ports.ErrGatewayUnavailable) {
			return nil, fmt.Errorf("%w: %w", ports.ErrGatewayUnavailable, err)
		}
		return nil, err
	}

	updated, err := s.store.RecordGatewayOrderID(ctx, order.ID, session.GatewayOrderID)
	if err != nil {
		return nil, mapError(err)
	}
	return &ports.SubmitPaymentResult{Order: updated, RedirectURI: session.RedirectURI}, nil
}

// Checkout creates the order and immediately submits it for payment. When
// submission fails the created order is still returned alongside the error.
func (s *Service) Checkout(ctx context.Context, order ports.CreateOrderInput, payment ports.SubmitPaymentInput) (*ports.SubmitPaymentResult, error) {
	created, err := s.CreateOrder(ctx, order)
	if err != nil {
		return nil, err
	}
	payment.OrderID = created.ID
	result, err := s.SubmitForPayment(ctx, payment)
	if err != nil {
		return &ports.SubmitPaymentResult{Order: created}, err
	}
	return result, nil
}

type notificationPayload struct {
	Order *struct {
		OrderID string `json:"orderId"`
		Status  string `json:"status"`
	} `json:"order"`
}

func parseNotification(body []byte) (string, string, error) {
	var payload notificationPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", "", fmt.Errorf("%w: %w", ports.ErrMalformedNotification, err)
	}
	if payload.Order == nil {
		return "", "", fmt.Errorf("%w: missing order", ports.ErrMalformedNotification)
	}
	if strings.TrimSpace(payload.Order.OrderID) == "" {
		return "", "", fmt.Errorf("%w: missing orderId", ports.ErrMalformedNotification)
	}
	if strings.TrimSpace(payload.Order.Status) == "" {
		return "", "", fmt.Errorf("%w: missing status", ports.ErrMalformedNotification)
	}
	return payload.Order.OrderID, payload.Order.Status, nil
}

// HandleNotification authenticates a gateway callback and applies the
// reported payment status. Verification happens before any lookup, and
// replaying a notification leaves the order and stock unchanged.
func (s *Service) HandleNotification(ctx context.Context, notification ports.Notification) (*ports.NotificationResult, error) {
	if err := s.verifier.Verify(notification.Headers, notification.Body); err != nil {
		return nil, err
	}
	gatewayOrderID, rawStatus, err := parseNotification(notification.Body)
	if err != nil {
		return nil, err
	}

	result := &ports.NotificationResult{}
	err = s.uow.WithinTx(ctx, func(ctx context.Context) error {
		order, err := s.store.FindByGatewayOrderID(ctx, gatewayOrderID)
		if err != nil {
			return err
		}
		status, err := domain.ParsePaymentStatus(rawStatus)
		if err != nil {
			return err
		}
		plan := order.PlanPayment(status)
		result.Order, result.Transition = order, plan
		if !plan.Apply {
			return nil
		}
		updated, err := s.store.ApplyPaymentStatus(ctx, order.ID, status)
		if err != nil {
			return err
		}
		if plan.Release {
			for _, line := range order.Lines {
				err := s.ledger.Release(ctx, line.ItemID, line.Quantity)
				if errors.Is(err, ports.ErrItemNotFound) {
					s.logger.WarnContext(ctx, "released item no longer exists",
						slog.Int64("order.id", order.ID),
						slog.Int64("item.id", line.ItemID))
					continue
				}
				if err != nil {
					return err
				}
			}
		}
		result.Order = updated
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}

	if result.Transition.Apply {
		s.publish(ctx, domain.PaymentStatusChanged{
			BaseEvent:         domain.BaseEvent{OrderID: result.Order.ID, Timestamp: s.now().UTC()},
			GatewayOrderID:    gatewayOrderID,
			From:              result.Transition.From,
			To:                result.Transition.To,
			Fulfillment:       result.Order.Status,
			InventoryReleased: result.Transition.Release,
		})
	}
	return result, nil
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context, buyerID int64) ([]*domain.Order, error) {
	return s.store.ListByBuyer(ctx, buyerID)
}

// AdvanceFulfillment moves a paid order to SEND or FINISHED.
func (s *Service) AdvanceFulfillment(ctx context.Context, orderID int64, status domain.FulfillmentStatus) (*domain.Order, error) {
	var (
		updated *domain.Order
		from    domain.FulfillmentStatus
	)
	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		order, err := s.store.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		from = order.Status
		if err := order.Advance(status); err != nil {
			return err
		}
		updated, err = s.store.UpdateFulfillment(ctx, orderID, order.Status)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, domain.FulfillmentStatusChanged{
		BaseEvent: domain.BaseEvent{OrderID: orderID, Timestamp: s.now().UTC()},
		From:      from,
		To:        updated.Status,
	})
	return updated, nil
}

// publish runs after commit; delivery failures are logged and never undo state.
func (s *Service) publish(ctx context.Context, event domain.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "publish order event failed",
			slog.String("event", event.EventName()),
			slog.Int64("order.id", event.AggregateID()),
			slog.String("error", err.Error()))
	}
}

var _ ports.Service = (*Service)(nil)
