package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	userdomain "github.com/jakubzimnol/internet-shop/internal/domains/users/domain"
	userports "github.com/jakubzimnol/internet-shop/internal/domains/users/ports"
)

const tracerName = "github.com/jakubzimnol/internet-shop/internal/domains/users/adapters/observability/service"

// Service decorates the user service with tracing, logging, and metrics.
type Service struct {
	inner   userports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wraps the core user service.
func New(inner userports.Service, opts ...Option) userports.Service {
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

func (s *Service) Register(ctx context.Context, input userports.RegisterInput) (*userports.LoginResult, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Register", trace.WithAttributes(
		attribute.String("user.username", input.Username),
		attribute.String("user.role", string(input.Role)),
	))
	defer span.End()
	result, err := s.inner.Register(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to register user", slog.String("username", input.Username))
	}
	s.metrics.recordRegistered(ctx)
	s.logger.LogAttrs(ctx, slog.LevelInfo, "user registered",
		slog.Int64("user.id", result.User.ID), slog.String("role", string(result.User.Role)))
	return result, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (*userports.LoginResult, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Login", trace.WithAttributes(attribute.String("user.username", username)))
	defer span.End()
	result, err := s.inner.Login(ctx, username, password)
	if err != nil {
		s.metrics.recordLoginFailure(ctx)
		return nil, s.handleError(ctx, span, err, "login failed", slog.String("username", username))
	}
	s.metrics.recordLogin(ctx)
	return result, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	ctx, span := s.tracer.Start(ctx, "UserService.Logout")
	defer span.End()
	if err := s.inner.Logout(ctx, token); err != nil {
		return s.handleError(ctx, span, err, "logout failed")
	}
	return nil
}

func (s *Service) LogoutRefresh(ctx context.Context, refreshToken string) error {
	ctx, span := s.tracer.Start(ctx, "UserService.LogoutRefresh")
	defer span.End()
	if err := s.inner.LogoutRefresh(ctx, refreshToken); err != nil {
		return s.handleError(ctx, span, err, "refresh token revocation failed")
	}
	return nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*userports.LoginResult, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Refresh")
	defer span.End()
	result, err := s.inner.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "token refresh failed")
	}
	span.SetAttributes(attribute.Int64("user.id", result.User.ID))
	return result, nil
}

// Authenticate runs on every protected request, so only failures are logged.
func (s *Service) Authenticate(ctx context.Context, token string) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Authenticate")
	defer span.End()
	user, err := s.inner.Authenticate(ctx, token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.LogAttrs(ctx, slog.LevelDebug, "authentication rejected", slog.String("error", err.Error()))
		return nil, err
	}
	span.SetAttributes(attribute.Int64("user.id", user.ID))
	return user, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.GetByID", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()
	return s.inner.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.List")
	defer span.End()
	users, err := s.inner.List(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list users")
	}
	return users, nil
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
	registered    metric.Int64Counter
	logins        metric.Int64Counter
	loginFailures metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	registered, _ := m.Int64Counter("users.service.registered", metric.WithDescription("Number of users registered"))
	logins, _ := m.Int64Counter("users.service.logins", metric.WithDescription("Number of successful logins"))
	failures, _ := m.Int64Counter("users.service.login_failures", metric.WithDescription("Number of rejected logins"))
	return serviceMetrics{registered: registered, logins: logins, loginFailures: failures}
}

func (m serviceMetrics) recordRegistered(ctx context.Context) {
	if m.registered != nil {
		m.registered.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordLogin(ctx context.Context) {
	if m.logins != nil {
		m.logins.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordLoginFailure(ctx context.Context) {
	if m.loginFailures != nil {
		m.loginFailures.Add(ctx, 1)
	}
}

var _ userports.Service = (*Service)(nil)
