package api

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"go.temporal.io/sdk/client"

	orderkafka "github.com/jakubzimnol/internet-shop/internal/domains/orders/adapters/events/kafka"
	"github.com/jakubzimnol/internet-shop/internal/domains/users/adapters/token"
)

const (
	defaultPayUPath     = "https://secure.snd.payu.com/"
	defaultPayUTimeout  = 10 * time.Second
	defaultCurrencyCode = "PLN"
)

// PayUConfig holds the merchant settings for the payment gateway.
type PayUConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	PosID        string
	// SecondKey signs inbound notifications (the MD5 variable).
	SecondKey string
	Timeout   time.Duration
	Currency  string
}

// Config carries environment-driven settings for the API and worker processes.
type Config struct {
	Port              string
	PostgresDSN       string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
	SessionTTL        time.Duration
	RefreshTTL        time.Duration
	// JWTSecret is only required by processes that issue tokens.
	JWTSecret        string
	PublicBaseURL    string
	KafkaBrokers     []string
	OrderEventsTopic string
	PayU             PayUConfig
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		SessionTTL:        token.DefaultTTL,
		RefreshTTL:        token.DefaultRefreshTTL,
		JWTSecret:         strings.TrimSpace(os.Getenv("JWT_SECRET")),
		PublicBaseURL:     strings.TrimSuffix(strings.TrimSpace(os.Getenv("PUBLIC_BASE_URL")), "/"),
		KafkaBrokers:      orderkafka.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		OrderEventsTopic:  envDefault("ORDER_EVENTS_TOPIC", orderkafka.DefaultTopic),
		PayU: PayUConfig{
			BaseURL:      envDefault("PAYU_PATH", defaultPayUPath),
			ClientID:     strings.TrimSpace(os.Getenv("CLIENT_ID")),
			ClientSecret: strings.TrimSpace(os.Getenv("CLIENT_SECRET")),
			PosID:        strings.TrimSpace(os.Getenv("POS_ID")),
			SecondKey:    strings.TrimSpace(os.Getenv("MD5")),
			Timeout:      defaultPayUTimeout,
			Currency:     strings.ToUpper(envDefault("CURRENCY_CODE", defaultCurrencyCode)),
		},
	}
	var errs []error
	if raw := strings.TrimSpace(os.Getenv("SESSION_TTL_HOURS")); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			errs = append(errs, errors.New("SESSION_TTL_HOURS must be a positive integer"))
		} else {
			cfg.SessionTTL = time.Duration(hours) * time.Hour
		}
	}
	if raw := strings.TrimSpace(os.Getenv("REFRESH_TTL_HOURS")); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			errs = append(errs, errors.New("REFRESH_TTL_HOURS must be a positive integer"))
		} else {
			cfg.RefreshTTL = time.Duration(hours) * time.Hour
		}
	}
	if raw := strings.TrimSpace(os.Getenv("PAYU_TIMEOUT")); raw != "" {
		timeout, err := parseTimeout(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("PAYU_TIMEOUT: %w", err))
		} else {
			cfg.PayU.Timeout = timeout
		}
	}
	if _, err := url.ParseRequestURI(cfg.PayU.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("PAYU_PATH must be an absolute URL: %w", err))
	}
	if cfg.PublicBaseURL != "" {
		if _, err := url.ParseRequestURI(cfg.PublicBaseURL); err != nil {
			errs = append(errs, fmt.Errorf("PUBLIC_BASE_URL must be an absolute URL: %w", err))
		}
	}
	if len(cfg.PayU.Currency) != 3 {
		errs = append(errs, errors.New("CURRENCY_CODE must be a three letter ISO 4217 code"))
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// parseTimeout accepts a Go duration ("15s") or a bare number of seconds.
func parseTimeout(raw string) (time.Duration, error) {
	if seconds, err := strconv.Atoi(raw); err == nil {
		if seconds <= 0 {
			return 0, errors.New("must be positive")
		}
		return time.Duration(seconds) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, errors.New("must be positive")
	}
	return d, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
