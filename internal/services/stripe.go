package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"mahattati/internal/logger"

	"github.com/sony/gobreaker"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
)

var ErrGatewayNotConfigured = errors.New("payment gateway is not configured")

// GatewayIntent: то, что нам нужно от payment intent шлюза.
type GatewayIntent struct {
	ID           string
	ClientSecret string
	Status       string
	AmountMinor  int64
	Currency     string
	Metadata     map[string]string
}

type PaymentGateway interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*GatewayIntent, error)
	RetrieveIntent(ctx context.Context, id string) (*GatewayIntent, error)
}

// StripeError: ответ Stripe с кодом 4xx/5xx.
type StripeError struct {
	Status  int
	Type    string
	Message string
}

func (e *StripeError) Error() string {
	return fmt.Sprintf("stripe: %d %s: %s", e.Status, e.Type, e.Message)
}

type StripeGateway struct {
	secretKey string
	api       *client.API
	cb        *gobreaker.CircuitBreaker
}

func NewStripeGateway(secretKey string) *StripeGateway {
	return newStripeGateway(secretKey, "")
}

// newStripeGateway: baseURL == "" означает боевой API Stripe.
func newStripeGateway(secretKey, baseURL string) *StripeGateway {
	st := gobreaker.Settings{
		Name:        "stripe",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// ошибки клиента (4xx): не повод размыкать цепь
		IsSuccessful: func(err error) bool {
			var se *StripeError
			if errors.As(err, &se) {
				return se.Status < 500
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Log.Warn("circuit breaker state", zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	}

	cfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: 15 * time.Second},
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	}
	if baseURL != "" {
		cfg.URL = stripe.String(baseURL)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, cfg)

	api := &client.API{}
	api.Init(secretKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})

	return &StripeGateway{
		secretKey: secretKey,
		api:       api,
		cb:        gobreaker.NewCircuitBreaker(st),
	}
}

func (g *StripeGateway) Configured() bool {
	return g != nil && g.secretKey != ""
}

func toGatewayIntent(pi *stripe.PaymentIntent) *GatewayIntent {
	return &GatewayIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		AmountMinor:  pi.Amount,
		Currency:     strings.ToUpper(string(pi.Currency)),
		Metadata:     pi.Metadata,
	}
}

// call проводит запрос через circuit breaker и переводит ошибки SDK в StripeError.
func (g *StripeGateway) call(fn func() (*stripe.PaymentIntent, error)) (*GatewayIntent, error) {
	if !g.Configured() {
		return nil, ErrGatewayNotConfigured
	}
	res, err := g.cb.Execute(func() (interface{}, error) {
		pi, err := fn()
		if err != nil {
			var se *stripe.Error
			if errors.As(err, &se) {
				return nil, &StripeError{Status: se.HTTPStatusCode, Type: string(se.Type), Message: se.Msg}
			}
			return nil, err
		}
		return toGatewayIntent(pi), nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*GatewayIntent), nil
}

// CreateIntent: amountMinor в минимальных единицах валюты (халалы, центы).
func (g *StripeGateway) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*GatewayIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(strings.ToLower(currency)),
	}
	params.Context = ctx
	params.SetIdempotencyKey(fmt.Sprintf("mahattati-%s-%d", metadata["payment_id"], time.Now().UnixNano()))
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	return g.call(func() (*stripe.PaymentIntent, error) {
		return g.api.PaymentIntents.New(params)
	})
}

func (g *StripeGateway) RetrieveIntent(ctx context.Context, id string) (*GatewayIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	return g.call(func() (*stripe.PaymentIntent, error) {
		return g.api.PaymentIntents.Get(id, params)
	})
}
