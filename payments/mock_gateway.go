package payments

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/eshtarek-portal/internal/config"
	"github.com/jrsteele09/eshtarek-portal/internal/metrics"
)

const (
	intentPrefix  = "mock_pi_"
	paymentPrefix = "mock_payment_"
)

// MockGateway simulates a card payment provider. Confirmation succeeds when
// Outcome returns a value below SuccessRate.
type MockGateway struct {
	SuccessRate  float64
	IntentDelay  time.Duration
	ConfirmDelay time.Duration
	Outcome      func() float64
}

// NewMockGateway builds a MockGateway from the payment configuration
func NewMockGateway(cfg config.PaymentConfig) *MockGateway {
	return &MockGateway{
		SuccessRate:  cfg.GetPaymentSuccessRate(),
		IntentDelay:  cfg.GetPaymentIntentDelay(),
		ConfirmDelay: cfg.GetPaymentConfirmDelay(),
		Outcome:      rand.Float64,
	}
}

func (g *MockGateway) CreatePaymentIntent(ctx context.Context, amountMinor int64) (*Intent, error) {
	if amountMinor < 0 {
		return nil, fmt.Errorf("[payments CreatePaymentIntent] invalid amount %d", amountMinor)
	}
	if err := sleep(ctx, g.IntentDelay); err != nil {
		return nil, fmt.Errorf("[payments CreatePaymentIntent] %w", err)
	}

	return &Intent{
		ClientSecret: intentPrefix + shortID(),
		Amount:       amountMinor,
	}, nil
}

func (g *MockGateway) ConfirmPayment(ctx context.Context, clientSecret string) (*Payment, error) {
	if !strings.HasPrefix(clientSecret, intentPrefix) {
		metrics.PaymentsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		return nil, fmt.Errorf("[payments ConfirmPayment] unknown client secret %q", clientSecret)
	}
	if err := sleep(ctx, g.ConfirmDelay); err != nil {
		metrics.PaymentsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		return nil, fmt.Errorf("[payments ConfirmPayment] %w", err)
	}

	outcome := rand.Float64
	if g.Outcome != nil {
		outcome = g.Outcome
	}
	if outcome() >= g.SuccessRate {
		metrics.PaymentsTotal.WithLabelValues(metrics.OutcomeDeclined).Inc()
		log.Info().Str("client_secret", clientSecret).Msg("payment declined")
		return nil, ErrPaymentDeclined
	}

	metrics.PaymentsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return &Payment{
		ID:     paymentPrefix + shortID(),
		Status: StatusSucceeded,
	}, nil
}

// shortID returns the first 9 hex characters of a random UUID
func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
