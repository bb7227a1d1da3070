package subscriptions

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	portalerrors "github.com/jrsteele09/eshtarek-portal/internal/errors"
	"github.com/jrsteele09/eshtarek-portal/internal/metrics"
	"github.com/jrsteele09/eshtarek-portal/payments"
)

var (
	ErrNoPlanSelected    = portalerrors.NewUserError(portalerrors.ErrValidation, "Please choose a plan first.", nil)
	ErrAlreadyProcessing = portalerrors.NewUserError(portalerrors.ErrValidation, "A payment is already being processed.", nil)
)

// Subscriber changes the tenant's subscription on the users API
type Subscriber interface {
	CreateSubscription(ctx context.Context, planID int, paymentID string) (*Result, error)
}

// TokenReplacer swaps the session's token pair in one step
type TokenReplacer interface {
	Replace(access, refresh string)
}

// CheckoutSaver is implemented by token stores that also persist the checkout.
// Pay saves every state transition through it.
type CheckoutSaver interface {
	SaveCheckout(c Checkout)
}

// Flow drives a plan purchase: payment intent, confirmation, then the
// subscription change.
type Flow struct {
	gateway       payments.Gateway
	subscriber    Subscriber
	refreshStatus func(ctx context.Context) error
}

// NewFlow creates a purchase flow. refreshStatus, when not nil, runs after a
// new token pair has been stored.
func NewFlow(gateway payments.Gateway, subscriber Subscriber, refreshStatus func(ctx context.Context) error) *Flow {
	return &Flow{
		gateway:       gateway,
		subscriber:    subscriber,
		refreshStatus: refreshStatus,
	}
}

// SelectPlan records plan on c and waits for the user to confirm
func (f *Flow) SelectPlan(c *Checkout, plan Plan) {
	c.Plan = &plan
	c.State = StateAwaitingConfirmation
	c.Message = ""
}

// Pay buys the selected plan. Each step starts only after the previous one
// succeeded. On failure c is Failed with a displayable message, the plan stays
// selected and the tokens are left alone.
func (f *Flow) Pay(ctx context.Context, c *Checkout, tokens TokenReplacer) error {
	if c.Plan == nil {
		return ErrNoPlanSelected
	}
	if c.Processing() {
		return ErrAlreadyProcessing
	}

	c.State = StateProcessing
	c.Message = ""
	save(tokens, c)

	// A panic must not leave Processing saved on the session
	defer func() {
		if r := recover(); r != nil {
			c.State = StateFailed
			c.Message = DefaultFailureMessage
			save(tokens, c)
			panic(r)
		}
	}()

	if err := f.pay(ctx, *c.Plan, tokens); err != nil {
		c.State = StateFailed
		c.Message = portalerrors.Message(err, DefaultFailureMessage)
		save(tokens, c)
		log.Warn().Err(err).Int("plan_id", c.Plan.ID).Msg("plan purchase failed")
		return err
	}

	c.State = StateCompleted
	c.Message = SuccessMessage
	save(tokens, c)
	log.Info().Int("plan_id", c.Plan.ID).Str("plan", c.Plan.Name).Msg("plan purchased")
	return nil
}

func (f *Flow) pay(ctx context.Context, plan Plan, tokens TokenReplacer) error {
	intent, err := f.gateway.CreatePaymentIntent(ctx, plan.AmountMinor())
	if err != nil {
		return fmt.Errorf("[subscriptions Pay] create payment intent: %w", err)
	}

	payment, err := f.gateway.ConfirmPayment(ctx, intent.ClientSecret)
	if err != nil {
		return fmt.Errorf("[subscriptions Pay] confirm payment: %w", err)
	}

	result, err := f.subscriber.CreateSubscription(ctx, plan.ID, payment.ID)
	if err != nil {
		metrics.SubscriptionChangesTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		return fmt.Errorf("[subscriptions Pay] create subscription: %w", err)
	}
	metrics.SubscriptionChangesTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()

	if !result.HasTokens() {
		return nil
	}
	tokens.Replace(result.Access, result.Refresh)

	if f.refreshStatus != nil {
		if err := f.refreshStatus(ctx); err != nil {
			log.Warn().Err(err).Msg("session status refresh after subscription change failed")
		}
	}
	return nil
}

func save(tokens TokenReplacer, c *Checkout) {
	if saver, ok := tokens.(CheckoutSaver); ok {
		saver.SaveCheckout(*c)
	}
}
