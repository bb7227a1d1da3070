package payments

import (
	"context"

	portalerrors "github.com/jrsteele09/eshtarek-portal/internal/errors"
)

// StatusSucceeded is the status of a confirmed payment
const StatusSucceeded = "succeeded"

// ErrPaymentDeclined is returned when the gateway refuses to confirm a payment
var ErrPaymentDeclined = portalerrors.NewUserError(portalerrors.ErrPayment, "Payment failed. Please try again.", nil)

// Intent is a single-use authorisation to collect Amount minor currency units
type Intent struct {
	ClientSecret string
	Amount       int64
}

// Payment is a confirmed intent
type Payment struct {
	ID     string
	Status string
}

// Gateway is the payment provider used by the purchase flow
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, amountMinor int64) (*Intent, error)
	ConfirmPayment(ctx context.Context, clientSecret string) (*Payment, error)
}
