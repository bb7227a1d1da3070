package subscriptions

// State is the position of a checkout in the purchase flow
type State string

const (
	StateBrowsing             State = "browsing"
	StateAwaitingConfirmation State = "awaiting_confirmation"
	StateProcessing           State = "processing"
	StateCompleted            State = "completed"
	StateFailed               State = "failed"
)

const (
	SuccessMessage        = "Successfully subscribed to plan!"
	DefaultFailureMessage = "Payment failed. Please try again."
)

// Checkout is the purchase state of one session. The selected plan survives a
// failed payment so the user can retry.
type Checkout struct {
	Plan    *Plan  `json:"plan,omitempty"`
	State   State  `json:"state,omitempty"`
	Message string `json:"message,omitempty"`
}

// Reset returns the checkout to browsing with nothing selected
func (c *Checkout) Reset() {
	*c = Checkout{State: StateBrowsing}
}

// Confirming reports whether the payment panel should be shown
func (c Checkout) Confirming() bool {
	switch c.State {
	case StateAwaitingConfirmation, StateProcessing, StateFailed:
		return c.Plan != nil
	}
	return false
}

func (c Checkout) Processing() bool {
	return c.State == StateProcessing
}

func (c Checkout) Succeeded() bool {
	return c.State == StateCompleted
}
