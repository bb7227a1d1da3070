package subscriptions

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Plan is a subscription plan from the catalogue. Plans are read-only.
type Plan struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	Features    string          `json:"features,omitempty"` // comma-delimited
	MaxUsers    int             `json:"max_users"`
}

// FeatureList splits Features into trimmed, non-empty entries
func (p Plan) FeatureList() []string {
	var features []string
	for _, f := range strings.Split(p.Features, ",") {
		if f = strings.TrimSpace(f); f != "" {
			features = append(features, f)
		}
	}
	return features
}

// AmountMinor is the price in minor currency units (cents)
func (p Plan) AmountMinor() int64 {
	return p.Price.Shift(2).Round(0).IntPart()
}

// FindPlan returns the plan with id from plans
func FindPlan(plans []Plan, id int) (Plan, bool) {
	for _, p := range plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

// IsDowngrade reports whether moving from current to next lowers the user limit
func IsDowngrade(current *Plan, next Plan) bool {
	return current != nil && current.MaxUsers > next.MaxUsers
}

// Result is the users API response to a subscription change. A new token pair
// is only issued when both Access and Refresh are present.
type Result struct {
	Access  string `json:"access,omitempty"`
	Refresh string `json:"refresh,omitempty"`
	Message string `json:"message,omitempty"`
}

func (r *Result) HasTokens() bool {
	return r != nil && r.Access != "" && r.Refresh != ""
}
