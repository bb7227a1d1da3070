package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	portalerrors "github.com/jrsteele09/eshtarek-portal/internal/errors"
	"github.com/jrsteele09/eshtarek-portal/subscriptions"
	"github.com/jrsteele09/eshtarek-portal/token"
)

const (
	loadUserFailed  = "Failed to load user information"
	loadPlansFailed = "Failed to load subscription plans"
	mockCardNumber  = "4242 4242 4242 4242"
)

// PlanView is a catalogue entry as shown to the tenant owner
type PlanView struct {
	subscriptions.Plan
	Current bool
}

// HomePageData contains data for rendering the home page
type HomePageData struct {
	Title       string
	Error       string
	Message     string
	Identity    *token.Identity
	Plans       []PlanView
	ShowPlans   bool
	Checkout    subscriptions.Checkout
	CurrentPlan *subscriptions.Plan
	Downgrade   bool
	CardNumber  string
}

// HomeHandler renders the account page (GET /home)
func (s *Server) HomeHandler() http.HandlerFunc {
	homeTmpl := mustParseTemplate("home.html")

	return func(w http.ResponseWriter, r *http.Request) {
		store := storeFromContext(r.Context())
		data := HomePageData{
			Title:      "Home",
			Error:      r.URL.Query().Get("error"),
			Message:    r.URL.Query().Get("message"),
			CardNumber: mockCardNumber,
		}

		identity, err := s.accounts.Status(store)
		if err != nil {
			log.Warn().Err(err).Msg("session carries an unreadable access token")
			data.Error = loadUserFailed
			render(w, homeTmpl, data)
			return
		}
		if identity.Role == token.RoleAdmin {
			redirectSuccess(w, r, s.accounts.AdminURL())
			return
		}
		data.Identity = identity

		checkout := store.Checkout()
		if checkout.Succeeded() {
			// The confirmation is shown once, then the catalogue is browsable again
			data.Message = checkout.Message
			checkout.Reset()
			store.SaveCheckout(checkout)
		}
		data.Checkout = checkout

		if identity.IsTenantOwner() {
			plans, err := s.accounts.Client(store).SubscriptionPlans(r.Context())
			if s.handleSessionExpired(w, r, err) {
				return
			}
			if err != nil {
				log.Err(err).Msg("failed to load subscription plans")
				data.Error = portalerrors.Message(err, loadPlansFailed)
			}

			data.ShowPlans = true
			for _, plan := range plans {
				data.Plans = append(data.Plans, PlanView{Plan: plan, Current: identity.IsCurrentPlan(plan.ID)})
			}
			if identity.HasSubscription() {
				if current, ok := subscriptions.FindPlan(plans, identity.Subscription.PlanID); ok {
					data.CurrentPlan = &current
				}
			}
			if checkout.Plan != nil {
				data.Downgrade = subscriptions.IsDowngrade(data.CurrentPlan, *checkout.Plan)
			}
		}

		render(w, homeTmpl, data)
	}
}
