package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	portalerrors "github.com/jrsteele09/eshtarek-portal/internal/errors"
	"github.com/jrsteele09/eshtarek-portal/sessions"
	"github.com/jrsteele09/eshtarek-portal/subscriptions"
)

const (
	notTenantOwner  = "Only tenant owners can change the subscription plan"
	unknownPlan     = "The selected plan is no longer available"
	alreadyOnPlan   = "You are already subscribed to this plan"
	selectionFailed = "Unable to select the plan. Please try again."
)

// SelectPlanHandler opens the payment panel for the posted plan (POST /subscriptions/select)
func (s *Server) SelectPlanHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := storeFromContext(r.Context())

		planID, err := strconv.Atoi(r.PostFormValue("plan_id"))
		if err != nil {
			redirectWithError(w, r, RouteHome, subscriptions.ErrNoPlanSelected.Message)
			return
		}

		identity, err := s.accounts.Status(store)
		if err != nil || !identity.IsTenantOwner() {
			redirectWithError(w, r, RouteHome, notTenantOwner)
			return
		}
		if identity.IsCurrentPlan(planID) {
			redirectWithError(w, r, RouteHome, alreadyOnPlan)
			return
		}

		checkout := store.Checkout()
		if checkout.Processing() {
			redirectWithError(w, r, RouteHome, subscriptions.ErrAlreadyProcessing.Message)
			return
		}

		plans, err := s.accounts.Client(store).SubscriptionPlans(r.Context())
		if s.handleSessionExpired(w, r, err) {
			return
		}
		if err != nil {
			redirectWithError(w, r, RouteHome, portalerrors.Message(err, selectionFailed))
			return
		}
		plan, ok := subscriptions.FindPlan(plans, planID)
		if !ok {
			redirectWithError(w, r, RouteHome, unknownPlan)
			return
		}

		s.accounts.PurchaseFlow(store).SelectPlan(&checkout, plan)
		store.SaveCheckout(checkout)
		redirectSuccess(w, r, RouteHome)
	}
}

// PayHandler pays for the selected plan (POST /subscriptions/pay). The outcome
// is kept on the session's checkout and shown by the home page.
func (s *Server) PayHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := storeFromContext(r.Context())
		checkout := store.Checkout()

		// A confirmed payment must reach the users API even if the browser goes away
		ctx := context.WithoutCancel(r.Context())
		err := s.accounts.PurchaseFlow(store).Pay(ctx, &checkout, store)
		if s.handleSessionExpired(w, r, err) {
			return
		}
		if errors.Is(err, subscriptions.ErrNoPlanSelected) || errors.Is(err, subscriptions.ErrAlreadyProcessing) {
			redirectWithError(w, r, RouteHome, portalerrors.Message(err, selectionFailed))
			return
		}
		if err != nil {
			log.Debug().Err(err).Str("session_id", store.ID()).Msg("payment did not complete")
		}
		redirectSuccess(w, r, RouteHome)
	}
}

// CancelCheckoutHandler closes the payment panel (POST /subscriptions/cancel)
func (s *Server) CancelCheckoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := storeFromContext(r.Context())
		cancelCheckout(store)
		redirectSuccess(w, r, RouteHome)
	}
}

func cancelCheckout(store *sessions.Store) {
	checkout := store.Checkout()
	if checkout.Processing() {
		return
	}
	checkout.Reset()
	store.SaveCheckout(checkout)
}
