package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/mateoquiroga/agencydesk-backend/api/middleware"
	"github.com/mateoquiroga/agencydesk-backend/api/responses"
	"github.com/mateoquiroga/agencydesk-backend/api/validators"
	"github.com/mateoquiroga/agencydesk-backend/internal/billing"
	"github.com/mateoquiroga/agencydesk-backend/pkg/db/models"
	pkgerrors "github.com/mateoquiroga/agencydesk-backend/pkg/errors"
	"github.com/mateoquiroga/agencydesk-backend/pkg/logger"
)

// BillingUserLookup resolves the caller's email for the checkout session.
type BillingUserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// BillingCheckout opens a hosted checkout session for the subscription plan.
func BillingCheckout(svc billing.Service, users BillingUserLookup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		email := ""
		if users != nil {
			if user, err := users.FindByID(r.Context(), userID); err == nil {
				email = user.Email
			}
		}

		redirect, err := svc.CreateCheckout(r.Context(), userID, email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, redirect)
	}
}

type billingPortalRequest struct {
	CustomerID string `json:"customerId" validate:"required"`
}

// BillingPortal opens the provider's self-service portal for a customer.
func BillingPortal(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		var body billingPortalRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		redirect, err := svc.CustomerPortal(r.Context(), body.CustomerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, redirect)
	}
}

// BillingSubscription reports whether the caller's subscription is active.
func BillingSubscription(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		status, err := svc.CheckSubscription(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}
