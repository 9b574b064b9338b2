package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/mateoquiroga/agencydesk-backend/pkg/config"
	"github.com/mateoquiroga/agencydesk-backend/pkg/db/models"
	pkgerrors "github.com/mateoquiroga/agencydesk-backend/pkg/errors"
)

// RedirectResponse carries the provider-hosted URL the frontend navigates to.
type RedirectResponse struct {
	URL string `json:"url"`
}

// SubscriptionStatus summarizes the user's subscription for the dashboard.
type SubscriptionStatus struct {
	Active bool   `json:"active"`
	Status string `json:"status"`
}

type subscriptionRepository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
}

// Service proxies checkout, portal, and subscription lookups to the provider.
type Service interface {
	CreateCheckout(ctx context.Context, userID uuid.UUID, email string) (*RedirectResponse, error)
	CustomerPortal(ctx context.Context, customerID string) (*RedirectResponse, error)
	CheckSubscription(ctx context.Context, userID uuid.UUID) (*SubscriptionStatus, error)
}

type service struct {
	subs   subscriptionRepository
	client StripeBillingClient
	cfg    config.StripeConfig
}

// NewService wires the billing proxy.
func NewService(subs subscriptionRepository, client StripeBillingClient, cfg config.StripeConfig) (Service, error) {
	if subs == nil {
		return nil, fmt.Errorf("subscription repository required")
	}
	if client == nil {
		return nil, fmt.Errorf("stripe client required")
	}
	if cfg.SubscriptionPriceID == "" {
		return nil, fmt.Errorf("subscription price id required")
	}
	return &service{subs: subs, client: client, cfg: cfg}, nil
}

// CreateCheckout opens a subscription checkout session for the user.
func (s *service) CreateCheckout(ctx context.Context, userID uuid.UUID, email string) (*RedirectResponse, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:        stripe.String(s.cfg.CheckoutSuccessURL),
		CancelURL:         stripe.String(s.cfg.CheckoutCancelURL),
		ClientReferenceID: stripe.String(userID.String()),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.cfg.SubscriptionPriceID),
				Quantity: stripe.Int64(1),
			},
		},
	}
	if email != "" {
		params.CustomerEmail = stripe.String(email)
	}

	session, err := s.client.NewCheckoutSession(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}
	return &RedirectResponse{URL: session.URL}, nil
}

// CustomerPortal opens the provider's self-service portal for a customer.
func (s *service) CustomerPortal(ctx context.Context, customerID string) (*RedirectResponse, error) {
	if customerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	session, err := s.client.NewPortalSession(ctx, &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(s.cfg.PortalReturnURL),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create portal session")
	}
	return &RedirectResponse{URL: session.URL}, nil
}

// CheckSubscription reads the local mirror of provider subscription state.
func (s *service) CheckSubscription(ctx context.Context, userID uuid.UUID) (*SubscriptionStatus, error) {
	sub, err := s.subs.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &SubscriptionStatus{Active: false, Status: "none"}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}

	active := sub.Status == string(stripe.SubscriptionStatusActive) ||
		sub.Status == string(stripe.SubscriptionStatusTrialing)
	return &SubscriptionStatus{Active: active, Status: sub.Status}, nil
}
