package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/stripe/stripe-go/v79"

	"github.com/will8688/sealog-cloud-webhook/internal/domain/models"
	"github.com/will8688/sealog-cloud-webhook/internal/domain/repositories"
)

type CheckoutRequest struct {
	PriceID    string
	UserID     int64  // 0 when the visitor is anonymous
	SuccessURL string // optional, defaults derived from BaseURL
	CancelURL  string
}

type BillingService interface {
	GetPriceDetails(ctx context.Context, priceID string) (*models.PriceDetails, error)
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (url, sessionID string, err error)
}

type CheckoutService struct {
	gateway StripeGateway
	users   repositories.UserRepository
	baseURL string
	logger  *slog.Logger
}

func NewCheckoutService(gateway StripeGateway, users repositories.UserRepository, baseURL string, logger *slog.Logger) *CheckoutService {
	return &CheckoutService{
		gateway: gateway,
		users:   users,
		baseURL: baseURL,
		logger:  logger,
	}
}

// GetPriceDetails fetches a price and its product from Stripe and maps them
// into the display view used by the pricing page.
func (s *CheckoutService) GetPriceDetails(ctx context.Context, priceID string) (*models.PriceDetails, error) {
	p, err := s.gateway.GetPrice(ctx, priceID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price %s: %w", priceID, err)
	}

	details := &models.PriceDetails{
		PriceID:    p.ID,
		UnitAmount: p.UnitAmount,
		Currency:   string(p.Currency),
		OneTime:    p.Recurring == nil,
	}

	if p.Recurring != nil {
		details.Interval = string(p.Recurring.Interval)
		details.IntervalCount = p.Recurring.IntervalCount
		details.TrialDays = p.Recurring.TrialPeriodDays
	}

	if p.Product != nil && p.Product.ID != "" {
		prod, err := s.gateway.GetProduct(ctx, p.Product.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch product for price %s: %w", priceID, err)
		}
		details.ProductName = prod.Name
		details.Description = prod.Description
	}

	return details, nil
}

// CreateCheckoutSession opens a subscription-mode hosted checkout for the
// price. The user_id travels in both session metadata and subscription
// metadata; the webhook handler reads the latter when reconciling.
func (s *CheckoutService) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, string, error) {
	if req.PriceID == "" {
		return "", "", fmt.Errorf("price_id is required")
	}

	successURL := req.SuccessURL
	if successURL == "" {
		successURL = fmt.Sprintf("%s/billing/plans?subscription_success=true&price_id=%s", s.baseURL, req.PriceID)
	}
	cancelURL := req.CancelURL
	if cancelURL == "" {
		cancelURL = fmt.Sprintf("%s/billing/plans?subscription_cancelled=true", s.baseURL)
	}

	metadata := map[string]string{"price_id": req.PriceID}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
	}

	if req.UserID > 0 {
		userIDStr := strconv.FormatInt(req.UserID, 10)
		metadata["user_id"] = userIDStr
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"user_id": userIDStr},
		}

		user, err := s.users.GetByID(ctx, req.UserID)
		if err != nil {
			return "", "", fmt.Errorf("failed to get user: %w", err)
		}

		// Reuse the known Stripe customer when we have one; otherwise hand
		// Stripe the email so checkout is prefilled.
		if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
			params.Customer = stripe.String(*user.StripeCustomerID)
		} else if user.Email != "" {
			params.CustomerEmail = stripe.String(user.Email)
		}
	}
	// Anonymous checkout is allowed; Stripe collects the email itself. The
	// resulting webhook events carry no user_id and are skipped downstream.

	params.Metadata = metadata

	sess, err := s.gateway.CreateCheckoutSession(ctx, params)
	if err != nil {
		return "", "", err
	}

	s.logger.Info("created checkout session", "session_id", sess.ID, "price_id", req.PriceID, "user_id", req.UserID)
	return sess.URL, sess.ID, nil
}
