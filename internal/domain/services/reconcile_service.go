package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/samber/lo"
	"github.com/stripe/stripe-go/v79"

	"github.com/will8688/sealog-cloud-webhook/internal/domain/models"
	"github.com/will8688/sealog-cloud-webhook/internal/domain/repositories"
)

// SubscriptionSyncer reconciles local subscription state against Stripe's
// view of the customer.
type SubscriptionSyncer interface {
	Reconcile(ctx context.Context, userID int64, stripeSubID string) error
	ReconcileInvoiceSubscription(ctx context.Context, stripeSubID string) error
	MarkPaymentFailed(ctx context.Context, stripeSubID string) error
}

type ReconcileService struct {
	gateway StripeGateway
	users   repositories.UserRepository
	subs    repositories.SubscriptionRepository
	logger  *slog.Logger

	// Per-user locks so two webhook deliveries for the same user cannot
	// interleave their delete/insert sequences. Entries are never reclaimed;
	// the map grows with the number of distinct paying users.
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewReconcileService(gateway StripeGateway, users repositories.UserRepository, subs repositories.SubscriptionRepository, logger *slog.Logger) *ReconcileService {
	return &ReconcileService{
		gateway: gateway,
		users:   users,
		subs:    subs,
		logger:  logger,
		locks:   make(map[int64]*sync.Mutex),
	}
}

// Reconcile replaces the user's stored subscription rows with a fresh snapshot
// of the customer's active subscriptions. The subscription ID is only used to
// look up the owning Stripe customer; the snapshot is the source of truth, so
// out-of-order or duplicated webhook deliveries converge on the same state.
func (s *ReconcileService) Reconcile(ctx context.Context, userID int64, stripeSubID string) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	sub, err := s.gateway.GetSubscription(ctx, stripeSubID)
	if err != nil {
		return fmt.Errorf("failed to resolve subscription %s: %w", stripeSubID, err)
	}

	if sub.Customer == nil || sub.Customer.ID == "" {
		return fmt.Errorf("subscription %s has no customer", stripeSubID)
	}
	customerID := sub.Customer.ID

	if err := s.users.SetStripeCustomerID(ctx, userID, customerID); err != nil {
		return fmt.Errorf("failed to store customer id for user %d: %w", userID, err)
	}

	active, err := s.gateway.ListActiveSubscriptions(ctx, customerID)
	if err != nil {
		return fmt.Errorf("failed to list active subscriptions for customer %s: %w", customerID, err)
	}

	records := lo.FlatMap(active, func(sub *stripe.Subscription, _ int) []*models.SubscriptionRecord {
		return recordsFromSubscription(userID, sub)
	})

	if err := s.subs.ReplaceForUser(ctx, userID, records); err != nil {
		return fmt.Errorf("failed to replace subscriptions for user %d: %w", userID, err)
	}

	status := models.UserStatusCanceled
	if len(records) > 0 {
		status = models.UserStatusActive
	}
	if err := s.users.SetSubscriptionStatus(ctx, userID, status); err != nil {
		return fmt.Errorf("failed to update status for user %d: %w", userID, err)
	}

	s.logger.Info("reconciled subscriptions",
		"user_id", userID,
		"customer_id", customerID,
		"records", len(records),
		"status", status)

	return nil
}

// ReconcileInvoiceSubscription resolves the subscription referenced by an
// invoice to its owning user and reconciles. Subscriptions without a user_id
// in metadata are skipped; not every Stripe event carries application IDs.
func (s *ReconcileService) ReconcileInvoiceSubscription(ctx context.Context, stripeSubID string) error {
	userID, ok, err := s.lookupUserID(ctx, stripeSubID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	return s.Reconcile(ctx, userID, stripeSubID)
}

// MarkPaymentFailed stamps the payment-failed label on the owning user without
// touching the subscriptions table; the next successful event reconciles fully.
func (s *ReconcileService) MarkPaymentFailed(ctx context.Context, stripeSubID string) error {
	userID, ok, err := s.lookupUserID(ctx, stripeSubID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if err := s.users.SetSubscriptionStatus(ctx, userID, models.UserStatusPaymentFailed); err != nil {
		return fmt.Errorf("failed to mark payment failure for user %d: %w", userID, err)
	}

	s.logger.Info("marked payment failure", "user_id", userID, "stripe_subscription_id", stripeSubID)
	return nil
}

func (s *ReconcileService) lookupUserID(ctx context.Context, stripeSubID string) (int64, bool, error) {
	sub, err := s.gateway.GetSubscription(ctx, stripeSubID)
	if err != nil {
		return 0, false, fmt.Errorf("failed to resolve subscription %s: %w", stripeSubID, err)
	}

	raw, exists := sub.Metadata["user_id"]
	if !exists || raw == "" {
		s.logger.Warn("subscription has no user_id metadata, skipping", "stripe_subscription_id", stripeSubID)
		return 0, false, nil
	}

	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.logger.Warn("subscription has malformed user_id metadata, skipping",
			"stripe_subscription_id", stripeSubID, "user_id", raw)
		return 0, false, nil
	}

	return userID, true, nil
}

func (s *ReconcileService) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, exists := s.locks[userID]
	if !exists {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

func recordsFromSubscription(userID int64, sub *stripe.Subscription) []*models.SubscriptionRecord {
	if sub.Items == nil {
		return nil
	}

	records := make([]*models.SubscriptionRecord, 0, len(sub.Items.Data))
	for _, item := range sub.Items.Data {
		if item.Price == nil {
			continue
		}

		productID := ""
		if item.Price.Product != nil {
			productID = item.Price.Product.ID
		}

		records = append(records, &models.SubscriptionRecord{
			UserID:               userID,
			StripeSubscriptionID: sub.ID,
			StripePriceID:        item.Price.ID,
			StripeProductID:      productID,
			Status:               string(sub.Status),
		})
	}
	return records
}
