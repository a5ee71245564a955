package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/will8688/sealog-cloud-webhook/internal/domain/models"
	"github.com/will8688/sealog-cloud-webhook/internal/domain/repositories"
)

type subscriptionRepository struct {
	db *DB
}

func NewSubscriptionRepository(db *DB) repositories.SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.SubscriptionRecord, error) {
	var records []*models.SubscriptionRecord
	query := r.db.Rebind(`
		SELECT id, user_id, stripe_subscription_id, stripe_price_id, stripe_product_id, status, created_at
		FROM subscriptions
		WHERE user_id = ?
		ORDER BY created_at`)

	if err := r.db.SelectContext(ctx, &records, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	return records, nil
}

// ReplaceForUser swaps the user's full subscription row set inside a single
// transaction so readers never observe the intermediate empty state.
func (r *subscriptionRepository) ReplaceForUser(ctx context.Context, userID int64, records []*models.SubscriptionRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	deleteQuery := r.db.Rebind(`DELETE FROM subscriptions WHERE user_id = ?`)
	if _, err := tx.ExecContext(ctx, deleteQuery, userID); err != nil {
		return fmt.Errorf("failed to delete subscriptions for user %d: %w", userID, err)
	}

	insertQuery := r.db.Rebind(`
		INSERT INTO subscriptions (id, user_id, stripe_subscription_id, stripe_price_id, stripe_product_id, status)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, stripe_subscription_id, stripe_price_id) DO NOTHING`)

	for _, rec := range records {
		if rec.ID == uuid.Nil {
			rec.ID = uuid.New()
		}

		if _, err := tx.ExecContext(ctx, insertQuery,
			rec.ID, userID, rec.StripeSubscriptionID, rec.StripePriceID, rec.StripeProductID, rec.Status); err != nil {
			return fmt.Errorf("failed to insert subscription %s: %w", rec.StripeSubscriptionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit subscription replacement: %w", err)
	}

	return nil
}
