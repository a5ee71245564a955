package models

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionRecord is one active price line item held by a user. A user may
// hold several records at once (multi-item subscriptions); the set is unique
// on (user_id, stripe_subscription_id, stripe_price_id).
type SubscriptionRecord struct {
	ID                   uuid.UUID `json:"id" db:"id"`
	UserID               int64     `json:"user_id" db:"user_id"`
	StripeSubscriptionID string    `json:"stripe_subscription_id" db:"stripe_subscription_id"`
	StripePriceID        string    `json:"stripe_price_id" db:"stripe_price_id"`
	StripeProductID      string    `json:"stripe_product_id" db:"stripe_product_id"`
	Status               string    `json:"status" db:"status"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
}
