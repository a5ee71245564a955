package models

import (
	"time"
)

// SubscriptionStatus labels carried on the users table. Free-text by design;
// these are the values this service writes.
const (
	UserStatusActive        = "active"
	UserStatusCanceled      = "canceled"
	UserStatusPaymentFailed = "payment_failed"
)

type User struct {
	ID                 int64     `json:"id" db:"id"`
	Username           string    `json:"username" db:"username"`
	Email              string    `json:"email" db:"email"`
	StripeCustomerID   *string   `json:"stripe_customer_id" db:"stripe_customer_id"`
	SubscriptionStatus string    `json:"subscription_status" db:"subscription_status"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}
