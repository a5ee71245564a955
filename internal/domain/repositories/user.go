package repositories

import (
	"context"

	"github.com/will8688/sealog-cloud-webhook/internal/domain/models"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	SetStripeCustomerID(ctx context.Context, id int64, customerID string) error
	SetSubscriptionStatus(ctx context.Context, id int64, status string) error
}
