package repositories

import (
	"context"

	"github.com/will8688/sealog-cloud-webhook/internal/domain/models"
)

type SubscriptionRepository interface {
	ListByUserID(ctx context.Context, userID int64) ([]*models.SubscriptionRecord, error)

	// ReplaceForUser deletes every record held by the user and inserts the
	// given snapshot in one transaction. Duplicate-key inserts are no-ops.
	ReplaceForUser(ctx context.Context, userID int64, records []*models.SubscriptionRecord) error
}
