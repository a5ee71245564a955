package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/will8688/sealog-cloud-webhook/internal/domain/models"
	"github.com/will8688/sealog-cloud-webhook/internal/domain/repositories"
)

type userRepository struct {
	db *DB
}

func NewUserRepository(db *DB) repositories.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	query := r.db.Rebind(`SELECT id, username, email, stripe_customer_id, subscription_status, created_at, updated_at
	          FROM users WHERE id = ?`)

	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user with id %d not found", id)
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

func (r *userRepository) SetStripeCustomerID(ctx context.Context, id int64, customerID string) error {
	query := r.db.Rebind(`UPDATE users SET stripe_customer_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, customerID, id)
	if err != nil {
		return fmt.Errorf("failed to set stripe customer id: %w", err)
	}

	return requireRow(result, id)
}

func (r *userRepository) SetSubscriptionStatus(ctx context.Context, id int64, status string) error {
	query := r.db.Rebind(`UPDATE users SET subscription_status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to set subscription status: %w", err)
	}

	return requireRow(result, id)
}

func requireRow(result sql.Result, userID int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user with id %d not found", userID)
	}
	return nil
}
