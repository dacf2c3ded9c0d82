package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spendlog/spendlog/internal/apperrors"
	"github.com/spendlog/spendlog/internal/core/domain"
	portsrepo "github.com/spendlog/spendlog/internal/core/ports/repositories"
)

const subscriptionColumns = `subscription_id, user_id, name, amount, billing_cycle, next_billing_date, category, flow_type, auto_pay, wallet_id, created_at, created_by, last_updated_at, last_updated_by`

type PgxSubscriptionRepository struct {
	BaseRepository
}

// newPgxSubscriptionRepository creates a new repository for subscription data.
func newPgxSubscriptionRepository(pool *pgxpool.Pool) portsrepo.SubscriptionRepository {
	return &PgxSubscriptionRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.SubscriptionRepository = (*PgxSubscriptionRepository)(nil)

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := row.Scan(
		&sub.SubscriptionID,
		&sub.UserID,
		&sub.Name,
		&sub.Amount,
		&sub.BillingCycle,
		&sub.NextBillingDate,
		&sub.Category,
		&sub.Type,
		&sub.AutoPay,
		&sub.WalletID,
		&sub.CreatedAt,
		&sub.CreatedBy,
		&sub.LastUpdatedAt,
		&sub.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// SaveSubscription inserts a new subscription.
func (r *PgxSubscriptionRepository) SaveSubscription(ctx context.Context, sub domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (` + subscriptionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.Pool.Exec(ctx, query,
		sub.SubscriptionID,
		sub.UserID,
		sub.Name,
		sub.Amount,
		sub.BillingCycle,
		sub.NextBillingDate,
		sub.Category,
		sub.Type,
		sub.AutoPay,
		sub.WalletID,
		sub.CreatedAt,
		sub.CreatedBy,
		sub.LastUpdatedAt,
		sub.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: subscription with ID %s already exists", apperrors.ErrDuplicate, sub.SubscriptionID)
		}
		return fmt.Errorf("failed to save subscription %s: %w", sub.SubscriptionID, err)
	}
	return nil
}

// FindSubscriptionByID retrieves a subscription by its ID.
func (r *PgxSubscriptionRepository) FindSubscriptionByID(ctx context.Context, subscriptionID string) (*domain.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE subscription_id = $1;
	`
	sub, err := scanSubscription(r.Pool.QueryRow(ctx, query, subscriptionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find subscription by ID %s: %w", subscriptionID, err)
	}
	return sub, nil
}

// ListSubscriptions retrieves all subscriptions owned by a user, soonest due first.
func (r *PgxSubscriptionRepository) ListSubscriptions(ctx context.Context, userID string) ([]domain.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE user_id = $1
		ORDER BY next_billing_date, name;
	`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions for user %s: %w", userID, err)
	}
	defer rows.Close()

	subs := []domain.Subscription{}
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription row for user %s: %w", userID, err)
		}
		subs = append(subs, *sub)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating subscription rows for user %s: %w", userID, rows.Err())
	}

	return subs, nil
}

// UpdateSubscription updates the mutable fields of an existing subscription.
func (r *PgxSubscriptionRepository) UpdateSubscription(ctx context.Context, sub domain.Subscription) error {
	query := `
		UPDATE subscriptions
		SET name = $2, amount = $3, billing_cycle = $4, next_billing_date = $5, category = $6, flow_type = $7, auto_pay = $8, wallet_id = $9, last_updated_at = $10, last_updated_by = $11
		WHERE subscription_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		sub.SubscriptionID,
		sub.Name,
		sub.Amount,
		sub.BillingCycle,
		sub.NextBillingDate,
		sub.Category,
		sub.Type,
		sub.AutoPay,
		sub.WalletID,
		sub.LastUpdatedAt,
		sub.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update subscription %s: %w", sub.SubscriptionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteSubscription removes a subscription row.
func (r *PgxSubscriptionRepository) DeleteSubscription(ctx context.Context, subscriptionID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM subscriptions WHERE subscription_id = $1;`, subscriptionID)
	if err != nil {
		return fmt.Errorf("failed to delete subscription %s: %w", subscriptionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateNextBillingDate persists an advanced due date after billing.
func (r *PgxSubscriptionRepository) UpdateNextBillingDate(ctx context.Context, subscriptionID string, next time.Time, userID string, now time.Time) error {
	query := `
		UPDATE subscriptions
		SET next_billing_date = $2, last_updated_at = $3, last_updated_by = $4
		WHERE subscription_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, subscriptionID, next, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update next billing date for subscription %s: %w", subscriptionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListDueAutoPayUserIDs returns the distinct owners of auto-pay subscriptions
// due on or before asOf.
func (r *PgxSubscriptionRepository) ListDueAutoPayUserIDs(ctx context.Context, asOf time.Time) ([]string, error) {
	query := `
		SELECT DISTINCT user_id
		FROM subscriptions
		WHERE auto_pay = TRUE AND next_billing_date <= $1;
	`
	rows, err := r.Pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query due auto-pay users: %w", err)
	}
	defer rows.Close()

	userIDs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan due auto-pay user row: %w", err)
		}
		userIDs = append(userIDs, id)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating due auto-pay user rows: %w", rows.Err())
	}

	return userIDs, nil
}
