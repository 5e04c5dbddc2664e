package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"trimline/internal/infra"
	"trimline/internal/notification"
)

type PushSubscriptionRepository struct {
	pool *pgxpool.Pool
}

func NewPushSubscriptionRepository(pool *pgxpool.Pool) *PushSubscriptionRepository {
	return &PushSubscriptionRepository{pool: pool}
}

// Save upserts by endpoint: re-registering from the same browser replaces the
// keys instead of duplicating the row.
func (r *PushSubscriptionRepository) Save(ctx context.Context, sub notification.Subscription) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO push_subscriptions (endpoint, customer_id, p256dh, auth)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (endpoint) DO UPDATE
		SET customer_id = EXCLUDED.customer_id,
		    p256dh = EXCLUDED.p256dh,
		    auth = EXCLUDED.auth`,
		sub.Endpoint, sub.CustomerID, sub.P256DH, sub.Auth)
	if err != nil {
		return infra.WrapRepoErr("failed to save push subscription", err)
	}
	return nil
}

func (r *PushSubscriptionRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]notification.Subscription, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT endpoint, customer_id, p256dh, auth
		FROM push_subscriptions
		WHERE customer_id = $1`, customerID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query push subscriptions", err)
	}
	defer rows.Close()

	var out []notification.Subscription
	for rows.Next() {
		var sub notification.Subscription
		if err := rows.Scan(&sub.Endpoint, &sub.CustomerID, &sub.P256DH, &sub.Auth); err != nil {
			return nil, infra.WrapRepoErr("failed to scan push subscription", err)
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate push subscriptions", err)
	}
	return out, nil
}

func (r *PushSubscriptionRepository) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	if _, err := r.pool.Exec(ctx, `
		DELETE FROM push_subscriptions WHERE endpoint = $1`, endpoint); err != nil {
		return infra.WrapRepoErr("failed to delete push subscription", err)
	}
	return nil
}
