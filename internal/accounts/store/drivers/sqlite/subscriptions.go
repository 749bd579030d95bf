package sqlite

import (
	"context"
	"time"

	"github.com/tubeworks/accounts/internal/accounts/domain"
)

type subscriptionsRepo struct {
	q querier
}

func (r *subscriptionsRepo) CreateSubscription(ctx context.Context, s domain.Subscription) error {
	now := time.Now().UTC()
	if !s.CreatedAt.IsZero() {
		now = s.CreatedAt
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO subscriptions (id, channel_id, subscriber_id, created_at)
		VALUES (?, ?, ?, ?)
	`, s.ID, s.ChannelID, s.SubscriberID, now)
	return mapConflict(err)
}

func (r *subscriptionsRepo) DeleteSubscription(ctx context.Context, channelID, subscriberID string) error {
	_, err := r.q.ExecContext(ctx, `
		DELETE FROM subscriptions
		WHERE channel_id = ? AND subscriber_id = ?
	`, channelID, subscriberID)
	return err
}

func (r *subscriptionsRepo) CountSubscribers(ctx context.Context, channelID string) (int64, error) {
	var n int64
	err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(1)
		FROM subscriptions
		WHERE channel_id = ?
	`, channelID).Scan(&n)
	return n, err
}

func (r *subscriptionsRepo) CountSubscriptions(ctx context.Context, subscriberID string) (int64, error) {
	var n int64
	err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(1)
		FROM subscriptions
		WHERE subscriber_id = ?
	`, subscriberID).Scan(&n)
	return n, err
}

func (r *subscriptionsRepo) IsSubscribed(ctx context.Context, channelID, subscriberID string) (bool, error) {
	var n int64
	err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(1)
		FROM subscriptions
		WHERE channel_id = ? AND subscriber_id = ?
	`, channelID, subscriberID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
