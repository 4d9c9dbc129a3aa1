package redisrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/qazaqtalk/backend/internal/domain"
	"github.com/qazaqtalk/backend/internal/repository"
)

type pendingReviewRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPendingReviewRepository tracks who owes feedback for whom. Entries
// carry a generous TTL so a user who never replies does not hold the
// state forever.
func NewPendingReviewRepository(client *redis.Client, ttl time.Duration) repository.PendingReviewRepository {
	return &pendingReviewRepository{client: client, ttl: ttl}
}

func pendingKey(userID int64) string {
	return fmt.Sprintf("pending_review:%d", userID)
}

func (r *pendingReviewRepository) Set(ctx context.Context, userID, partnerID int64) error {
	if err := r.client.Set(ctx, pendingKey(userID), partnerID, r.ttl).Err(); err != nil {
		return fmt.Errorf("pending.set: %w", err)
	}
	return nil
}

func (r *pendingReviewRepository) Partner(ctx context.Context, userID int64) (int64, error) {
	partnerID, err := r.client.Get(ctx, pendingKey(userID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, domain.ErrNoPendingReview
		}
		return 0, fmt.Errorf("pending.get: %w", err)
	}
	return partnerID, nil
}

func (r *pendingReviewRepository) Clear(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, pendingKey(userID)).Err(); err != nil {
		return fmt.Errorf("pending.clear: %w", err)
	}
	return nil
}
