package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/grandnode/mobile-api/internal/core/domain"
)

const checkoutKeyPrefix = "checkout:session:"

// CheckoutStore keeps each identity's checkout session as a JSON value that
// expires after ttl of inactivity.
type CheckoutStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCheckoutStore(client *redis.Client, ttl time.Duration) *CheckoutStore {
	return &CheckoutStore{client: client, ttl: ttl}
}

func (s *CheckoutStore) Get(ctx context.Context, owner uuid.UUID) (*domain.CheckoutSession, error) {
	raw, err := s.client.Get(ctx, s.key(owner)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrCheckoutNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get checkout session: %w", err)
	}

	var sess domain.CheckoutSession
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	return &sess, nil
}

// Save writes the session and restarts its ttl.
func (s *CheckoutStore) Save(ctx context.Context, sess *domain.CheckoutSession) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode checkout session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sess.OwnerID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save checkout session: %w", err)
	}
	return nil
}

func (s *CheckoutStore) Delete(ctx context.Context, owner uuid.UUID) error {
	if err := s.client.Del(ctx, s.key(owner)).Err(); err != nil {
		return fmt.Errorf("delete checkout session: %w", err)
	}
	return nil
}

func (s *CheckoutStore) key(owner uuid.UUID) string {
	return checkoutKeyPrefix + owner.String()
}
