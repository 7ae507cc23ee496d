package sector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	selectionKeyPrefix = "portal:sector:"
	selectionTTL       = 30 * 24 * time.Hour
)

// SelectionStore persists each user's last selected sector so a session
// restart lands on the sector the user left.
type SelectionStore interface {
	Load(ctx context.Context, userID uuid.UUID) (string, error)
	Save(ctx context.Context, userID uuid.UUID, sector string) error
}

type redisSelectionStore struct {
	client *redis.Client
}

func NewRedisSelectionStore(client *redis.Client) SelectionStore {
	return &redisSelectionStore{client: client}
}

func (s *redisSelectionStore) Load(ctx context.Context, userID uuid.UUID) (string, error) {
	val, err := s.client.Get(ctx, selectionKeyPrefix+userID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load sector selection: %w", err)
	}
	return val, nil
}

func (s *redisSelectionStore) Save(ctx context.Context, userID uuid.UUID, sector string) error {
	err := s.client.Set(ctx, selectionKeyPrefix+userID.String(), sector, selectionTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to save sector selection: %w", err)
	}
	return nil
}
