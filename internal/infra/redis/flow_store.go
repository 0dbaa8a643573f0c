package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/lendenpay/portal/internal/module/agentflow"
)

const flowKeyPrefix = "flow:"

// FlowStore implements agentflow.Store on Redis. The TTL passed to Save
// doubles as the flow's storage lifetime, so abandoned flows clean
// themselves up.
type FlowStore struct {
	client *redis.Client
}

// NewFlowStore creates a Redis flow store
func NewFlowStore(client *redis.Client) *FlowStore {
	return &FlowStore{client: client}
}

// Save persists a flow with the given lifetime
func (s *FlowStore) Save(ctx context.Context, f *agentflow.Flow, ttl time.Duration) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal flow: %w", err)
	}
	if err := s.client.Set(ctx, flowKeyPrefix+f.ID.String(), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save flow: %w", err)
	}
	return nil
}

// Load retrieves a flow by ID
func (s *FlowStore) Load(ctx context.Context, id uuid.UUID) (*agentflow.Flow, error) {
	val, err := s.client.Get(ctx, flowKeyPrefix+id.String()).Bytes()
	if err == redis.Nil {
		return nil, agentflow.ErrFlowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load flow: %w", err)
	}

	var f agentflow.Flow
	if err := json.Unmarshal(val, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flow: %w", err)
	}
	return &f, nil
}

// Delete removes a flow
func (s *FlowStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.client.Del(ctx, flowKeyPrefix+id.String()).Err(); err != nil {
		return fmt.Errorf("failed to delete flow: %w", err)
	}
	return nil
}
