package authflowrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces auth flow states in a shared Redis
const DefaultKeyPrefix = "mcp-oauth:authflow:"

// RedisRepo stores auth flow states in Redis so several server replicas can
// share pending logins. Keys are written without a TTL.
type RedisRepo struct {
	client    redis.UniversalClient
	keyPrefix string
}

var _ Repo = (*RedisRepo)(nil)

// NewRedisRepo connects to addr and checks connectivity
func NewRedisRepo(ctx context.Context, addr string) (*RedisRepo, error) {
	repo := NewRedisRepoWithClient(redis.NewClient(&redis.Options{Addr: addr}), DefaultKeyPrefix)
	if err := repo.Ping(ctx); err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return repo, nil
}

// NewRedisRepoWithClient wraps a pre-configured client
func NewRedisRepoWithClient(client redis.UniversalClient, keyPrefix string) *RedisRepo {
	return &RedisRepo{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (r *RedisRepo) key(state string) string {
	return r.keyPrefix + state
}

// Put stores a new auth flow state, refusing to overwrite a live one
func (r *RedisRepo) Put(ctx context.Context, state string, authState AuthFlowState) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}

	data, err := json.Marshal(authState)
	if err != nil {
		return fmt.Errorf("failed to marshal auth flow state: %w", err)
	}

	stored, err := r.client.SetNX(ctx, r.key(state), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to store auth flow state: %w", err)
	}
	if !stored {
		return ErrStateExists
	}
	return nil
}

// Take uses GETDEL so lookup and removal are a single atomic command
func (r *RedisRepo) Take(ctx context.Context, state string) (AuthFlowState, error) {
	if state == "" {
		return AuthFlowState{}, ErrStateNotFound
	}

	data, err := r.client.GetDel(ctx, r.key(state)).Bytes()
	if errors.Is(err, redis.Nil) {
		return AuthFlowState{}, ErrStateNotFound
	}
	if err != nil {
		return AuthFlowState{}, fmt.Errorf("failed to take auth flow state: %w", err)
	}

	var authState AuthFlowState
	if err := json.Unmarshal(data, &authState); err != nil {
		return AuthFlowState{}, fmt.Errorf("failed to unmarshal auth flow state: %w", err)
	}
	return authState, nil
}

// Ping checks Redis connectivity
func (r *RedisRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis client connection
func (r *RedisRepo) Close() error {
	return r.client.Close()
}
