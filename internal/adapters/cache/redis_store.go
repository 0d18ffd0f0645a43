package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andrescamacho/colonysim-go/internal/application/colony/services"
	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
)

// RedisConfig holds the connection settings of a RedisStore
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	TTL       time.Duration
	KeyPrefix string
}

// RedisStore keeps colony digests in Redis. Each digest is a JSON string
// under its own key, and a per-owner set indexes the owner's colonies.
type RedisStore struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return NewRedisStoreWithClient(client, cfg.TTL, cfg.KeyPrefix), nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "colonysim"
	}
	return &RedisStore{client: client, ttl: ttl, keyPrefix: keyPrefix}
}

func (s *RedisStore) digestKey(owner int64, colonyID int64) string {
	return fmt.Sprintf("%s:digest:%d:%d", s.keyPrefix, owner, colonyID)
}

func (s *RedisStore) ownerKey(owner int64) string {
	return fmt.Sprintf("%s:owner:%d", s.keyPrefix, owner)
}

// Get returns the digest of ref, or nil when none is stored
func (s *RedisStore) Get(ctx context.Context, ref planetary.ColonyRef) (*services.ColonyDigest, error) {
	raw, err := s.client.Get(ctx, s.digestKey(ref.Owner.Value(), int64(ref.ColonyID))).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read digest: %w", err)
	}

	var digest services.ColonyDigest
	if err := json.Unmarshal(raw, &digest); err != nil {
		return nil, fmt.Errorf("failed to decode digest: %w", err)
	}
	return &digest, nil
}

// Set stores a digest and indexes it under its owner
func (s *RedisStore) Set(ctx context.Context, digest *services.ColonyDigest) error {
	payload, err := json.Marshal(digest)
	if err != nil {
		return fmt.Errorf("failed to encode digest: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.digestKey(digest.Owner, digest.ColonyID), payload, s.ttl)
	pipe.SAdd(ctx, s.ownerKey(digest.Owner), strconv.FormatInt(digest.ColonyID, 10))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store digest: %w", err)
	}
	return nil
}

// Delete removes the digest of ref
func (s *RedisStore) Delete(ctx context.Context, ref planetary.ColonyRef) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.digestKey(ref.Owner.Value(), int64(ref.ColonyID)))
	pipe.SRem(ctx, s.ownerKey(ref.Owner.Value()), strconv.FormatInt(int64(ref.ColonyID), 10))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete digest: %w", err)
	}
	return nil
}

// ListByOwner returns the digests of owner ordered by colony id. Index
// entries whose digest expired are pruned.
func (s *RedisStore) ListByOwner(ctx context.Context, owner shared.CharacterID) ([]*services.ColonyDigest, error) {
	members, err := s.client.SMembers(ctx, s.ownerKey(owner.Value())).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list colonies: %w", err)
	}
	if len(members) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(members))
	indexed := make([]string, 0, len(members))
	for _, m := range members {
		colonyID, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		keys = append(keys, s.digestKey(owner.Value(), colonyID))
		indexed = append(indexed, m)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read digests: %w", err)
	}

	var digests []*services.ColonyDigest
	var stale []interface{}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			stale = append(stale, indexed[i])
			continue
		}
		var digest services.ColonyDigest
		if err := json.Unmarshal([]byte(raw), &digest); err != nil {
			continue
		}
		digests = append(digests, &digest)
	}

	if len(stale) > 0 {
		_ = s.client.SRem(ctx, s.ownerKey(owner.Value()), stale...).Err()
	}

	sortDigests(digests)
	return digests, nil
}

// Close releases the connection pool
func (s *RedisStore) Close() error {
	return s.client.Close()
}
