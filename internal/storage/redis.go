package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	savePrefix    = "save:"
	saveIndexKey  = "saves:by_updated"
	defaultSaveTTL = 0 // saves never expire
)

// RedisStore implements Storage using Redis.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

var _ Storage = (*RedisStore)(nil)

// NewRedisStore creates a new Redis storage instance
func NewRedisStore(addr string, logger *slog.Logger) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisStore{
		client: client,
		logger: logger,
	}
}

// Client exposes the underlying redis client for pub/sub use.
func (r *RedisStore) Client() *redis.Client {
	return r.client
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) PutSave(ctx context.Context, rec *SaveRecord) error {
	if rec == nil {
		return fmt.Errorf("save record cannot be nil")
	}
	rec.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal save record: %w", err)
	}
	key := savePrefix + rec.ID.String()
	if err := r.client.Set(ctx, key, data, defaultSaveTTL).Err(); err != nil {
		return fmt.Errorf("failed to store save record: %w", err)
	}
	// Sorted-set index by update time gives us LatestSave without a scan.
	score := float64(rec.UpdatedAt.UnixNano())
	if err := r.client.ZAdd(ctx, saveIndexKey, redis.Z{Score: score, Member: rec.ID.String()}).Err(); err != nil {
		return fmt.Errorf("failed to index save record: %w", err)
	}
	r.logger.Debug("Save record stored", "save_id", rec.ID.String())
	return nil
}

func (r *RedisStore) GetSave(ctx context.Context, id uuid.UUID) (*SaveRecord, error) {
	data, err := r.client.Get(ctx, savePrefix+id.String()).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get save record: %w", err)
	}
	var rec SaveRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal save record: %w", err)
	}
	return &rec, nil
}

func (r *RedisStore) LatestSave(ctx context.Context) (*SaveRecord, error) {
	ids, err := r.client.ZRevRange(ctx, saveIndexKey, 0, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to query save index: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	id, err := uuid.Parse(ids[0])
	if err != nil {
		return nil, fmt.Errorf("corrupt save index entry %q: %w", ids[0], err)
	}
	rec, err := r.GetSave(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		// Index points at a deleted record. Drop the stale entry.
		r.client.ZRem(ctx, saveIndexKey, ids[0])
		return nil, nil
	}
	return rec, nil
}

func (r *RedisStore) DeleteSave(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, savePrefix+id.String()).Err(); err != nil {
		return fmt.Errorf("failed to delete save record: %w", err)
	}
	if err := r.client.ZRem(ctx, saveIndexKey, id.String()).Err(); err != nil {
		return fmt.Errorf("failed to unindex save record: %w", err)
	}
	return nil
}
