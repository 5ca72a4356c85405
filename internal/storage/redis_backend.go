package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"unreal-mcp-go/internal/constants"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores each run under <prefix>run:<id> and indexes ids in the
// sorted set <prefix>runs scored by start time.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// NewRedisBackend creates a new Redis storage backend
func NewRedisBackend(addr, password string, db int, prefix string) (*RedisBackend, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	if prefix == "" {
		prefix = "unrealmcp:"
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	return &RedisBackend{client: client, prefix: prefix}, nil
}

func (r *RedisBackend) runKey(id string) string { return r.prefix + "run:" + id }
func (r *RedisBackend) indexKey() string       { return r.prefix + "runs" }

// Initialize tests Redis connection
func (r *RedisBackend) Initialize(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close closes Redis connection
func (r *RedisBackend) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// Health checks redis availability
func (r *RedisBackend) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisBackend) SaveRun(ctx context.Context, run *RunRecord) error {
	if err := run.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to encode run %s: %w", run.ID, err)
	}
	ctx, cancel := withStorageTimeout(ctx)
	defer cancel()
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.runKey(run.ID), payload, 0)
		pipe.ZAdd(ctx, r.indexKey(), redis.Z{
			Score:  float64(run.StartedAt.UnixNano()),
			Member: run.ID,
		})
		return nil
	})
	return err
}

func (r *RedisBackend) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	ctx, cancel := withStorageTimeout(ctx)
	defer cancel()
	data, err := r.client.Get(ctx, r.runKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, &ErrNotFound{Key: id}
		}
		return nil, err
	}
	var run RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to decode run %s: %w", id, err)
	}
	return &run, nil
}

func (r *RedisBackend) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	ctx, cancel := withStorageTimeout(ctx)
	defer cancel()
	n := NormalizeLimit(limit)
	ids, err := r.client.ZRevRange(ctx, r.indexKey(), 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []RunSummary{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.runKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]RunSummary, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var run RunRecord
		if err := json.Unmarshal([]byte(s), &run); err != nil {
			continue
		}
		out = append(out, run.Summary())
	}
	sortSummaries(out)
	return out, nil
}

func (r *RedisBackend) DeleteRun(ctx context.Context, id string) error {
	ctx, cancel := withStorageTimeout(ctx)
	defer cancel()
	var del *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, r.runKey(id))
		pipe.ZRem(ctx, r.indexKey(), id)
		return nil
	})
	if err != nil {
		return err
	}
	if del.Val() == 0 {
		return &ErrNotFound{Key: id}
	}
	return nil
}

// GetStorageStats returns storage statistics
func (r *RedisBackend) GetStorageStats(ctx context.Context) (StorageStats, error) {
	list, err := r.ListRuns(ctx, constants.MaxRunListLimit)
	if err != nil {
		return StorageStats{Backend: "redis"}, err
	}
	stats := statsFromSummaries("redis", list)
	if total, err := r.client.ZCard(ctx, r.indexKey()).Result(); err == nil {
		stats.RunCount = int(total)
	}
	pool := r.client.PoolStats()
	stats.Details = map[string]interface{}{
		"pool_total_conns": pool.TotalConns,
		"pool_idle_conns":  pool.IdleConns,
		"pool_hits":        pool.Hits,
		"pool_misses":      pool.Misses,
	}
	return stats, nil
}
