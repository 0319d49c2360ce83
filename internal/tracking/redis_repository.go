package tracking

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/danghamo/presence/pkg/logger"
)

// Redis key pattern for mirrored positions: "presence:worker:{workerID}"
const positionKeyPrefix = "presence:worker:"

// RedisPositionRepository mirrors last-known positions in Redis so the
// in-memory store can be warm-started after a restart. The in-memory
// store stays authoritative; this mirror is written best-effort.
type RedisPositionRepository struct {
	client *redis.Client
	logger *logger.Logger
}

// NewRedisPositionRepository creates a Redis-backed position mirror
func NewRedisPositionRepository(client *redis.Client, log *logger.Logger) *RedisPositionRepository {
	return &RedisPositionRepository{
		client: client,
		logger: log.WithComponent("position-mirror"),
	}
}

// Save writes one position record, overwriting any prior value
func (r *RedisPositionRepository) Save(ctx context.Context, record PositionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to serialize position record: %w", err)
	}

	key := positionKeyPrefix + record.WorkerID
	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store position record: %w", err)
	}
	return nil
}

// GetAll loads every mirrored position record. Keys are walked with
// SCAN so the load never blocks Redis on a large keyspace.
func (r *RedisPositionRepository) GetAll(ctx context.Context) ([]PositionRecord, error) {
	iter := r.client.Scan(ctx, 0, positionKeyPrefix+"*", 0).Iterator()

	var records []PositionRecord
	for iter.Next(ctx) {
		key := iter.Val()

		data, err := r.client.Get(ctx, key).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, fmt.Errorf("failed to load position record %s: %w", key, err)
		}

		var record PositionRecord
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			r.logger.Warn("Skipping malformed position record",
				zap.String("key", key),
				zap.Error(err))
			continue
		}
		records = append(records, record)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan position keys: %w", err)
	}

	return records, nil
}
