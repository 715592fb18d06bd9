package actionlog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisSink persists action records in Redis: the record body under
// <prefix>:action:<id> and the id appended to <prefix>:actions for
// ordered retrieval.
type RedisSink struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisSink(redisURL string, prefix string, ttl time.Duration) (*RedisSink, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("redis url is empty")
	}
	if prefix == "" {
		prefix = "docrouter"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisSink{client: client, prefix: prefix, ttl: ttl}, nil
}

// NewRedisSinkWithClient wires an existing client, mainly for tests.
func NewRedisSinkWithClient(client redis.UniversalClient, prefix string) *RedisSink {
	if prefix == "" {
		prefix = "docrouter"
	}
	return &RedisSink{client: client, prefix: prefix}
}

func (s *RedisSink) LogAction(actionType string, data map[string]any, result string, status string) (string, error) {
	rec := Record{
		ID:         uuid.NewString(),
		Timestamp:  newTimestamp(),
		ActionType: actionType,
		Data:       data,
		Result:     result,
		Status:     status,
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("action record marshal: %w", err)
	}

	ctx := context.Background()
	key := s.recordKey(rec.ID)
	if err := s.client.Set(ctx, key, b, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("redis set action record: %w", err)
	}
	if err := s.client.RPush(ctx, s.indexKey(), rec.ID).Err(); err != nil {
		return "", fmt.Errorf("redis index action record: %w", err)
	}
	return rec.ID, nil
}

// Recent returns up to n most recent records, newest first. Expired
// records are skipped.
func (s *RedisSink) Recent(ctx context.Context, n int) ([]Record, error) {
	if n <= 0 {
		n = 10
	}
	ids, err := s.client.LRange(ctx, s.indexKey(), int64(-n), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis range action index: %w", err)
	}

	out := make([]Record, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		raw, err := s.client.Get(ctx, s.recordKey(ids[i])).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("redis get action record: %w", err)
		}
		var rec Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("action record unmarshal: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *RedisSink) recordKey(id string) string {
	return s.prefix + ":action:" + id
}

func (s *RedisSink) indexKey() string {
	return s.prefix + ":actions"
}
