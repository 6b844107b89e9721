package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "aura:session:"
	historyKeySuffix = ":qa"
)

// RedisStore persists sessions as JSON documents and QA history as a
// Redis list, keeping the append-only contract.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr, password string, db int) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func (s *RedisStore) Put(ctx context.Context, sess Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+sess.SessionID, data, 0).Err(); err != nil {
		return fmt.Errorf("put session %s: %w", sess.SessionID, err)
	}
	return nil
}

func (s *RedisStore) AppendQA(ctx context.Context, sessionID string, rec QARecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal qa record: %w", err)
	}
	if err := s.client.RPush(ctx, sessionKeyPrefix+sessionID+historyKeySuffix, data).Err(); err != nil {
		return fmt.Errorf("append qa %s: %w", sessionID, err)
	}
	return nil
}

func (s *RedisStore) History(ctx context.Context, sessionID string) ([]QARecord, error) {
	vals, err := s.client.LRange(ctx, sessionKeyPrefix+sessionID+historyKeySuffix, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", sessionID, err)
	}
	records := make([]QARecord, 0, len(vals))
	for _, v := range vals {
		var rec QARecord
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			return nil, fmt.Errorf("decode qa record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
