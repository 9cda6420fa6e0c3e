package draft

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"barcaja/backend/internal/domain"
)

// draftTTL keeps abandoned drafts from accumulating forever. A draft
// older than this belongs to a shift nobody is closing anymore.
const draftTTL = 72 * time.Hour

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr string, password string, db int) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisStore{client: client}
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) Save(ctx context.Context, venueID string, shiftID string, d domain.CountDraft) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, draftKey(venueID, shiftID), payload, draftTTL).Err()
}

func (r *RedisStore) Load(ctx context.Context, venueID string, shiftID string) (*domain.CountDraft, bool, error) {
	val, err := r.client.Get(ctx, draftKey(venueID, shiftID)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var d domain.CountDraft
	if err := json.Unmarshal([]byte(val), &d); err != nil {
		return nil, false, err
	}
	return &d, true, nil
}

func (r *RedisStore) Delete(ctx context.Context, venueID string, shiftID string) error {
	return r.client.Del(ctx, draftKey(venueID, shiftID)).Err()
}
