package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connection counters expire on their own so a crashed server does not
// leave users marked online forever.
const presenceTTL = 5 * time.Minute

// Redis tracks presence as per-user connection counters in Redis.
type Redis struct {
	client *redis.Client
}

func NewRedis(addr, password string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &Redis{client: client}, nil
}

func key(userID string) string {
	return "presence:" + userID
}

func (r *Redis) Connected(ctx context.Context, userID string) error {
	pipe := r.client.TxPipeline()
	pipe.Incr(ctx, key(userID))
	pipe.Expire(ctx, key(userID), presenceTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *Redis) Disconnected(ctx context.Context, userID string) error {
	n, err := r.client.Decr(ctx, key(userID)).Result()
	if err != nil {
		return err
	}
	if n <= 0 {
		return r.client.Del(ctx, key(userID)).Err()
	}
	return nil
}

func (r *Redis) IsOnline(ctx context.Context, userID string) (bool, error) {
	n, err := r.client.Get(ctx, key(userID)).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
