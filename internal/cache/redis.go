package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// delIfEqualScript is the "check-and-del" atomic primitive from spec §6:
// compares GET == token and only then runs DEL, all inside one script so a
// crashed leader can never race its own lock release against a new leader
// that has since acquired it.
const delIfEqualScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`

// RedisClient implements Client against a real Redis server.
type RedisClient struct {
	rdb *redis.Client
}

// NewRedisClient dials addr and returns a ready Client.
func NewRedisClient(addr, password string, db int) *RedisClient {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisClient{rdb: rdb}
}

// Close releases the underlying connection pool.
func (c *RedisClient) Close() error {
	return c.rdb.Close()
}

func (c *RedisClient) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}
	return val, nil
}

func (c *RedisClient) Set(ctx context.Context, key string, value []byte) error {
	if err := c.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (c *RedisClient) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache del: %w", err)
	}
	return nil
}

func (c *RedisClient) Keys(ctx context.Context, pattern string) ([]string, error) {
	keys, err := c.rdb.Keys(ctx, pattern).Result()
	if err != nil {
		return nil, fmt.Errorf("cache keys %s: %w", pattern, err)
	}
	return keys, nil
}

func (c *RedisClient) MGet(ctx context.Context, keys ...string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("cache mget: %w", err)
	}
	out := make([][]byte, len(vals))
	for i, v := range vals {
		if v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		out[i] = []byte(s)
	}
	return out, nil
}

func (c *RedisClient) SetIfAbsentWithTTL(ctx context.Context, key string, value []byte, ttlSeconds int) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, key, value, time.Duration(ttlSeconds)*time.Second).Result()
	if err != nil {
		return false, fmt.Errorf("cache setnx %s: %w", key, err)
	}
	return ok, nil
}

func (c *RedisClient) DelIfEqual(ctx context.Context, key string, expected []byte) (bool, error) {
	res, err := c.rdb.Eval(ctx, delIfEqualScript, []string{key}, expected).Result()
	if err != nil {
		return false, fmt.Errorf("cache del-if-equal %s: %w", key, err)
	}
	n, _ := res.(int64)
	return n == 1, nil
}

var _ Client = (*RedisClient)(nil)
