package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/roomie-match/matchcore/internal/cache"
)

func decodeValues[T any](ctx context.Context, c cache.Client, keys []string) ([]T, error) {
	values, err := c.MGet(ctx, keys...)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(values))
	for _, v := range values {
		if v == nil {
			continue
		}
		var item T
		if err := json.Unmarshal(v, &item); err != nil {
			return nil, fmt.Errorf("backup: decode cache entry: %w", err)
		}
		out = append(out, item)
	}
	return out, nil
}

func encodeAndSet(ctx context.Context, c cache.Client, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data)
}

func homeDir() (string, error) {
	return os.UserHomeDir()
}
