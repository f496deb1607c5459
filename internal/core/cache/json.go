package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Null is the cached form of an absent value.
var Null = []byte("null")

// GetOrLoadJSON is GetOrLoad for JSON values. A nil result from load is
// cached as Null, and Null reads back as (nil, nil).
func GetOrLoadJSON[T any](c *Cache, ctx context.Context, key string, ttl time.Duration, load func(ctx context.Context) (*T, error)) (*T, error) {
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return Null, nil
		}
		return json.Marshal(v)
	})
	if err != nil {
		return nil, err
	}
	return decodeJSON[T](key, b)
}

// SetJSON overwrites every key with the JSON form of its value; nil values
// are written as Null.
func SetJSON[T any](c *Cache, ctx context.Context, vals map[string]*T, ttl time.Duration) error {
	raw := make(map[string][]byte, len(vals))
	for k, v := range vals {
		if v == nil {
			raw[k] = Null
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", k, err)
		}
		raw[k] = b
	}
	return c.Set(ctx, raw, ttl)
}

func decodeJSON[T any](key string, b []byte) (*T, error) {
	if bytes.Equal(b, Null) {
		return nil, nil
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &out, nil
}
