package redisstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/use-agent/webboost/store"
)

// Per-subject lists live under their own namespace so no subject name can
// address the global list.
const (
	keyPrefix = "webboost:audits:"
	allKey    = keyPrefix + "all"
	subjectNS = keyPrefix + "sub:"
)

// ensure redisBackend implements store.Backend
var _ store.Backend = (*redisBackend)(nil)

// redisBackend keeps one list per subject, newest at the head, plus a
// global list used when no subject filter is given.
type redisBackend struct {
	client *redis.Client
}

// New connects to addr and verifies the connection.
func New(ctx context.Context, addr string) (store.Backend, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", addr, err)
	}
	return &redisBackend{client: rdb}, nil
}

func subjectKey(subject string) string {
	return subjectNS + subject
}

func (b *redisBackend) Save(ctx context.Context, r *store.Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("redis: encode: %w", err)
	}

	_, err = b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, subjectKey(r.Subject), data)
		pipe.LPush(ctx, allKey, data)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: save: %w", err)
	}
	return nil
}

func (b *redisBackend) List(ctx context.Context, f store.Filter) ([]*store.Record, error) {
	key := allKey
	if f.Subject != "" {
		key = subjectKey(f.Subject)
	}

	stop := int64(-1)
	if f.Limit > 0 {
		stop = int64(f.Limit) - 1
	}

	items, err := b.client.LRange(ctx, key, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: list: %w", err)
	}

	records := make([]*store.Record, 0, len(items))
	for _, item := range items {
		var r store.Record
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			return nil, fmt.Errorf("redis: decode: %w", err)
		}
		records = append(records, &r)
	}
	return records, nil
}

func (b *redisBackend) Close() error {
	return b.client.Close()
}
