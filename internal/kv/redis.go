package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RedisStore persists values as plain Redis strings with no expiry.
type RedisStore struct {
	redis  *redis.Client
	prefix string
	tracer trace.Tracer
}

// NewRedisStore wraps client. Keys are namespaced as "<prefix>:<key>".
func NewRedisStore(client *redis.Client, prefix string, tracer trace.Tracer) *RedisStore {
	if client == nil {
		panic("kv: redis client cannot be nil")
	}
	if tracer == nil {
		tracer = otel.Tracer("mindcare.internal.kv.redis")
	}
	return &RedisStore{redis: client, prefix: prefix, tracer: tracer}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "kv.get", trace.WithAttributes(attribute.String("kv.key", key)))
	defer span.End()

	data, err := s.redis.Get(ctx, prefixed(s.prefix, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("kv: redis get %s: %w", key, err)
	}
	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	ctx, span := s.tracer.Start(ctx, "kv.set", trace.WithAttributes(attribute.String("kv.key", key)))
	defer span.End()

	if err := s.redis.Set(ctx, prefixed(s.prefix, key), value, 0).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("kv: redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	ctx, span := s.tracer.Start(ctx, "kv.delete", trace.WithAttributes(attribute.String("kv.key", key)))
	defer span.End()

	if err := s.redis.Del(ctx, prefixed(s.prefix, key)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("kv: redis delete %s: %w", key, err)
	}
	return nil
}
