// Package bootstrap builds the runtime dependencies selected by configuration.
package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	appconfig "github.com/wolfman30/mindcare/internal/config"
	"github.com/wolfman30/mindcare/internal/kv"
	"github.com/wolfman30/mindcare/internal/payments"
	"github.com/wolfman30/mindcare/pkg/logging"
)

// Backend names accepted by STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Runtime is the storage wiring for one process. Close releases it.
type Runtime struct {
	Store kv.Store
	Redis *redis.Client
	Pool  *pgxpool.Pool
}

// Close releases any pooled connections.
func (r *Runtime) Close() {
	if r == nil {
		return
	}
	if r.Redis != nil {
		r.Redis.Close()
	}
	if r.Pool != nil {
		r.Pool.Close()
	}
}

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err, "addr", cfg.RedisAddr)
		client.Close()
		return nil
	}
	return client
}

// BuildRuntime opens the key-value backend named by cfg.StoreBackend.
// The redis backend requires a reachable server; memory and postgres still
// pick up Redis opportunistically for the payment velocity guard.
func BuildRuntime(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	rt := &Runtime{}
	switch cfg.StoreBackend {
	case "", BackendMemory:
		rt.Store = kv.NewMemoryStore()
		rt.Redis = BuildRedisClient(ctx, cfg, logger, true)
	case BackendRedis:
		rt.Redis = BuildRedisClient(ctx, cfg, logger, true)
		if rt.Redis == nil {
			return nil, fmt.Errorf("bootstrap: redis backend selected but %q is unreachable", cfg.RedisAddr)
		}
		rt.Store = kv.NewRedisStore(rt.Redis, cfg.KVPrefix, otel.Tracer("mindcare.internal.kv"))
	case BackendPostgres:
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, fmt.Errorf("bootstrap: postgres backend requires DATABASE_URL")
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: connect postgres: %w", err)
		}
		store := kv.NewPostgresStore(pool, cfg.KVPrefix)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("bootstrap: ensure schema: %w", err)
		}
		rt.Pool = pool
		rt.Store = store
		rt.Redis = BuildRedisClient(ctx, cfg, logger, true)
	default:
		return nil, fmt.Errorf("bootstrap: unknown store backend %q", cfg.StoreBackend)
	}

	logger.Info("store backend ready",
		"backend", backendName(cfg.StoreBackend),
		"redis", rt.Redis != nil,
	)
	return rt, nil
}

// BuildVelocityChecker returns the payment velocity guard. Without Redis the
// guard is disabled.
func BuildVelocityChecker(redisClient *redis.Client, cfg *appconfig.Config, logger *logging.Logger) *payments.VelocityChecker {
	vc := payments.DefaultVelocityConfig()
	if cfg != nil {
		if cfg.PaymentVelocityMax > 0 {
			vc.MaxAttempts = cfg.PaymentVelocityMax
		}
		if cfg.PaymentVelocityWindow > 0 {
			vc.Window = cfg.PaymentVelocityWindow
		}
		vc.KeyPrefix = cfg.KVPrefix
	}
	vc.Enabled = redisClient != nil
	return payments.NewVelocityChecker(redisClient, vc, logger)
}

func backendName(name string) string {
	if name == "" {
		return BackendMemory
	}
	return name
}
