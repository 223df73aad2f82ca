package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/mindcare/pkg/logging"
)

var tracer = otel.Tracer("mindcare.internal.payments")

// VelocityChecker limits how many payment attempts a user can make per window.
type VelocityChecker struct {
	redis  *redis.Client
	logger *logging.Logger
	config VelocityConfig
}

// VelocityConfig contains velocity check configuration.
type VelocityConfig struct {
	MaxAttempts int
	Window      time.Duration
	Enabled     bool
	KeyPrefix   string
}

// DefaultVelocityConfig returns default velocity limits.
func DefaultVelocityConfig() VelocityConfig {
	return VelocityConfig{
		MaxAttempts: 5,
		Window:      time.Hour,
		Enabled:     true,
		KeyPrefix:   "mindcare",
	}
}

// VelocityResult contains the result of a velocity check.
type VelocityResult struct {
	Allowed      bool
	CurrentCount int
	MaxAllowed   int
	WindowExpiry time.Time
	Message      string
}

// NewVelocityChecker creates a new velocity checker. A nil client disables checks.
func NewVelocityChecker(redisClient *redis.Client, config VelocityConfig, logger *logging.Logger) *VelocityChecker {
	if logger == nil {
		logger = logging.Default()
	}
	return &VelocityChecker{
		redis:  redisClient,
		logger: logger,
		config: config,
	}
}

func (v *VelocityChecker) key(userID string) string {
	key := "velocity:payment:" + userID
	if v.config.KeyPrefix != "" {
		key = v.config.KeyPrefix + ":" + key
	}
	return key
}

// CheckPaymentVelocity counts one attempt for userID and reports whether it is within the limit.
func (v *VelocityChecker) CheckPaymentVelocity(ctx context.Context, userID string) (*VelocityResult, error) {
	if v == nil || v.redis == nil || !v.config.Enabled {
		return &VelocityResult{Allowed: true}, nil
	}

	ctx, span := tracer.Start(ctx, "velocity.check_payment")
	defer span.End()
	span.SetAttributes(attribute.String("mindcare.user_id", userID))

	key := v.key(userID)
	count, expiry, err := v.incrementAndGet(ctx, key, v.config.Window)
	if err != nil {
		v.logger.Error("velocity check failed", "error", err, "key", key)
		// Fail open
		return &VelocityResult{Allowed: true, Message: "velocity check unavailable"}, nil
	}

	result := &VelocityResult{
		Allowed:      count <= v.config.MaxAttempts,
		CurrentCount: count,
		MaxAllowed:   v.config.MaxAttempts,
		WindowExpiry: expiry,
	}
	if !result.Allowed {
		result.Message = fmt.Sprintf("exceeded %d payment attempts in %s", v.config.MaxAttempts, v.config.Window)
		v.logger.Warn("payment velocity exceeded",
			"user_id", userID,
			"count", count,
			"max", v.config.MaxAttempts,
		)
		span.SetAttributes(attribute.Bool("velocity.exceeded", true))
	}
	return result, nil
}

// incrementAndGet increments a counter and returns the new value with expiry time.
// A counter left without a TTL (for example after a failed EXPIRE) gets one again.
func (v *VelocityChecker) incrementAndGet(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	count, err := v.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, time.Time{}, err
	}

	if count == 1 {
		if err := v.redis.Expire(ctx, key, window).Err(); err != nil {
			return 0, time.Time{}, fmt.Errorf("set window: %w", err)
		}
		return int(count), time.Now().Add(window), nil
	}

	ttl, err := v.redis.TTL(ctx, key).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("read window: %w", err)
	}
	if ttl < 0 {
		if err := v.redis.Expire(ctx, key, window).Err(); err != nil {
			return 0, time.Time{}, fmt.Errorf("reset window: %w", err)
		}
		ttl = window
	}
	return int(count), time.Now().Add(ttl), nil
}
