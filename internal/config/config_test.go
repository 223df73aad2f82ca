package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "STORE_BACKEND", "APPOINTMENT_SCOPE", "CORS_ALLOWED_ORIGINS", "PAYMENT_VELOCITY_WINDOW", "TIMEZONE"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.StoreBackend != "memory" {
		t.Fatalf("expected memory backend by default, got %s", cfg.StoreBackend)
	}
	if cfg.AppointmentScope != "user" {
		t.Fatalf("expected user appointment scope, got %s", cfg.AppointmentScope)
	}
	if cfg.BookingWindowDays != 30 {
		t.Fatalf("expected 30 day booking window, got %d", cfg.BookingWindowDays)
	}
	if cfg.PaymentVelocityWindow != time.Hour {
		t.Fatalf("expected 1h velocity window, got %s", cfg.PaymentVelocityWindow)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("expected wildcard CORS default, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.Location() != time.Local {
		t.Fatalf("expected local timezone by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("STORE_BACKEND", " Redis ")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("APPOINTMENT_SCOPE", "GLOBAL")
	t.Setenv("BOOKING_WINDOW_DAYS", "14")
	t.Setenv("PAYMENT_VELOCITY_WINDOW", "45m")
	t.Setenv("AUTH_RATE_LIMIT_RPS", "2.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("TIMEZONE", "UTC")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.StoreBackend != "redis" {
		t.Fatalf("expected normalised backend, got %q", cfg.StoreBackend)
	}
	if !cfg.RedisTLS {
		t.Fatal("expected redis tls enabled")
	}
	if cfg.AppointmentScope != "global" {
		t.Fatalf("expected global scope, got %s", cfg.AppointmentScope)
	}
	if cfg.BookingWindowDays != 14 {
		t.Fatalf("expected booking window override, got %d", cfg.BookingWindowDays)
	}
	if cfg.PaymentVelocityWindow != 45*time.Minute {
		t.Fatalf("expected velocity window override, got %s", cfg.PaymentVelocityWindow)
	}
	if cfg.AuthRateLimitRPS != 2.5 {
		t.Fatalf("expected rps override, got %v", cfg.AuthRateLimitRPS)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
	if cfg.Location().String() != "UTC" {
		t.Fatalf("expected UTC, got %s", cfg.Location())
	}
}

func TestLocationFallsBackOnUnknownZone(t *testing.T) {
	cfg := &Config{Timezone: "Not/AZone"}
	if cfg.Location() != time.Local {
		t.Fatal("expected fallback to local zone")
	}
}
