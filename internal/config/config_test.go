package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("XENDIT_API_KEY", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.XenditAPIKey != "" {
		t.Fatalf("expected empty xendit key by default, got %s", cfg.XenditAPIKey)
	}
	if cfg.DraftTTL != 24*time.Hour {
		t.Fatalf("expected default draft TTL, got %s", cfg.DraftTTL)
	}
	if cfg.InvoiceDuration != 24*time.Hour {
		t.Fatalf("expected default invoice duration, got %s", cfg.InvoiceDuration)
	}
	if cfg.AllowFakePayments {
		t.Fatalf("expected fake payments disabled by default")
	}
	if cfg.SendGridFromName != "Mentari Health" {
		t.Fatalf("expected default from name, got %s", cfg.SendGridFromName)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("BOOKING_DRAFT_TTL", "2h")
	t.Setenv("XENDIT_CALLBACK_TOKEN", "cb-token")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://staging.example.com")
	t.Setenv("RATE_LIMIT_PER_SECOND", "2.5")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.DraftTTL != 2*time.Hour {
		t.Fatalf("expected draft TTL override, got %s", cfg.DraftTTL)
	}
	if cfg.XenditCallbackToken != "cb-token" {
		t.Fatalf("expected callback token override, got %s", cfg.XenditCallbackToken)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://staging.example.com" {
		t.Fatalf("expected two trimmed origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.RateLimitPerSecond != 2.5 {
		t.Fatalf("expected rate limit override, got %f", cfg.RateLimitPerSecond)
	}
}

func TestRedirectFallbacks(t *testing.T) {
	t.Setenv("PUBLIC_BASE_URL", "https://mentari.example/")
	t.Setenv("BOOKING_SUCCESS_URL", "")
	t.Setenv("BOOKING_FAILURE_URL", "")
	cfg := Load()
	if got := cfg.SuccessURL(); got != "https://mentari.example/booking/success" {
		t.Fatalf("unexpected success URL: %s", got)
	}
	if got := cfg.FailureURL(); got != "https://mentari.example/booking/failed" {
		t.Fatalf("unexpected failure URL: %s", got)
	}

	t.Setenv("BOOKING_SUCCESS_URL", "https://other.example/done")
	cfg = Load()
	if got := cfg.SuccessURL(); got != "https://other.example/done" {
		t.Fatalf("expected explicit success URL, got %s", got)
	}
}
