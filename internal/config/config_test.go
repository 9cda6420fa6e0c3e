package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.AllowedOrigin != "http://127.0.0.1:3000" {
		t.Fatalf("unexpected default origin %q", cfg.AllowedOrigin)
	}
	if cfg.DefaultVenue != "spezia" {
		t.Fatalf("unexpected default venue %q", cfg.DefaultVenue)
	}
	if cfg.DatabaseURL != "" || cfg.RedisAddr != "" {
		t.Fatalf("expected empty backends by default, got %q / %q", cfg.DatabaseURL, cfg.RedisAddr)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("unexpected address %q", cfg.Address())
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGIN", "https://pos.example.com")
	t.Setenv("DATABASE_URL", "postgres://barcaja:secret@db:5432/barcaja")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("DEFAULT_VENUE", "cali-gran-casino")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", cfg.Port)
	}
	if cfg.AllowedOrigin != "https://pos.example.com" {
		t.Fatalf("unexpected origin %q", cfg.AllowedOrigin)
	}
	if cfg.DatabaseURL != "postgres://barcaja:secret@db:5432/barcaja" {
		t.Fatalf("unexpected database url %q", cfg.DatabaseURL)
	}
	if cfg.RedisAddr != "redis:6379" || cfg.RedisDB != 3 {
		t.Fatalf("unexpected redis config %q db=%d", cfg.RedisAddr, cfg.RedisDB)
	}
	if cfg.DefaultVenue != "cali-gran-casino" {
		t.Fatalf("unexpected venue %q", cfg.DefaultVenue)
	}
	if cfg.Address() != ":9090" {
		t.Fatalf("unexpected address %q", cfg.Address())
	}
}
