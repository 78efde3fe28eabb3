package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ServerPort != 3000 {
		t.Errorf("ServerPort = %d, want 3000", cfg.ServerPort)
	}
	if cfg.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want sqlite", cfg.Database.Type)
	}
	if cfg.Reset.TokenTTL != time.Hour {
		t.Errorf("Reset.TokenTTL = %v, want 1h", cfg.Reset.TokenTTL)
	}
	if cfg.Email.Provider != "log" {
		t.Errorf("Email.Provider = %q, want log", cfg.Email.Provider)
	}
	if cfg.Redis.Addr != "" {
		t.Errorf("Redis.Addr = %q, want empty", cfg.Redis.Addr)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("APP_ENV", EnvProduction)
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/tasks")
	t.Setenv("RESET_TOKEN_TTL", "30m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ServerPort != 8081 {
		t.Errorf("ServerPort = %d, want 8081", cfg.ServerPort)
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false, want true")
	}
	if cfg.Database.URL != "postgres://u:p@localhost/tasks" {
		t.Errorf("Database.URL = %q", cfg.Database.URL)
	}
	if cfg.Reset.TokenTTL != 30*time.Minute {
		t.Errorf("Reset.TokenTTL = %v, want 30m", cfg.Reset.TokenTTL)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestLoadInvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	if _, err := Load(); err == nil {
		t.Fatal("Load() expected error for invalid PORT")
	}
}
