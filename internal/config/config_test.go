package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("addr: %q", cfg.Server.Addr)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("origins: %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Auth.AccessTTL != "15m" || cfg.Auth.RefreshTTL != "168h" {
		t.Fatalf("ttls: %q %q", cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	}
	if cfg.Auth.VerificationTTL != "24h" || cfg.Auth.ReaperInterval != "1h" {
		t.Fatalf("reaper/verification: %q %q", cfg.Auth.VerificationTTL, cfg.Auth.ReaperInterval)
	}
	if cfg.Postgres.SSLMode != "disable" {
		t.Fatalf("sslmode: %q", cfg.Postgres.SSLMode)
	}
	if cfg.SMTP.Port != "587" {
		t.Fatalf("smtp port: %q", cfg.SMTP.Port)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9090")
	t.Setenv("JWT_SECRET", "s1")
	t.Setenv("JWT_REFRESH_SECRET", "s2")
	t.Setenv("JWT_ACCESS_TTL", "5m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://staging.example.com")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/tracker")

	cfg := Load()

	if cfg.Server.Addr != ":9090" {
		t.Fatalf("addr: %q", cfg.Server.Addr)
	}
	if cfg.Auth.AccessSecret != "s1" || cfg.Auth.RefreshSecret != "s2" {
		t.Fatalf("secrets not read")
	}
	if cfg.Auth.AccessTTL != "5m" {
		t.Fatalf("access ttl: %q", cfg.Auth.AccessTTL)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://staging.example.com" {
		t.Fatalf("origins not split/trimmed: %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Postgres.DatabaseURL != "postgres://u:p@db:5432/tracker" {
		t.Fatalf("database url: %q", cfg.Postgres.DatabaseURL)
	}
}

func TestSplitListDropsEmptyEntries(t *testing.T) {
	out := splitList("a, ,b,,")
	if len(out) != 2 || out[0] != "a" || out[1] != "b" {
		t.Fatalf("got %v", out)
	}
}
