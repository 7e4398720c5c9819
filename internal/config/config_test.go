package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("port = %q, want 8080", cfg.Port)
	}
	if cfg.DatabaseURL != "sqlite://tournament.db" {
		t.Fatalf("database url = %q", cfg.DatabaseURL)
	}
	if cfg.JWTTTL != 24*time.Hour {
		t.Fatalf("jwt ttl = %v, want 24h", cfg.JWTTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("cors origins = %v", cfg.CORSAllowedOrigins)
	}
	if cfg.NATSSubjectPrefix != "tournament" {
		t.Fatalf("nats prefix = %q", cfg.NATSSubjectPrefix)
	}
	if cfg.Lambda() {
		t.Fatal("expected non-lambda mode")
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "tournaments")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Port != "9090" || cfg.JWTTTL != 2*time.Hour {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("cors origins = %v", cfg.CORSAllowedOrigins)
	}
	if !cfg.Lambda() {
		t.Fatal("expected lambda mode")
	}
}

func TestParseRejectsShortSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")
	if _, err := Parse(); err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestParseRejectsBadBcryptCost(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")
	t.Setenv("BCRYPT_COST", "2")
	if _, err := Parse(); err == nil {
		t.Fatal("expected error for bcrypt cost")
	}
}

func unsetAfter(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		os.Unsetenv(k)
	}
	t.Cleanup(func() {
		for _, k := range keys {
			os.Unsetenv(k)
		}
	})
}

func TestLoadDotEnvSkipsMissingFiles(t *testing.T) {
	unsetAfter(t, "TOURNAMENT_DOTENV_LOCAL")
	dir := t.TempDir()
	local := filepath.Join(dir, ".env.local")
	if err := os.WriteFile(local, []byte("TOURNAMENT_DOTENV_LOCAL=yes\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := loadDotEnv(filepath.Join(dir, ".env"), local); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := os.Getenv("TOURNAMENT_DOTENV_LOCAL"); got != "yes" {
		t.Fatalf("TOURNAMENT_DOTENV_LOCAL = %q, want yes", got)
	}
}

func TestLoadDotEnvFirstFileWins(t *testing.T) {
	unsetAfter(t, "TOURNAMENT_DOTENV_PORT")
	dir := t.TempDir()
	files := map[string]string{
		".env.local": "TOURNAMENT_DOTENV_PORT=9000\n",
		".env":       "TOURNAMENT_DOTENV_PORT=8000\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	if err := loadDotEnv(filepath.Join(dir, ".env.local"), filepath.Join(dir, ".env")); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := os.Getenv("TOURNAMENT_DOTENV_PORT"); got != "9000" {
		t.Fatalf("TOURNAMENT_DOTENV_PORT = %q, want 9000", got)
	}
}
