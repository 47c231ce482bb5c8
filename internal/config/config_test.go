package config

import (
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("Port = %q, want 8000", cfg.Port)
	}
	if !cfg.IsDev() {
		t.Error("default env should be development")
	}
	if cfg.ResolvedStorage() != "memory" {
		t.Errorf("ResolvedStorage = %q, want memory in development", cfg.ResolvedStorage())
	}
}

func TestExplicitStorageWins(t *testing.T) {
	t.Setenv("STORAGE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/careledger")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ResolvedStorage() != "postgres" {
		t.Errorf("ResolvedStorage = %q, want postgres", cfg.ResolvedStorage())
	}
}

func TestPostgresRequiresDatabaseURL(t *testing.T) {
	t.Setenv("STORAGE", "postgres")
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load should fail without DATABASE_URL for postgres storage")
	}
}

func TestProductionRequiresSigningKey(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("STORAGE", "memory")
	t.Setenv("AUTH_SIGNING_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load should fail without AUTH_SIGNING_KEY outside development")
	}

	t.Setenv("AUTH_SIGNING_KEY", "secret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with key: %v", err)
	}
	if cfg.IsDev() {
		t.Error("ENV=production should not be dev")
	}
}

func TestInvalidStorageRejected(t *testing.T) {
	t.Setenv("STORAGE", "cassandra")

	if _, err := Load(); err == nil {
		t.Fatal("Load should reject unknown storage backends")
	}
}

func TestCORSOriginsSplit(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "http://a.example,http://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("CORSOrigins = %v, want two entries", cfg.CORSOrigins)
	}
}
