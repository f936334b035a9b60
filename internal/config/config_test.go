package config

import (
	"os"
	"testing"
)

func TestConfigLoad_Defaults(t *testing.T) {
	_ = os.Unsetenv("LUCID_PORT")
	_ = os.Unsetenv("LUCID_STORE_DRIVER")
	_ = os.Unsetenv("LUCID_AUTH_MODE")

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.Port != 5000 || cfg.StoreDriver != "chromem" || cfg.AuthMode != "mock" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.MaxRetries != 5 || cfg.RetryDelaySeconds != 5 {
		t.Fatalf("unexpected retry defaults: %+v", cfg)
	}
}

func TestConfigLoad_PortEnvOverride(t *testing.T) {
	_ = os.Setenv("LUCID_PORT", "8181")
	defer func() { _ = os.Unsetenv("LUCID_PORT") }()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.Port != 8181 {
		t.Fatalf("port env override failed, got %d", cfg.Port)
	}
}

func TestResolveDefaults_RejectsUnknownDriver(t *testing.T) {
	cfg := NewForTesting()
	cfg.StoreDriver = "cassandra"
	if err := cfg.ResolveDefaults(); err == nil {
		t.Fatal("expected error for unsupported store driver")
	}
}

func TestResolveDefaults_PostgresRequiresDSN(t *testing.T) {
	cfg := NewForTesting()
	cfg.StoreDriver = "postgres"
	cfg.PostgresDSN = ""
	if err := cfg.ResolveDefaults(); err == nil {
		t.Fatal("expected error for postgres driver without DSN")
	}
}
