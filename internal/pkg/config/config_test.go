package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.StoreDriver != StoreMongo || cfg.FriendshipMode != "directional" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Mongo.Database != "social_graph" || cfg.Mongo.Timeout != 10*time.Second {
		t.Errorf("unexpected mongo defaults: %+v", cfg.Mongo)
	}
	if cfg.Redis.Timeout != 5*time.Second {
		t.Errorf("unexpected redis timeout default: %v", cfg.Redis.Timeout)
	}
	if !cfg.Idempotency.Enabled || cfg.Idempotency.TTL != 24*time.Hour {
		t.Errorf("unexpected idempotency defaults: %+v", cfg.Idempotency)
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development by default")
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"PORT":                "9090",
		"ENV":                 "production",
		"STORE_DRIVER":        "memory",
		"FRIENDSHIP_MODE":     "mutual",
		"REDIS_DB":            "2",
		"REDIS_TIMEOUT":       "750ms",
		"IDEMPOTENCY_ENABLED": "false",
		"SHUTDOWN_TIMEOUT":    "3s",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" || cfg.StoreDriver != StoreMemory || cfg.FriendshipMode != "mutual" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Redis.DB != 2 || cfg.Redis.Timeout != 750*time.Millisecond || cfg.Idempotency.Enabled || cfg.ShutdownTimeout != 3*time.Second {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.IsDevelopment() {
		t.Error("expected production")
	}
}

func TestLoadWith_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"store driver":    {"STORE_DRIVER": "postgres"},
		"friendship mode": {"FRIENDSHIP_MODE": "symmetric"},
		"ttl":             {"IDEMPOTENCY_TTL": "0s"},
		"malformed int":   {"REDIS_DB": "one"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadWith(context.Background(), envconfig.MapLookuper(env)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
