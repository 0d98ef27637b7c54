package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 5200 {
		t.Errorf("Server.Port = %d, want 5200", cfg.Server.Port)
	}
	if cfg.Store.Driver != StoreDriverPostgres {
		t.Errorf("Store.Driver = %q, want postgres", cfg.Store.Driver)
	}
	if cfg.Catalog.Source != CatalogSourceDefaults {
		t.Errorf("Catalog.Source = %q, want defaults", cfg.Catalog.Source)
	}
	if cfg.Scheduler.ChallengeSweepInterval != 10*time.Minute {
		t.Errorf("ChallengeSweepInterval = %v, want 10m", cfg.Scheduler.ChallengeSweepInterval)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("PORT", "8080")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SYNC_INTERVAL", "90s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := loadFromEnv()
	if err != nil {
		t.Fatalf("loadFromEnv: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Sync.Interval != 90*time.Second {
		t.Errorf("Sync.Interval = %v, want 90s", cfg.Sync.Interval)
	}
	origins := cfg.Server.Origins()
	if len(origins) != 2 || origins[1] != "https://b.example" {
		t.Errorf("Origins() = %v", origins)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"memory store needs no database", func(c *Config) { c.Store.Driver = StoreDriverMemory }, ""},
		{"postgres without url", func(c *Config) {}, "DATABASE_URL"},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mongo" }, "Driver"},
		{"file source without path", func(c *Config) {
			c.Store.Driver = StoreDriverMemory
			c.Catalog.Source = CatalogSourceFile
		}, "CATALOG_FILE"},
		{"bucket source without bucket", func(c *Config) {
			c.Store.Driver = StoreDriverMemory
			c.Catalog.Source = CatalogSourceBucket
		}, "R2_BUCKET_NAME"},
		{"sync without token", func(c *Config) {
			c.Store.Driver = StoreDriverMemory
			c.Sync.Enabled = true
			c.Sync.ServiceURL = "http://profiles"
		}, "SYNC_SERVICE_TOKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
