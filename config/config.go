// Package config loads service settings: .env first, then struct defaults
// overlaid by environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	CatalogSourceDefaults = "defaults"
	CatalogSourceFile     = "file"
	CatalogSourceBucket   = "bucket"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Store     StoreConfig     `koanf:"store"`
	Log       LogConfig       `koanf:"log"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Sync      SyncConfig      `koanf:"sync"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
}

type ServerConfig struct {
	Port           int           `koanf:"port" validate:"min=1,max=65535"`
	AllowedOrigins string        `koanf:"allowed_origins"` // comma separated
	BodyLimit      int           `koanf:"body_limit" validate:"min=1024"`
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"min=1s"`
}

type DatabaseConfig struct {
	URL          string        `koanf:"url"`
	MaxOpenConns int           `koanf:"max_open_conns" validate:"min=1"`
	MaxIdleConns int           `koanf:"max_idle_conns" validate:"min=0"`
	ConnMaxLife  time.Duration `koanf:"conn_max_lifetime"`
}

type StoreConfig struct {
	Driver string `koanf:"driver" validate:"oneof=postgres memory"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// CatalogConfig says where the seed bundle comes from. The bucket fields
// address a Cloudflare R2 (S3 compatible) object.
type CatalogConfig struct {
	Source          string `koanf:"source" validate:"oneof=defaults file bucket"`
	File            string `koanf:"file"`
	AccountID       string `koanf:"account_id"`
	AccessKeyID     string `koanf:"access_key_id"`
	AccessKeySecret string `koanf:"access_key_secret"`
	Bucket          string `koanf:"bucket"`
	ObjectKey       string `koanf:"object_key"`
}

type SyncConfig struct {
	Enabled      bool          `koanf:"enabled"`
	ServiceURL   string        `koanf:"service_url"`
	EndpointPath string        `koanf:"endpoint_path"`
	ServiceToken string        `koanf:"service_token"`
	Interval     time.Duration `koanf:"interval" validate:"min=1s"`
}

type SchedulerConfig struct {
	ChallengeSweepInterval time.Duration `koanf:"challenge_sweep_interval" validate:"min=1s"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           5200,
			AllowedOrigins: "http://localhost:3000",
			BodyLimit:      1 << 20,
			RequestTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 25,
			MaxIdleConns: 5,
			ConnMaxLife:  30 * time.Minute,
		},
		Store:   StoreConfig{Driver: StoreDriverPostgres},
		Log:     LogConfig{Level: "info", Format: "json"},
		Catalog: CatalogConfig{Source: CatalogSourceDefaults, ObjectKey: "catalog/catalog.json"},
		Sync: SyncConfig{
			EndpointPath: "/api/v1/public/profiles",
			Interval:     time.Minute,
		},
		Scheduler: SchedulerConfig{ChallengeSweepInterval: 10 * time.Minute},
	}
}

// envMappings maps environment variable names (lower-cased) to config paths.
// Unlisted variables are ignored.
var envMappings = map[string]string{
	"port":                     "server.port",
	"allowed_origins":          "server.allowed_origins",
	"body_limit":               "server.body_limit",
	"request_timeout":          "server.request_timeout",
	"database_url":             "database.url",
	"db_max_open_conns":        "database.max_open_conns",
	"db_max_idle_conns":        "database.max_idle_conns",
	"db_conn_max_lifetime":     "database.conn_max_lifetime",
	"store_driver":             "store.driver",
	"log_level":                "log.level",
	"log_format":               "log.format",
	"catalog_source":           "catalog.source",
	"catalog_file":             "catalog.file",
	"cloudflare_account_id":    "catalog.account_id",
	"r2_access_key_id":         "catalog.access_key_id",
	"r2_access_key_secret":     "catalog.access_key_secret",
	"r2_bucket_name":           "catalog.bucket",
	"catalog_object_key":       "catalog.object_key",
	"sync_enabled":             "sync.enabled",
	"sync_service_url":         "sync.service_url",
	"sync_endpoint_path":       "sync.endpoint_path",
	"sync_service_token":       "sync.service_token",
	"sync_interval":            "sync.interval",
	"challenge_sweep_interval": "scheduler.challenge_sweep_interval",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// Load reads .env (if present) and builds the configuration.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	return loadFromEnv()
}

func loadFromEnv() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks field ranges and the settings each mode depends on.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Store.Driver == StoreDriverPostgres && c.Database.URL == "" {
		return errors.New("DATABASE_URL is required when STORE_DRIVER=postgres")
	}
	switch c.Catalog.Source {
	case CatalogSourceFile:
		if c.Catalog.File == "" {
			return errors.New("CATALOG_FILE is required when CATALOG_SOURCE=file")
		}
	case CatalogSourceBucket:
		if c.Catalog.AccountID == "" || c.Catalog.Bucket == "" {
			return errors.New("CLOUDFLARE_ACCOUNT_ID and R2_BUCKET_NAME are required when CATALOG_SOURCE=bucket")
		}
	}
	if c.Sync.Enabled && (c.Sync.ServiceURL == "" || c.Sync.ServiceToken == "") {
		return errors.New("SYNC_SERVICE_URL and SYNC_SERVICE_TOKEN are required when SYNC_ENABLED=true")
	}
	return nil
}

// Origins splits AllowedOrigins and trims each entry.
func (s ServerConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(s.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
