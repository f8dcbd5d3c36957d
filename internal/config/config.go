package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

const defaultSQLitePath = "rfs-tracking.db"

// Config contains runtime configuration required by the service.
type Config struct {
	Env         string `mapstructure:"APP_ENV"`
	HTTPAddr    string `mapstructure:"HTTP_ADDR"`
	StoreDriver string `mapstructure:"STORE_DRIVER"`
	// DBURL is a pgx DSN for postgres or a file path for sqlite.
	DBURL       string `mapstructure:"DB_URL"`
	APIName     string `mapstructure:"API_NAME"`
	CORSOrigins string `mapstructure:"CORS_ORIGINS"`
}

// Load reads .env (if present), then the environment. Env vars override .env.
func Load() (Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // a missing .env is fine

	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("STORE_DRIVER", DriverSQLite)
	v.SetDefault("DB_URL", "")
	v.SetDefault("API_NAME", "RFS Tracking API")
	v.SetDefault("CORS_ORIGINS", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.DBURL = strings.TrimSpace(cfg.DBURL)

	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return Config{}, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.StoreDriver == DriverSQLite && cfg.DBURL == "" {
		cfg.DBURL = defaultSQLitePath
	}

	switch cfg.StoreDriver {
	case DriverPostgres:
		if cfg.DBURL == "" {
			return Config{}, errors.New("config: DB_URL required for STORE_DRIVER=postgres")
		}
	case DriverSQLite, DriverMemory:
	default:
		return Config{}, fmt.Errorf("config: unknown STORE_DRIVER %q (want postgres, sqlite or memory)", cfg.StoreDriver)
	}

	return cfg, nil
}

// AllowedOrigins returns CORS_ORIGINS as a list. Empty means any origin.
func (c Config) AllowedOrigins() []string {
	if c.CORSOrigins == "" {
		return nil
	}
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
