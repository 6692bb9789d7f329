// Package config loads worker configuration by layering defaults, an optional
// YAML file, and COURTSTATS_-prefixed environment variables.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds runtime configuration for the finalizer worker.
type Config struct {
	// DBURL is the Postgres connection string. Required.
	DBURL string `koanf:"db_url"`

	// RedisURL is the redis connection string for the queue and cache. Required.
	RedisURL string `koanf:"redis_url"`

	// RedisQueue names the finalization job list.
	RedisQueue string `koanf:"redis_queue"`

	// WorkerCount sets the number of concurrent job handlers; 1 disables the
	// worker pool.
	WorkerCount int `koanf:"worker_count"`

	// JobBufferSize bounds the in-flight job channel for concurrent mode.
	JobBufferSize int `koanf:"job_buffer_size"`

	// MetricsAddr is the prometheus listen address; empty disables the endpoint.
	MetricsAddr string `koanf:"metrics_addr"`

	// CacheTTLSeconds controls season-cache entry lifetime; 0 disables caching.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`
}

// defaults returns a Config with every optional field filled.
func defaults() Config {
	return Config{
		RedisQueue:      "finalize_games",
		WorkerCount:     1,
		JobBufferSize:   16,
		MetricsAddr:     ":9090",
		CacheTTLSeconds: 300,
	}
}

// Load builds a Config. Precedence (low -> high): defaults, YAML file named by
// COURTSTATS_CONFIG, environment variables (COURTSTATS_DB_URL, ...).
func Load() (*Config, error) {
	cfg := defaults()

	k := koanf.New(".")

	if path := os.Getenv("COURTSTATS_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	envProvider := env.Provider("COURTSTATS_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "courtstats_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.DBURL == "" {
		return nil, errors.New("db_url is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("redis_url is required")
	}
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	if cfg.JobBufferSize < 1 {
		cfg.JobBufferSize = 1
	}
	return &cfg, nil
}

// CacheTTL returns the season-cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
