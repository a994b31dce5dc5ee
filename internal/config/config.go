// Package config provides hierarchical configuration loading for codelore.
// Precedence: defaults < YAML file < environment variables.
package config

import "time"

// Config holds all runtime configuration for the codelore MCP server.
type Config struct {
	Logging   Logging   `yaml:"logging"`
	Cache     Cache     `yaml:"cache"`
	NATS      NATS      `yaml:"nats"`
	Engine    Engine    `yaml:"engine"`
	Telemetry Telemetry `yaml:"telemetry"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level       string `yaml:"level"`
	Service     string `yaml:"service"`
	Async       bool   `yaml:"async"`
	AsyncBuffer int    `yaml:"async_buffer"`
}

// Cache holds the three-tier cache configuration.
type Cache struct {
	L1MaxSizeMB int64         `yaml:"l1_max_size_mb"` // memory tier byte budget
	L2Path      string        `yaml:"l2_path"`        // sqlite file for the durable tier
	L3Enabled   bool          `yaml:"l3_enabled"`     // distributed tier is optional
	L3Bucket    string        `yaml:"l3_bucket"`      // JetStream KV bucket name
	L3Timeout   time.Duration `yaml:"l3_timeout"`     // per-op bound for the distributed tier
	TTL         time.Duration `yaml:"ttl"`            // default TTL for analysis entries
	PromoteTTL  time.Duration `yaml:"promote_ttl"`    // lifetime of promoted entries in faster tiers
}

// NATS holds the distributed tier's connection configuration.
type NATS struct {
	URL string `yaml:"url"`
}

// Engine holds analysis engine configuration.
type Engine struct {
	MaxParallel   int    `yaml:"max_parallel"`     // concurrent in-flight file analyses
	TopRankings   int    `yaml:"top_rankings"`     // top-N teaching-value ranking size
	MaxFileSizeKB int64  `yaml:"max_file_size_kb"` // scan allow-list size cap
	StateDir      string `yaml:"state_dir"`        // snapshot root for incremental baselines
}

// Telemetry holds OpenTelemetry export configuration.
type Telemetry struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"` // OTLP gRPC endpoint
}

// Defaults returns a Config with sensible default values for local use.
func Defaults() Config {
	return Config{
		Logging: Logging{
			Level:       "info",
			Service:     "codelore",
			AsyncBuffer: 1024,
		},
		Cache: Cache{
			L1MaxSizeMB: 64,
			L2Path:      ".codelore/cache.db",
			L3Bucket:    "codelore-analysis",
			L3Timeout:   2 * time.Second,
			TTL:         24 * time.Hour,
			PromoteTTL:  time.Hour,
		},
		NATS: NATS{
			URL: "nats://localhost:4222",
		},
		Engine: Engine{
			MaxParallel:   10,
			TopRankings:   20,
			MaxFileSizeKB: 512,
			StateDir:      ".codelore/state",
		},
		Telemetry: Telemetry{
			Endpoint: "localhost:4317",
		},
	}
}
