package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "codelore.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// The YAML file is optional; a missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Logging.Level, "CODELORE_LOG_LEVEL")
	setString(&cfg.Logging.Service, "CODELORE_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "CODELORE_LOG_ASYNC")
	setInt(&cfg.Logging.AsyncBuffer, "CODELORE_LOG_ASYNC_BUFFER")

	setInt64(&cfg.Cache.L1MaxSizeMB, "CODELORE_CACHE_L1_SIZE_MB")
	setString(&cfg.Cache.L2Path, "CODELORE_CACHE_L2_PATH")
	setBool(&cfg.Cache.L3Enabled, "CODELORE_CACHE_L3_ENABLED")
	setString(&cfg.Cache.L3Bucket, "CODELORE_CACHE_L3_BUCKET")
	setDuration(&cfg.Cache.L3Timeout, "CODELORE_CACHE_L3_TIMEOUT")
	setDuration(&cfg.Cache.TTL, "CODELORE_CACHE_TTL")
	setDuration(&cfg.Cache.PromoteTTL, "CODELORE_CACHE_PROMOTE_TTL")

	setString(&cfg.NATS.URL, "NATS_URL")

	setInt(&cfg.Engine.MaxParallel, "CODELORE_ENGINE_MAX_PARALLEL")
	setInt(&cfg.Engine.TopRankings, "CODELORE_ENGINE_TOP_RANKINGS")
	setInt64(&cfg.Engine.MaxFileSizeKB, "CODELORE_ENGINE_MAX_FILE_SIZE_KB")
	setString(&cfg.Engine.StateDir, "CODELORE_STATE_DIR")

	setBool(&cfg.Telemetry.Enabled, "CODELORE_TELEMETRY_ENABLED")
	setString(&cfg.Telemetry.Endpoint, "CODELORE_TELEMETRY_ENDPOINT")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Cache.L1MaxSizeMB < 1 {
		return errors.New("cache.l1_max_size_mb must be >= 1")
	}
	if cfg.Cache.L2Path == "" {
		return errors.New("cache.l2_path is required")
	}
	if cfg.Cache.L3Enabled && cfg.NATS.URL == "" {
		return errors.New("nats.url is required when cache.l3_enabled is set")
	}
	if cfg.Engine.MaxParallel < 1 {
		return errors.New("engine.max_parallel must be >= 1")
	}
	if cfg.Engine.StateDir == "" {
		return errors.New("engine.state_dir is required")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
