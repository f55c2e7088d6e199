// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/item2item/config.yaml",
	"/etc/item2item/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotEnvPath is the dotenv file loaded before environment variables are read.
var DotEnvPath = ".env"

// defaultConfig returns a Config with every default applied. The file and
// environment layers override these.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Source: SourceConfig{
			Path:       "data/events.csv",
			Reader:     "duckdb",
			SessionGap: 30 * time.Minute,
		},
		Index: IndexConfig{
			Name:       "item2item",
			DefaultK:   10,
			MaxK:       50,
			TopK:       50,
			ViewWeight: 1.0,
			BuyWeight:  3.0,
			CacheSize:  10000,
			CacheTTL:   5 * time.Minute,
		},
		Store: StoreConfig{
			Type: "file",
			Path: "data/artifacts",
			Keep: 5,
		},
		S3: S3Config{
			Enabled: false,
			Region:  "eu-west-2",
			Prefix:  "retailrocket-item2item",
		},
		Tracking: TrackingConfig{
			Enabled: true,
			Path:    "data/runs.duckdb",
		},
		Rebuild: RebuildConfig{
			Enabled:   true,
			Schedule:  "@every 24h",
			OnStartup: true,
			Timeout:   30 * time.Minute,
		},
		Eval: EvalConfig{
			Ks:         []int{10, 20, 50},
			MaxGroups:  50000,
			ReportPath: "data/eval_report.json",
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf loads configuration from defaults, an optional YAML file,
// a .env file and the environment, then validates it.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment. godotenv.Load never overrides variables that
	// are already set.
	if err := godotenv.Load(DotEnvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", DotEnvPath, err)
	}
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
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

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths may arrive from the environment as comma-separated strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// intSliceConfigPaths are comma-separated integer lists.
var intSliceConfigPaths = []string{
	"eval.ks",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		parts, ok := splitIfString(k.Get(path))
		if !ok || len(parts) == 0 {
			continue
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}

	for _, path := range intSliceConfigPaths {
		parts, ok := splitIfString(k.Get(path))
		if !ok || len(parts) == 0 {
			continue
		}
		ints := make([]int, 0, len(parts))
		for _, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil {
				return fmt.Errorf("%s: %q is not an integer", path, p)
			}
			ints = append(ints, n)
		}
		if err := k.Set(path, ints); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// splitIfString splits a comma-separated string value. Values that are
// already slices (from YAML) report ok=false.
func splitIfString(val interface{}) ([]string, bool) {
	s, ok := val.(string)
	if !ok || s == "" {
		return nil, false
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts, true
}

// envMappings maps lower-cased environment variable names to koanf paths.
// Unmapped variables are ignored so unrelated environment does not leak
// into configuration. VIEW_WEIGHT, BUY_WEIGHT, TOPK, AWS_REGION, S3_BUCKET
// and S3_PREFIX keep the names used by the batch scripts.
var envMappings = map[string]string{
	// Server
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Source
	"events_path":     "source.path",
	"events_reader":   "source.reader",
	"events_format":   "source.format",
	"session_gap":     "source.session_gap",
	"events_lookback": "source.lookback",

	// Index
	"index_name":  "index.name",
	"default_k":   "index.default_k",
	"max_k":       "index.max_k",
	"topk":        "index.topk",
	"view_weight": "index.view_weight",
	"buy_weight":  "index.buy_weight",

	"query_cache_size": "index.cache_size",
	"query_cache_ttl":  "index.cache_ttl",

	// Store
	"store_type": "store.type",
	"store_path": "store.path",
	"store_keep": "store.keep",

	// S3
	"s3_enabled":            "s3.enabled",
	"aws_region":            "s3.region",
	"s3_bucket":             "s3.bucket",
	"s3_prefix":             "s3.prefix",
	"s3_endpoint":           "s3.endpoint",
	"aws_access_key_id":     "s3.access_key_id",
	"aws_secret_access_key": "s3.secret_access_key",
	"s3_use_path_style":     "s3.use_path_style",
	"s3_create_bucket":      "s3.create_bucket",

	// Tracking
	"tracking_enabled": "tracking.enabled",
	"tracking_path":    "tracking.path",

	// Rebuild
	"rebuild_enabled":    "rebuild.enabled",
	"rebuild_schedule":   "rebuild.schedule",
	"rebuild_on_startup": "rebuild.on_startup",
	"rebuild_timeout":    "rebuild.timeout",

	// Eval
	"eval_ks":           "eval.ks",
	"eval_max_sessions": "eval.max_groups",
	"eval_max_groups":   "eval.max_groups",
	"eval_report_path":  "eval.report_path",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to a koanf path.
// It returns "" for variables that are not configuration.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
