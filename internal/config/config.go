// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

// Package config loads item2item configuration.
//
// Values are layered, later layers winning:
//
//  1. struct defaults (defaultConfig)
//  2. an optional YAML file (CONFIG_PATH, or config.yaml in the working
//     directory, or /etc/item2item/config.yaml)
//  3. environment variables, through the explicit mapping in
//     envTransformFunc
//
// A .env file in the working directory is loaded into the process
// environment before layer 3, so it behaves like real environment
// variables but never overrides them.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Source   SourceConfig   `koanf:"source"`
	Index    IndexConfig    `koanf:"index"`
	Store    StoreConfig    `koanf:"store"`
	S3       S3Config       `koanf:"s3"`
	Tracking TrackingConfig `koanf:"tracking"`
	Rebuild  RebuildConfig  `koanf:"rebuild"`
	Eval     EvalConfig     `koanf:"eval"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging or production
}

// SourceConfig locates the raw interaction log.
type SourceConfig struct {
	// Path to a CSV or Parquet file in the RetailRocket layout.
	Path string `koanf:"path"`

	// Reader is "duckdb" (CSV or Parquet through DuckDB) or "csv" (pure Go
	// CSV parsing). Default: duckdb
	Reader string `koanf:"reader"`

	// Format forces "csv" or "parquet" for the duckdb reader. Empty infers
	// it from the file extension.
	Format string `koanf:"format"`

	// SessionGap closes a visitor session after this much inactivity.
	// Default: 30m
	SessionGap time.Duration `koanf:"session_gap"`

	// Lookback keeps only events newer than now minus Lookback. Zero keeps
	// everything. Applies to the duckdb reader.
	Lookback time.Duration `koanf:"lookback"`
}

// IndexConfig controls query limits and blended scoring.
type IndexConfig struct {
	// Name is the artifact name under which snapshots are stored.
	Name string `koanf:"name"`

	// DefaultK is used when a request gives no k.
	DefaultK int `koanf:"default_k"`

	// MaxK caps k on the HTTP API.
	MaxK int `koanf:"max_k"`

	// TopK is the list length exported per item by the upload command.
	TopK int `koanf:"topk"`

	ViewWeight float64 `koanf:"view_weight"`
	BuyWeight  float64 `koanf:"buy_weight"`

	// CacheSize bounds the blended recommendations cache. 0 disables it.
	CacheSize int           `koanf:"cache_size"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`
}

// StoreConfig selects where index snapshots are persisted.
type StoreConfig struct {
	// Type is "file", "badger" or "s3". Path is ignored for s3.
	Type string `koanf:"type"`
	Path string `koanf:"path"`

	// Keep is the number of versions retained after each save. Zero keeps
	// all versions.
	Keep int `koanf:"keep"`
}

// S3Config configures artifact upload.
type S3Config struct {
	Enabled         bool   `koanf:"enabled"`
	Region          string `koanf:"region"`
	Bucket          string `koanf:"bucket"`
	Prefix          string `koanf:"prefix"`
	Endpoint        string `koanf:"endpoint"` // S3-compatible endpoint such as MinIO
	AccessKeyID     string `koanf:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key"`
	UsePathStyle    bool   `koanf:"use_path_style"`
	CreateBucket    bool   `koanf:"create_bucket"`
}

// TrackingConfig configures the DuckDB run tracker.
type TrackingConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// RebuildConfig schedules index rebuilds in server mode.
type RebuildConfig struct {
	Enabled bool `koanf:"enabled"`

	// Schedule is a cron expression or descriptor such as "@every 24h".
	Schedule string `koanf:"schedule"`

	OnStartup bool          `koanf:"on_startup"`
	Timeout   time.Duration `koanf:"timeout"`
}

// EvalConfig configures offline evaluation.
type EvalConfig struct {
	Ks []int `koanf:"ks"`

	// MaxGroups caps the number of groups evaluated per kind. Zero
	// evaluates all groups.
	MaxGroups  int    `koanf:"max_groups"`
	ReportPath string `koanf:"report_path"`
}

// SecurityConfig holds HTTP hardening settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is json or console. Default: json
	Format string `koanf:"format"`

	// Caller includes file:line in every entry.
	Caller bool `koanf:"caller"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
