// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateSource,
		c.validateIndex,
		c.validateStore,
		c.validateS3,
		c.validateTracking,
		c.validateRebuild,
		c.validateEval,
		c.validateSecurity,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("ENVIRONMENT must be development, staging or production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateSource() error {
	switch c.Source.Reader {
	case "duckdb", "csv":
	default:
		return fmt.Errorf("EVENTS_READER must be duckdb or csv, got %q", c.Source.Reader)
	}
	switch strings.ToLower(c.Source.Format) {
	case "", "csv", "parquet":
	default:
		return fmt.Errorf("EVENTS_FORMAT must be csv or parquet, got %q", c.Source.Format)
	}
	if c.Source.Reader == "csv" && strings.EqualFold(c.Source.Format, "parquet") {
		return fmt.Errorf("EVENTS_FORMAT=parquet requires EVENTS_READER=duckdb")
	}
	if c.Source.SessionGap <= 0 {
		return fmt.Errorf("SESSION_GAP must be positive")
	}
	if c.Source.Lookback < 0 {
		return fmt.Errorf("EVENTS_LOOKBACK must not be negative")
	}
	return nil
}

func (c *Config) validateIndex() error {
	if c.Index.Name == "" || strings.ContainsAny(c.Index.Name, `/\_ `) {
		return fmt.Errorf("INDEX_NAME must be non-empty and contain no path separators, underscores or spaces, got %q", c.Index.Name)
	}
	if c.Index.MaxK < 1 {
		return fmt.Errorf("MAX_K must be at least 1, got %d", c.Index.MaxK)
	}
	if c.Index.DefaultK < 1 || c.Index.DefaultK > c.Index.MaxK {
		return fmt.Errorf("DEFAULT_K must be between 1 and MAX_K (%d), got %d", c.Index.MaxK, c.Index.DefaultK)
	}
	if c.Index.TopK < 1 {
		return fmt.Errorf("TOPK must be at least 1, got %d", c.Index.TopK)
	}
	if c.Index.ViewWeight < 0 || c.Index.BuyWeight < 0 {
		return fmt.Errorf("VIEW_WEIGHT and BUY_WEIGHT must not be negative")
	}
	if c.Index.ViewWeight == 0 && c.Index.BuyWeight == 0 {
		return fmt.Errorf("at least one of VIEW_WEIGHT and BUY_WEIGHT must be positive")
	}
	if c.Index.CacheSize < 0 {
		return fmt.Errorf("QUERY_CACHE_SIZE must not be negative, got %d", c.Index.CacheSize)
	}
	if c.Index.CacheSize > 0 && c.Index.CacheTTL <= 0 {
		return fmt.Errorf("QUERY_CACHE_TTL must be positive when the cache is enabled")
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Type {
	case "file", "badger":
	case "s3":
		if !c.S3.Enabled {
			return fmt.Errorf("STORE_TYPE=s3 requires S3_ENABLED=true")
		}
	default:
		return fmt.Errorf("STORE_TYPE must be file, badger or s3, got %q", c.Store.Type)
	}
	if c.Store.Type != "s3" && c.Store.Path == "" {
		return fmt.Errorf("STORE_PATH is required")
	}
	if c.Store.Keep < 0 {
		return fmt.Errorf("STORE_KEEP must not be negative")
	}
	return nil
}

func (c *Config) validateS3() error {
	if !c.S3.Enabled {
		return nil
	}
	if c.S3.Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required when S3_ENABLED=true")
	}
	if c.S3.Region == "" {
		return fmt.Errorf("AWS_REGION is required when S3_ENABLED=true")
	}
	if (c.S3.AccessKeyID == "") != (c.S3.SecretAccessKey == "") {
		return fmt.Errorf("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set together")
	}
	return nil
}

func (c *Config) validateTracking() error {
	if c.Tracking.Enabled && c.Tracking.Path == "" {
		return fmt.Errorf("TRACKING_PATH is required when TRACKING_ENABLED=true")
	}
	return nil
}

func (c *Config) validateRebuild() error {
	if !c.Rebuild.Enabled {
		return nil
	}
	if _, err := cron.ParseStandard(c.Rebuild.Schedule); err != nil {
		return fmt.Errorf("REBUILD_SCHEDULE %q is invalid: %w", c.Rebuild.Schedule, err)
	}
	if c.Rebuild.Timeout <= 0 {
		return fmt.Errorf("REBUILD_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateEval() error {
	if len(c.Eval.Ks) == 0 {
		return fmt.Errorf("EVAL_KS must list at least one k")
	}
	for _, k := range c.Eval.Ks {
		if k < 1 {
			return fmt.Errorf("EVAL_KS values must be positive, got %d", k)
		}
	}
	if c.Eval.MaxGroups < 0 {
		return fmt.Errorf("EVAL_MAX_GROUPS must not be negative")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be trace, debug, info, warn or error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
