// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package config

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, true},
		{"bad environment", func(c *Config) { c.Server.Environment = "prod" }, true},
		{"bad reader", func(c *Config) { c.Source.Reader = "spark" }, true},
		{"parquet via csv reader", func(c *Config) { c.Source.Reader = "csv"; c.Source.Format = "parquet" }, true},
		{"zero session gap", func(c *Config) { c.Source.SessionGap = 0 }, true},
		{"default_k above max_k", func(c *Config) { c.Index.DefaultK = 60 }, true},
		{"index name with separator", func(c *Config) { c.Index.Name = "a/b" }, true},
		{"negative weight", func(c *Config) { c.Index.BuyWeight = -1 }, true},
		{"all weights zero", func(c *Config) { c.Index.ViewWeight = 0; c.Index.BuyWeight = 0 }, true},
		{"view only", func(c *Config) { c.Index.BuyWeight = 0 }, false},
		{"negative cache size", func(c *Config) { c.Index.CacheSize = -1 }, true},
		{"cache without ttl", func(c *Config) { c.Index.CacheTTL = 0 }, true},
		{"cache disabled", func(c *Config) { c.Index.CacheSize = 0; c.Index.CacheTTL = 0 }, false},
		{"bad store", func(c *Config) { c.Store.Type = "redis" }, true},
		{"s3 store without s3", func(c *Config) { c.Store.Type = "s3" }, true},
		{"s3 store", func(c *Config) {
			c.Store.Type = "s3"
			c.S3.Enabled = true
			c.S3.Bucket = "artifacts"
		}, false},
		{"s3 without bucket", func(c *Config) { c.S3.Enabled = true }, true},
		{"s3 half credentials", func(c *Config) {
			c.S3.Enabled = true
			c.S3.Bucket = "b"
			c.S3.AccessKeyID = "key"
		}, true},
		{"s3 ok", func(c *Config) { c.S3.Enabled = true; c.S3.Bucket = "b" }, false},
		{"bad schedule", func(c *Config) { c.Rebuild.Schedule = "sometimes" }, true},
		{"bad schedule ignored when disabled", func(c *Config) {
			c.Rebuild.Enabled = false
			c.Rebuild.Schedule = "sometimes"
		}, false},
		{"cron expression", func(c *Config) { c.Rebuild.Schedule = "0 3 * * *" }, false},
		{"no eval ks", func(c *Config) { c.Eval.Ks = nil }, true},
		{"zero eval k", func(c *Config) { c.Eval.Ks = []int{0} }, true},
		{"rate limit zero", func(c *Config) { c.Security.RateLimitReqs = 0 }, true},
		{"rate limit disabled", func(c *Config) {
			c.Security.RateLimitDisabled = true
			c.Security.RateLimitReqs = 0
		}, false},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestServerConfig_Addr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8080}
	if got := s.Addr(); got != "127.0.0.1:8080" {
		t.Errorf("Addr() = %q", got)
	}
}
