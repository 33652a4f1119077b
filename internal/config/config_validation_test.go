// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validatedDefaults() *StructuredConfig {
	cfg := defaultConfig()
	cfg.App.TokenSignKey = testSignKey
	cfg.Storage.DB.DSN = "file:auth.db"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *StructuredConfig)
		wantErr error
	}{
		{name: "valid defaults", mutate: func(*StructuredConfig) {}},
		{
			name:    "short sign key",
			mutate:  func(cfg *StructuredConfig) { cfg.App.TokenSignKey = "short" },
			wantErr: ErrInvalidAppConfigs,
		},
		{
			name:    "bcrypt cost too high",
			mutate:  func(cfg *StructuredConfig) { cfg.App.BcryptCost = 40 },
			wantErr: ErrInvalidAppConfigs,
		},
		{
			name:    "zero lockout threshold",
			mutate:  func(cfg *StructuredConfig) { cfg.Security.LockoutThreshold = 0 },
			wantErr: ErrInvalidSecurityConfigs,
		},
		{
			name:    "unknown rate limit backend",
			mutate:  func(cfg *StructuredConfig) { cfg.RateLimit.Backend = "memcached" },
			wantErr: ErrInvalidRateLimitConfigs,
		},
		{
			name:    "redis backend without address",
			mutate:  func(cfg *StructuredConfig) { cfg.RateLimit.Backend = RateLimitBackendRedis },
			wantErr: ErrInvalidRateLimitConfigs,
		},
		{
			name: "redis backend with address",
			mutate: func(cfg *StructuredConfig) {
				cfg.RateLimit.Backend = RateLimitBackendRedis
				cfg.RateLimit.RedisAddress = "localhost:6379"
			},
		},
		{
			name:    "empty dsn",
			mutate:  func(cfg *StructuredConfig) { cfg.Storage.DB.DSN = "" },
			wantErr: ErrInvalidStorageConfigs,
		},
		{
			name:    "malformed trusted proxy",
			mutate:  func(cfg *StructuredConfig) { cfg.Server.TrustedProxies = []string{"10.0.0.0/33"} },
			wantErr: ErrInvalidServerConfigs,
		},
		{
			name:   "trusted proxy ranges and addresses",
			mutate: func(cfg *StructuredConfig) { cfg.Server.TrustedProxies = []string{"10.0.0.0/8", "::1"} },
		},
		{
			name:    "empty http address",
			mutate:  func(cfg *StructuredConfig) { cfg.Server.HTTPAddress = "" },
			wantErr: ErrInvalidServerConfigs,
		},
		{
			name:    "zero adapter timeout",
			mutate:  func(cfg *StructuredConfig) { cfg.Adapter.RequestTimeout = 0 },
			wantErr: ErrInvalidAdapterConfigs,
		},
		{
			name:    "negative hash pool",
			mutate:  func(cfg *StructuredConfig) { cfg.Workers.HashPoolSize = -1 },
			wantErr: ErrInvalidWorkerConfigs,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validatedDefaults()
			tt.mutate(cfg)

			err := cfg.validate()

			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
