// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/MKhiriev/storefront-auth/internal/utils"
)

const minTokenSignKeyLength = 32

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// HashPoolSize is the only field whose zero value is meaningful: it is
// resolved by the worker pool to the number of CPUs.
func (cfg *StructuredConfig) validate() error {
	if len(cfg.App.TokenSignKey) < minTokenSignKeyLength {
		return fmt.Errorf("%w: token sign key must be at least %d bytes", ErrInvalidAppConfigs, minTokenSignKeyLength)
	}
	if cfg.App.TokenDuration <= 0 {
		return fmt.Errorf("%w: token duration must be positive", ErrInvalidAppConfigs)
	}
	if cfg.App.BcryptCost < bcrypt.MinCost || cfg.App.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("%w: bcrypt cost must be in range %d-%d", ErrInvalidAppConfigs, bcrypt.MinCost, bcrypt.MaxCost)
	}

	if cfg.Security.LockoutThreshold < 1 || cfg.Security.LockoutDuration <= 0 {
		return fmt.Errorf("%w: lockout threshold and duration must be positive", ErrInvalidSecurityConfigs)
	}
	if cfg.Security.ResetTokenTTL <= 0 || cfg.Security.VerificationTokenTTL <= 0 {
		return fmt.Errorf("%w: action token lifetimes must be positive", ErrInvalidSecurityConfigs)
	}

	switch cfg.RateLimit.Backend {
	case RateLimitBackendMemory:
	case RateLimitBackendRedis:
		if cfg.RateLimit.RedisAddress == "" {
			return fmt.Errorf("%w: redis backend requires an address", ErrInvalidRateLimitConfigs)
		}
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidRateLimitConfigs, cfg.RateLimit.Backend)
	}
	if cfg.RateLimit.LoginLimit < 1 || cfg.RateLimit.SignupLimit < 1 || cfg.RateLimit.PasswordResetLimit < 1 {
		return fmt.Errorf("%w: limits must be positive", ErrInvalidRateLimitConfigs)
	}
	if cfg.RateLimit.LoginWindow <= 0 || cfg.RateLimit.SignupWindow <= 0 || cfg.RateLimit.PasswordResetWindow <= 0 {
		return fmt.Errorf("%w: windows must be positive", ErrInvalidRateLimitConfigs)
	}

	if cfg.Storage.DB.DSN == "" {
		return fmt.Errorf("%w: database DSN is required", ErrInvalidStorageConfigs)
	}

	if cfg.Server.HTTPAddress == "" || cfg.Server.RequestTimeout <= 0 {
		return fmt.Errorf("%w: http address and request timeout are required", ErrInvalidServerConfigs)
	}
	if _, err := utils.ParseTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidServerConfigs, err)
	}

	if cfg.Adapter.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request timeout must be positive", ErrInvalidAdapterConfigs)
	}

	if cfg.Workers.HashPoolSize < 0 || cfg.Workers.MailWorkers < 1 || cfg.Workers.MailQueueSize < 1 {
		return fmt.Errorf("%w: worker counts must be positive", ErrInvalidWorkerConfigs)
	}
	if cfg.Workers.TokenSweepInterval <= 0 || cfg.Workers.RateLimitPurgeInterval <= 0 || cfg.Workers.HealthProbeInterval <= 0 {
		return fmt.Errorf("%w: worker intervals must be positive", ErrInvalidWorkerConfigs)
	}

	return nil
}
