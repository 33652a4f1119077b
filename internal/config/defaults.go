// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "time"

// Default values applied to every field that no source has set.
const (
	DefaultHTTPAddress    = "localhost:8080"
	DefaultRequestTimeout = 30 * time.Second

	DefaultTokenIssuer        = "storefront-auth"
	DefaultTokenDuration      = 90 * 24 * time.Hour
	DefaultBcryptCost         = 12
	DefaultPasswordChangeSkew = time.Second
	DefaultVersion            = "dev"

	DefaultLockoutThreshold     = 5
	DefaultLockoutDuration      = 30 * time.Minute
	DefaultResetTokenTTL        = time.Hour
	DefaultVerificationTokenTTL = 24 * time.Hour

	DefaultLoginLimit          = 5
	DefaultLoginWindow         = 15 * time.Minute
	DefaultSignupLimit         = 3
	DefaultSignupWindow        = time.Hour
	DefaultPasswordResetLimit  = 3
	DefaultPasswordResetWindow = time.Hour

	DefaultAdapterRequestTimeout = 10 * time.Second

	DefaultMailWorkers            = 2
	DefaultMailQueueSize          = 128
	DefaultTokenSweepInterval     = 10 * time.Minute
	DefaultRateLimitPurgeInterval = time.Minute
	DefaultHealthProbeInterval    = 15 * time.Second
)

func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			TokenIssuer:        DefaultTokenIssuer,
			TokenDuration:      DefaultTokenDuration,
			BcryptCost:         DefaultBcryptCost,
			PasswordChangeSkew: DefaultPasswordChangeSkew,
			Version:            DefaultVersion,
		},
		Security: Security{
			LockoutThreshold:     DefaultLockoutThreshold,
			LockoutDuration:      DefaultLockoutDuration,
			ResetTokenTTL:        DefaultResetTokenTTL,
			VerificationTokenTTL: DefaultVerificationTokenTTL,
		},
		RateLimit: RateLimit{
			Backend:             RateLimitBackendMemory,
			LoginLimit:          DefaultLoginLimit,
			LoginWindow:         DefaultLoginWindow,
			SignupLimit:         DefaultSignupLimit,
			SignupWindow:        DefaultSignupWindow,
			PasswordResetLimit:  DefaultPasswordResetLimit,
			PasswordResetWindow: DefaultPasswordResetWindow,
		},
		Server: Server{
			HTTPAddress:    DefaultHTTPAddress,
			RequestTimeout: DefaultRequestTimeout,
		},
		Adapter: Adapter{
			RequestTimeout: DefaultAdapterRequestTimeout,
		},
		Workers: Workers{
			MailWorkers:            DefaultMailWorkers,
			MailQueueSize:          DefaultMailQueueSize,
			TokenSweepInterval:     DefaultTokenSweepInterval,
			RateLimitPurgeInterval: DefaultRateLimitPurgeInterval,
			HealthProbeInterval:    DefaultHealthProbeInterval,
		},
	}
}
