// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"os"
	"time"
)

// StructuredConfig is the top-level configuration container for the
// storefront-auth service. It aggregates all sub-configurations and is
// populated by merging values from environment variables, command-line flags,
// an optional JSON file and finally the built-in defaults.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds token signing parameters, password hashing cost and the
	// application version.
	App App `envPrefix:"APP_"`

	// Security holds lockout and action-token lifetimes as well as cookie
	// hardening switches.
	Security Security `envPrefix:"SECURITY_"`

	// RateLimit selects the rate-limit backend and per-action budgets.
	RateLimit RateLimit `envPrefix:"RATE_LIMIT_"`

	// Storage holds configuration for the user database.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds network address and timeout settings for the HTTP and
	// gRPC servers.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds configuration for the external mail service.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Workers holds sizing and scheduling of background workers.
	Workers Workers `envPrefix:"WORKERS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values that control session
// tokens, password hashing and versioning.
type App struct {
	// TokenSignKey is the HMAC secret used to sign and verify session tokens.
	// Env: APP_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the "iss" claim embedded in every issued session token.
	// Env: APP_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// TokenDuration specifies how long a session token remains valid.
	// Env: APP_TOKEN_DURATION
	TokenDuration time.Duration `env:"TOKEN_DURATION"`

	// BcryptCost is the bcrypt work factor used for password hashing.
	// Env: APP_BCRYPT_COST
	BcryptCost int `env:"BCRYPT_COST"`

	// PasswordChangeSkew is subtracted from "now" when recording a password
	// change so a token issued right after the change is not rejected
	// because of timestamp rounding.
	// Env: APP_PASSWORD_CHANGE_SKEW
	PasswordChangeSkew time.Duration `env:"PASSWORD_CHANGE_SKEW"`

	// Version is the semantic version string of the running application.
	// Exposed via the /api/version endpoint.
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Security holds account-protection policy parameters.
type Security struct {
	// LockoutThreshold is the number of consecutive failed logins that
	// locks an account.
	// Env: SECURITY_LOCKOUT_THRESHOLD
	LockoutThreshold int `env:"LOCKOUT_THRESHOLD"`

	// LockoutDuration is the length of the lockout window.
	// Env: SECURITY_LOCKOUT_DURATION
	LockoutDuration time.Duration `env:"LOCKOUT_DURATION"`

	// ResetTokenTTL is the lifetime of a password reset token.
	// Env: SECURITY_RESET_TOKEN_TTL
	ResetTokenTTL time.Duration `env:"RESET_TOKEN_TTL"`

	// VerificationTokenTTL is the lifetime of an email verification token.
	// Env: SECURITY_VERIFICATION_TOKEN_TTL
	VerificationTokenTTL time.Duration `env:"VERIFICATION_TOKEN_TTL"`

	// InsecureCookies drops the Secure attribute from the session and CSRF
	// cookies. Intended for local development over plain HTTP only.
	// Env: SECURITY_INSECURE_COOKIES
	InsecureCookies bool `env:"INSECURE_COOKIES"`
}

// Rate-limit backends.
const (
	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"
)

// RateLimit holds per-action fixed-window budgets and the counter backend.
type RateLimit struct {
	// Backend is either "memory" (single instance) or "redis" (shared).
	// Env: RATE_LIMIT_BACKEND
	Backend string `env:"BACKEND"`

	// RedisAddress is the host:port of the Redis server for the redis backend.
	// Env: RATE_LIMIT_REDIS_ADDRESS
	RedisAddress string `env:"REDIS_ADDRESS"`

	// RedisPassword is the optional Redis password.
	// Env: RATE_LIMIT_REDIS_PASSWORD
	RedisPassword string `env:"REDIS_PASSWORD"`

	// RedisDB is the Redis logical database number.
	// Env: RATE_LIMIT_REDIS_DB
	RedisDB int `env:"REDIS_DB"`

	// Env: RATE_LIMIT_LOGIN_LIMIT / RATE_LIMIT_LOGIN_WINDOW
	LoginLimit  int           `env:"LOGIN_LIMIT"`
	LoginWindow time.Duration `env:"LOGIN_WINDOW"`

	// Env: RATE_LIMIT_SIGNUP_LIMIT / RATE_LIMIT_SIGNUP_WINDOW
	SignupLimit  int           `env:"SIGNUP_LIMIT"`
	SignupWindow time.Duration `env:"SIGNUP_WINDOW"`

	// Env: RATE_LIMIT_PASSWORD_RESET_LIMIT / RATE_LIMIT_PASSWORD_RESET_WINDOW
	PasswordResetLimit  int           `env:"PASSWORD_RESET_LIMIT"`
	PasswordResetWindow time.Duration `env:"PASSWORD_RESET_WINDOW"`
}

// Storage groups the configuration for all storage backends used by the
// application.
type Storage struct {
	// DB holds the relational database connection settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the relational database backend.
type DB struct {
	// DSN is the Data Source Name of the user database. A postgres:// or
	// postgresql:// DSN selects PostgreSQL (pgx); a sqlite3:// or file: DSN
	// selects SQLite.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Server holds network and timeout settings for the inbound transport layer.
type Server struct {
	// HTTPAddress is the TCP address on which the HTTP server listens,
	// in "host:port" format (e.g. "0.0.0.0:8080").
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// GRPCAddress is the TCP address of the gRPC health endpoint.
	// Empty disables the gRPC server.
	// Env: SERVER_GRPC_ADDRESS
	GRPCAddress string `env:"GRPC_ADDRESS"`

	// RequestTimeout is the maximum duration allowed for a single inbound
	// request before the server cancels it (e.g. "30s", "1m").
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// TrustedProxies lists the CIDR ranges or addresses of reverse proxies
	// whose X-Forwarded-For and X-Real-IP headers are honoured. Requests from
	// any other peer are keyed on the socket address.
	// Env: SERVER_TRUSTED_PROXIES (comma separated)
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

// Adapter holds configuration for external integrations.
type Adapter struct {
	// MailServiceURL is the base URL of the mail delivery service. When
	// empty, outgoing mail is written to the log instead of being sent.
	// Env: ADAPTER_MAIL_SERVICE_URL
	MailServiceURL string `env:"MAIL_SERVICE_URL"`

	// RequestTimeout bounds a single call to the mail service.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Workers holds configuration for background worker processes.
type Workers struct {
	// HashPoolSize is the number of concurrent bcrypt operations.
	// Env: WORKERS_HASH_POOL_SIZE
	HashPoolSize int `env:"HASH_POOL_SIZE"`

	// MailWorkers is the number of goroutines delivering mail.
	// Env: WORKERS_MAIL_WORKERS
	MailWorkers int `env:"MAIL_WORKERS"`

	// MailQueueSize is the capacity of the outgoing mail queue.
	// Env: WORKERS_MAIL_QUEUE_SIZE
	MailQueueSize int `env:"MAIL_QUEUE_SIZE"`

	// TokenSweepInterval is how often expired action tokens are cleared.
	// Env: WORKERS_TOKEN_SWEEP_INTERVAL
	TokenSweepInterval time.Duration `env:"TOKEN_SWEEP_INTERVAL"`

	// RateLimitPurgeInterval is how often expired in-memory rate-limit
	// windows are dropped.
	// Env: WORKERS_RATE_LIMIT_PURGE_INTERVAL
	RateLimitPurgeInterval time.Duration `env:"RATE_LIMIT_PURGE_INTERVAL"`

	// HealthProbeInterval is how often the database is pinged for the
	// gRPC health status.
	// Env: WORKERS_HEALTH_PROBE_INTERVAL
	HealthProbeInterval time.Duration `env:"HEALTH_PROBE_INTERVAL"`
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (later sources override non-zero fields of earlier ones):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Fields left empty by every source receive their default value.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(os.Args[1:]).
		withJSON().
		withDefaults().
		build()
}
