// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package ratelimit counts requests per (client, action) in fixed windows.
//
// Two backends are available: an in-process [Memory] limiter for single
// instances and a [Redis] limiter whose counters are shared by every
// instance pointing at the same Redis.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MKhiriev/storefront-auth/internal/config"
	"github.com/MKhiriev/storefront-auth/internal/logger"
)

// Action names a rate-limited operation.
type Action string

const (
	ActionLogin  Action = "login"
	ActionSignup Action = "signup"
	// ActionPasswordReset covers both requesting and completing a reset.
	ActionPasswordReset Action = "password-reset"
)

// ErrUnknownAction is returned for an action without a configured rule.
var ErrUnknownAction = errors.New("no rate limit rule for action")

// Rule is a fixed-window budget: at most Limit requests per Window.
type Rule struct {
	Limit  int
	Window time.Duration
}

// Rules maps every limited action to its budget.
type Rules map[Action]Rule

// RulesFromConfig builds the per-action budgets from configuration.
func RulesFromConfig(cfg config.RateLimit) Rules {
	return Rules{
		ActionLogin:         {Limit: cfg.LoginLimit, Window: cfg.LoginWindow},
		ActionSignup:        {Limit: cfg.SignupLimit, Window: cfg.SignupWindow},
		ActionPasswordReset: {Limit: cfg.PasswordResetLimit, Window: cfg.PasswordResetWindow},
	}
}

// Decision is the outcome of one [Limiter.Allow] call.
type Decision struct {
	Allowed bool
	// Remaining is the number of requests left in the current window.
	Remaining int
	// RetryAfter is the time until the window resets. Set only when the
	// request was rejected.
	RetryAfter time.Duration
}

// Limiter counts one request for key under action and reports whether it
// fits the action's budget. The count is atomic per key.
type Limiter interface {
	Allow(ctx context.Context, key string, action Action) (Decision, error)
}

// New builds the limiter selected by cfg.Backend. The returned close
// function releases backend resources.
func New(ctx context.Context, cfg config.RateLimit, log *logger.Logger) (Limiter, func() error, error) {
	rules := RulesFromConfig(cfg)

	switch cfg.Backend {
	case config.RateLimitBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("error connecting to redis: %w", err)
		}
		log.Info().Str("address", cfg.RedisAddress).Msg("using redis rate limiter")
		return NewRedis(client, rules), client.Close, nil
	default:
		log.Info().Msg("using in-memory rate limiter")
		return NewMemory(rules, time.Now), func() error { return nil }, nil
	}
}

func (r Rules) rule(action Action) (Rule, error) {
	rule, ok := r[action]
	if !ok {
		return Rule{}, fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}
	return rule, nil
}

func counterKey(action Action, key string) string {
	return "ratelimit:" + string(action) + ":" + key
}
