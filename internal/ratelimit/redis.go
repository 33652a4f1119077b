// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package ratelimit

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis is a fixed-window [Limiter] backed by INCR with an EXPIRE set on
// the first hit of each window.
type Redis struct {
	client redis.Cmdable
	rules  Rules
}

func NewRedis(client redis.Cmdable, rules Rules) *Redis {
	return &Redis{
		client: client,
		rules:  rules,
	}
}

func (l *Redis) Allow(ctx context.Context, key string, action Action) (Decision, error) {
	rule, err := l.rules.rule(action)
	if err != nil {
		return Decision{}, err
	}

	k := counterKey(action, key)

	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("error incrementing rate limit counter: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, k, rule.Window).Err(); err != nil {
			return Decision{}, fmt.Errorf("error setting rate limit window: %w", err)
		}
	}

	if count > int64(rule.Limit) {
		ttl, err := l.client.TTL(ctx, k).Result()
		if err != nil || ttl < 0 {
			// a key without expiry would block forever; restart its window
			_ = l.client.Expire(ctx, k, rule.Window).Err()
			ttl = rule.Window
		}
		return Decision{RetryAfter: ttl}, nil
	}

	return Decision{Allowed: true, Remaining: rule.Limit - int(count)}, nil
}
