// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/storefront-auth/internal/config"
	"github.com/MKhiriev/storefront-auth/internal/logger"
	"github.com/MKhiriev/storefront-auth/internal/store"
	"github.com/MKhiriev/storefront-auth/models"
)

// LockoutPolicy moves accounts between Active and Locked. Locking happens
// in the failed-login increment itself; unlocking happens lazily on the
// next attempt after the window ends.
type LockoutPolicy struct {
	users       store.UserRepository
	credentials *CredentialStore
	threshold   int
	duration    time.Duration
}

func NewLockoutPolicy(users store.UserRepository, credentials *CredentialStore, cfg config.Security) *LockoutPolicy {
	return &LockoutPolicy{
		users:       users,
		credentials: credentials,
		threshold:   cfg.LockoutThreshold,
		duration:    cfg.LockoutDuration,
	}
}

// Admit returns an [AccountLockedError] while user is inside its lockout
// window. An elapsed lock is cleared first and the returned user reflects
// the reset counters.
func (p *LockoutPolicy) Admit(ctx context.Context, user models.User, now time.Time, ip string) (models.User, error) {
	if user.IsLocked(now) {
		return user, &AccountLockedError{Until: *user.LockUntil}
	}
	if !user.LockExpired(now) {
		return user, nil
	}

	unlocked, err := p.users.UnlockExpired(ctx, user.ID, now)
	if err != nil {
		return user, fmt.Errorf("error unlocking account: %w", err)
	}
	if unlocked {
		logger.FromContext(ctx).Info().Str("user_id", user.ID).Msg("account unlocked")
		p.credentials.RecordEvent(ctx, user, models.EventUnlock, ip, "")
	}

	user.LoginAttempts = 0
	user.AccountLocked = false
	user.LockUntil = nil
	return user, nil
}

// RegisterFailure counts a failed password for user and locks the account
// when the threshold is reached.
func (p *LockoutPolicy) RegisterFailure(ctx context.Context, user models.User, now time.Time, ip string) (models.LockoutState, error) {
	state, err := p.users.RegisterFailedLogin(ctx, user.ID, p.threshold, now.Add(p.duration), now)
	if err != nil {
		return models.LockoutState{}, fmt.Errorf("error registering failed login: %w", err)
	}

	p.credentials.RecordEvent(ctx, user, models.EventFailedLogin, ip, "")
	if state.JustLocked(p.threshold) {
		logger.FromContext(ctx).Warn().
			Str("user_id", user.ID).
			Time("lock_until", *state.LockUntil).
			Msg("account locked after repeated failed logins")
		p.credentials.RecordEvent(ctx, user, models.EventLock, ip, "")
	}
	return state, nil
}
