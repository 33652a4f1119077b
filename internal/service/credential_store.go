// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/MKhiriev/storefront-auth/internal/config"
	"github.com/MKhiriev/storefront-auth/internal/logger"
	"github.com/MKhiriev/storefront-auth/internal/store"
	"github.com/MKhiriev/storefront-auth/internal/utils"
	"github.com/MKhiriev/storefront-auth/internal/workers"
	"github.com/MKhiriev/storefront-auth/models"
)

// CredentialStore owns password hashing and every user write that involves
// a password. bcrypt runs on the shared worker pool.
type CredentialStore struct {
	users  store.UserRepository
	events store.SecurityEventRepository
	pool   *workers.Pool
	newID  func() string

	cost int
	skew time.Duration
	now  func() time.Time

	dummyHash func() ([]byte, error)
}

func NewCredentialStore(
	users store.UserRepository,
	events store.SecurityEventRepository,
	pool *workers.Pool,
	cfg config.App,
	now func() time.Time,
) *CredentialStore {
	c := &CredentialStore{
		users:  users,
		events: events,
		pool:   pool,
		newID:  utils.NewUserID,
		cost:   cfg.BcryptCost,
		skew:   cfg.PasswordChangeSkew,
		now:    now,
	}
	c.dummyHash = sync.OnceValues(func() ([]byte, error) {
		secret, err := utils.RandomHex(16)
		if err != nil {
			return nil, err
		}
		return bcrypt.GenerateFromPassword([]byte(secret), c.cost)
	})
	return c
}

// Create hashes password and inserts a new user holding the pending
// verification token.
func (c *CredentialStore) Create(ctx context.Context, name, email, password string, verification models.ActionToken) (models.User, error) {
	hash, err := c.hash(ctx, password)
	if err != nil {
		return models.User{}, err
	}

	expiry := verification.ExpiresAt
	user := models.User{
		ID:                    c.newID(),
		Email:                 email,
		Name:                  name,
		Role:                  models.RoleUser,
		PasswordHash:          hash,
		VerificationTokenHash: verification.Hash,
		VerificationExpiry:    &expiry,
		Active:                true,
		CreatedAt:             c.now(),
	}

	created, err := c.users.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, store.ErrEmailAlreadyExists) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, fmt.Errorf("error creating user: %w", err)
	}
	return created, nil
}

func (c *CredentialStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return c.users.FindActiveByEmail(ctx, email)
}

func (c *CredentialStore) FindByID(ctx context.Context, id string) (models.User, error) {
	return c.users.FindActiveByID(ctx, id)
}

// VerifyPassword reports whether candidate matches the stored hash. A
// mismatch is not an error; an error means the comparison never ran.
func (c *CredentialStore) VerifyPassword(ctx context.Context, user models.User, candidate string) (bool, error) {
	return c.compare(ctx, []byte(user.PasswordHash), candidate)
}

// DummyVerify spends the same bcrypt work as VerifyPassword against a hash
// no password matches. Used for logins to unknown emails.
func (c *CredentialStore) DummyVerify(ctx context.Context, candidate string) error {
	hash, err := c.dummyHash()
	if err != nil {
		return fmt.Errorf("error preparing dummy hash: %w", err)
	}
	_, err = c.compare(ctx, hash, candidate)
	return err
}

// UpdatePassword stores a new hash and moves passwordChangedAt forward,
// invalidating every session issued before it.
func (c *CredentialStore) UpdatePassword(ctx context.Context, user models.User, newPassword string) (models.User, error) {
	hash, err := c.hash(ctx, newPassword)
	if err != nil {
		return models.User{}, err
	}

	updated, err := c.users.UpdatePassword(ctx, user.ID, hash, c.nextPasswordChangedAt(user.PasswordChangedAt))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return models.User{}, ErrUnauthenticated
		}
		return models.User{}, fmt.Errorf("error updating password: %w", err)
	}
	return updated, nil
}

// ResetPassword consumes the reset token identified by tokenHash and sets
// the new password in the same statement. Returns store.ErrTokenNotFound
// if the token was used or expired in the meantime.
func (c *CredentialStore) ResetPassword(ctx context.Context, user models.User, tokenHash, newPassword string) (models.User, error) {
	hash, err := c.hash(ctx, newPassword)
	if err != nil {
		return models.User{}, err
	}

	now := c.now()
	return c.users.ConsumeResetToken(ctx, user.ID, tokenHash, hash, c.nextPasswordChangedAt(user.PasswordChangedAt), now)
}

// RecordLogin resets the failure counter after a matching password. When
// the account was locked after the lockout check ran, it returns an
// [AccountLockedError] and leaves the lock in place.
func (c *CredentialStore) RecordLogin(ctx context.Context, user models.User, ip string) error {
	now := c.now()
	err := c.users.RecordLogin(ctx, user.ID, ip, now)
	if !errors.Is(err, store.ErrUserNotFound) {
		return err
	}

	current, findErr := c.users.FindActiveByID(ctx, user.ID)
	if findErr != nil {
		if errors.Is(findErr, store.ErrUserNotFound) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("error re-reading user: %w", findErr)
	}
	if current.IsLocked(now) {
		return &AccountLockedError{Until: *current.LockUntil}
	}
	return ErrInvalidCredentials
}

// RecordEvent appends to the audit log. Failures are logged and swallowed.
func (c *CredentialStore) RecordEvent(ctx context.Context, user models.User, kind models.SecurityEventKind, ip, detail string) {
	event := models.SecurityEvent{
		UserID:    user.ID,
		Kind:      kind,
		Timestamp: c.now(),
		SourceIP:  ip,
		Detail:    detail,
	}
	if err := c.events.AppendEvent(ctx, event); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("user_id", user.ID).
			Str("kind", string(kind)).
			Msg("error recording security event")
	}
}

// nextPasswordChangedAt is now minus the skew, kept strictly after prev.
func (c *CredentialStore) nextPasswordChangedAt(prev *time.Time) time.Time {
	next := c.now().Add(-c.skew)
	if prev != nil && !next.After(*prev) {
		next = prev.Add(time.Millisecond)
	}
	return next
}

func (c *CredentialStore) hash(ctx context.Context, password string) (string, error) {
	var hash []byte
	err := c.pool.Do(ctx, func() error {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(password), c.cost)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	return string(hash), nil
}

func (c *CredentialStore) compare(ctx context.Context, hash []byte, candidate string) (bool, error) {
	var match bool
	err := c.pool.Do(ctx, func() error {
		match = bcrypt.CompareHashAndPassword(hash, []byte(candidate)) == nil
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("error comparing password: %w", err)
	}
	return match, nil
}
