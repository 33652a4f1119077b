// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"time"

	"github.com/MKhiriev/storefront-auth/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// UserRepository persists users. Every read skips inactive users, and every
// multi-field mutation is a single conditional statement so concurrent
// requests for the same user cannot interleave.
type UserRepository interface {
	// CreateUser inserts user, including any pending verification token
	// hash. Returns [ErrEmailAlreadyExists] on a duplicate email.
	CreateUser(ctx context.Context, user models.User) (models.User, error)

	FindActiveByEmail(ctx context.Context, email string) (models.User, error)
	FindActiveByID(ctx context.Context, id string) (models.User, error)

	// FindActiveByResetToken returns the user holding tokenHash as a reset
	// token that has not expired at now. Returns [ErrTokenNotFound] otherwise.
	FindActiveByResetToken(ctx context.Context, tokenHash string, now time.Time) (models.User, error)

	// UpdatePassword stores a new hash and advances password_changed_at.
	UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) (models.User, error)

	// RegisterFailedLogin increments the failure counter and locks the
	// account until lockUntil once the counter reaches threshold.
	RegisterFailedLogin(ctx context.Context, id string, threshold int, lockUntil, now time.Time) (models.LockoutState, error)

	// UnlockExpired clears the lock if its window ended at or before now.
	// Reports whether this call performed the unlock.
	UnlockExpired(ctx context.Context, id string, now time.Time) (bool, error)

	// RecordLogin resets the failure counter and stamps the last login.
	// It returns ErrUserNotFound when the account is missing or inside a
	// live lock.
	RecordLogin(ctx context.Context, id, ip string, now time.Time) error

	SetResetToken(ctx context.Context, id, tokenHash string, expiry time.Time) error

	// ConsumeResetToken atomically clears the reset token of user id and
	// stores the new password hash, provided the token still matches and
	// has not expired. Returns [ErrTokenNotFound] otherwise.
	ConsumeResetToken(ctx context.Context, id, tokenHash, passwordHash string, changedAt, now time.Time) (models.User, error)

	SetVerificationToken(ctx context.Context, id, tokenHash string, expiry time.Time) error

	// ConsumeVerificationToken atomically marks the owner's email as
	// verified and clears the token. Returns [ErrTokenNotFound] if no
	// active user holds a non-expired matching token.
	ConsumeVerificationToken(ctx context.Context, tokenHash string, now time.Time) (models.User, error)

	// PurgeExpiredActionTokens clears reset and verification token hashes
	// that expired before now and returns the number of cleared tokens.
	PurgeExpiredActionTokens(ctx context.Context, now time.Time) (int64, error)
}

// SecurityEventRepository is the append-only audit log.
type SecurityEventRepository interface {
	AppendEvent(ctx context.Context, event models.SecurityEvent) error

	// ListEvents returns up to limit most recent events of userID, newest
	// first.
	ListEvents(ctx context.Context, userID string, limit uint64) ([]models.SecurityEvent, error)
}
