// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// User represents a storefront account.
// It contains identity attributes, credential bookkeeping, verification and
// reset token state, and lockout counters.
// Sensitive fields must never be exposed outside trusted boundaries: every
// credential or token field is excluded from JSON.
type User struct {
	// ID is the unique identifier of the user (UUIDv7, string form).
	ID string `json:"id"`

	// Email is the unique, lowercase-normalized email address used to log in.
	Email string `json:"email"`

	// Name is the display name of the user.
	Name string `json:"name"`

	// Role is the authorization role of the account.
	Role Role `json:"role"`

	// PasswordHash stores the bcrypt hash of the password.
	// It is never serialized.
	PasswordHash string `json:"-"`

	// PasswordChangedAt is set on every successful password change and is
	// used to invalidate session tokens issued before it.
	PasswordChangedAt *time.Time `json:"-"`

	// EmailVerified reports whether the verification token was consumed.
	EmailVerified bool `json:"emailVerified"`

	// VerificationTokenHash is the SHA-256 hash of the pending email
	// verification token. Empty when no token is pending.
	VerificationTokenHash string `json:"-"`

	// VerificationExpiry is the absolute expiry of the pending verification token.
	VerificationExpiry *time.Time `json:"-"`

	// PasswordResetTokenHash is the SHA-256 hash of the pending password
	// reset token. Empty when no token is pending.
	PasswordResetTokenHash string `json:"-"`

	// PasswordResetExpiry is the absolute expiry of the pending reset token.
	PasswordResetExpiry *time.Time `json:"-"`

	// LoginAttempts counts consecutive failed logins since the last success
	// or unlock.
	LoginAttempts int `json:"-"`

	// AccountLocked is true while the account is in the Locked state.
	AccountLocked bool `json:"-"`

	// LockUntil is the end of the lockout window. Set only while locked.
	LockUntil *time.Time `json:"-"`

	// LastLogin is the time of the last successful login.
	LastLogin *time.Time `json:"lastLogin,omitempty"`

	// LastLoginIP is the client IP of the last successful login.
	LastLoginIP string `json:"-"`

	// Active is the soft-delete flag. Inactive users are invisible to every
	// read path.
	Active bool `json:"-"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is the timestamp of the last modification.
	UpdatedAt time.Time `json:"-"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}

// IsLocked reports whether the account is inside its lockout window at now.
func (u User) IsLocked(now time.Time) bool {
	return u.AccountLocked && u.LockUntil != nil && now.Before(*u.LockUntil)
}

// LockExpired reports whether the account is flagged as locked but its
// lockout window has already elapsed, meaning it must be unlocked lazily.
func (u User) LockExpired(now time.Time) bool {
	return u.AccountLocked && (u.LockUntil == nil || !now.Before(*u.LockUntil))
}

// ChangedPasswordAfter reports whether the password was changed after the
// moment a session token was issued.
func (u User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.After(issuedAt)
}
