// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package service holds the auth business logic: the credential store,
// session and action tokens, the lockout policy and the AuthService that
// orchestrates them.
package service

import (
	"context"
	"time"

	"github.com/MKhiriev/storefront-auth/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock -exclude_interfaces=AuthServiceWrapper

// AuthService is the orchestrator behind every /auth route. Each operation
// returns either its result or one of the errors in errors.go; store and
// driver errors never escape unwrapped.
type AuthService interface {
	// Signup creates a user with role user and an unverified email, queues
	// the verification mail and opens a session.
	Signup(ctx context.Context, req models.SignupRequest, clientIP string) (models.Session, error)

	// Login checks lockout, then the password, and opens a session.
	Login(ctx context.Context, req models.LoginRequest, clientIP string) (models.Session, error)

	// Logout records a logout event when user is known. Session tokens are
	// stateless; the transport expires the client's cookie.
	Logout(ctx context.Context, user *models.User, clientIP string) error

	ChangePassword(ctx context.Context, user models.User, req models.ChangePasswordRequest, clientIP string) (models.Session, error)

	// ForgotPassword never reports whether the email exists.
	ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest, clientIP string) error

	ResetPassword(ctx context.Context, token string, req models.ResetPasswordRequest, clientIP string) (models.Session, error)

	// ValidateSession verifies token and returns its live owner.
	ValidateSession(ctx context.Context, token string) (models.User, error)

	// RestrictTo returns [ErrForbidden] unless user has one of roles.
	RestrictTo(user models.User, roles ...models.Role) error

	VerifyEmail(ctx context.Context, token string, clientIP string) (models.User, error)

	// RefreshSession issues a new session token for an authenticated user.
	RefreshSession(ctx context.Context, user models.User) (models.Session, error)

	ListSecurityEvents(ctx context.Context, userID string, limit uint64) ([]models.SecurityEvent, error)

	// SessionDuration is the lifetime of issued session tokens.
	SessionDuration() time.Duration
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}

// AuthServiceWrapper decorates an AuthService, for example with request
// validation.
type AuthServiceWrapper interface {
	Wrap(AuthService) AuthService
}

// MailQueue accepts outgoing action-token mail without blocking.
type MailQueue interface {
	Enqueue(msg models.MailMessage) error
}
