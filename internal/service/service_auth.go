// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/storefront-auth/internal/config"
	"github.com/MKhiriev/storefront-auth/internal/logger"
	"github.com/MKhiriev/storefront-auth/internal/store"
	"github.com/MKhiriev/storefront-auth/internal/validators"
	"github.com/MKhiriev/storefront-auth/models"
)

const (
	defaultEventsLimit = 50
	maxEventsLimit     = 500
)

// authService is the concrete implementation of AuthService. Request bodies
// reach it already validated by AuthValidationService.
type authService struct {
	users       store.UserRepository
	events      store.SecurityEventRepository
	credentials *CredentialStore
	tokens      *TokenService
	lockout     *LockoutPolicy
	mail        MailQueue

	resetTokenTTL        time.Duration
	verificationTokenTTL time.Duration

	now    func() time.Time
	logger *logger.Logger
}

// AuthDeps are the collaborators of the auth service.
type AuthDeps struct {
	Users       store.UserRepository
	Events      store.SecurityEventRepository
	Credentials *CredentialStore
	Tokens      *TokenService
	Lockout     *LockoutPolicy
	Mail        MailQueue
	Now         func() time.Time
}

func NewAuthService(deps AuthDeps, cfg config.Security, logger *logger.Logger) AuthService {
	return &authService{
		users:                deps.Users,
		events:               deps.Events,
		credentials:          deps.Credentials,
		tokens:               deps.Tokens,
		lockout:              deps.Lockout,
		mail:                 deps.Mail,
		resetTokenTTL:        cfg.ResetTokenTTL,
		verificationTokenTTL: cfg.VerificationTokenTTL,
		now:                  deps.Now,
		logger:               logger,
	}
}

func (a *authService) Signup(ctx context.Context, req models.SignupRequest, clientIP string) (models.Session, error) {
	log := logger.FromContext(ctx)
	email := validators.NormalizeEmail(req.Email)

	verification, err := a.tokens.IssueActionToken(models.ActionEmailVerification, a.verificationTokenTTL)
	if err != nil {
		return models.Session{}, err
	}

	user, err := a.credentials.Create(ctx, req.Name, email, req.Password, verification)
	if err != nil {
		if !errors.Is(err, ErrDuplicateEmail) {
			log.Err(err).Str("func", "*authService.Signup").Msg("error creating user")
		}
		return models.Session{}, err
	}
	log.Info().Str("user_id", user.ID).Msg("user signed up")

	a.sendMail(ctx, models.MailMessage{To: user.Email, Kind: models.ActionEmailVerification, Token: verification.Plaintext})

	return a.openSession(user)
}

func (a *authService) Login(ctx context.Context, req models.LoginRequest, clientIP string) (models.Session, error) {
	log := logger.FromContext(ctx)
	email := validators.NormalizeEmail(req.Email)

	user, err := a.credentials.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			log.Err(err).Str("func", "*authService.Login").Msg("error looking up user")
			return models.Session{}, fmt.Errorf("error looking up user: %w", err)
		}
		if err := a.credentials.DummyVerify(ctx, req.Password); err != nil {
			return models.Session{}, err
		}
		return models.Session{}, ErrInvalidCredentials
	}

	now := a.now()
	user, err = a.lockout.Admit(ctx, user, now, clientIP)
	if err != nil {
		var locked *AccountLockedError
		if errors.As(err, &locked) {
			log.Info().Str("user_id", user.ID).Msg("login rejected, account locked")
			return models.Session{}, err
		}
		log.Err(err).Str("func", "*authService.Login").Msg("error checking lockout")
		return models.Session{}, err
	}

	ok, err := a.credentials.VerifyPassword(ctx, user, req.Password)
	if err != nil {
		return models.Session{}, err
	}
	if !ok {
		if _, err := a.lockout.RegisterFailure(ctx, user, now, clientIP); err != nil {
			log.Err(err).Str("func", "*authService.Login").Msg("error registering failed login")
			return models.Session{}, err
		}
		return models.Session{}, ErrInvalidCredentials
	}

	if err := a.credentials.RecordLogin(ctx, user, clientIP); err != nil {
		var locked *AccountLockedError
		if errors.As(err, &locked) {
			log.Info().Str("user_id", user.ID).Msg("login rejected, account locked during password check")
			return models.Session{}, err
		}
		if errors.Is(err, ErrInvalidCredentials) {
			return models.Session{}, err
		}
		log.Err(err).Str("func", "*authService.Login").Msg("error recording login")
		return models.Session{}, fmt.Errorf("error recording login: %w", err)
	}
	a.credentials.RecordEvent(ctx, user, models.EventLogin, clientIP, "")

	user.LoginAttempts = 0
	user.LastLogin = &now
	user.LastLoginIP = clientIP

	return a.openSession(user)
}

func (a *authService) Logout(ctx context.Context, user *models.User, clientIP string) error {
	if user != nil {
		a.credentials.RecordEvent(ctx, *user, models.EventLogout, clientIP, "")
	}
	return nil
}

func (a *authService) ChangePassword(ctx context.Context, user models.User, req models.ChangePasswordRequest, clientIP string) (models.Session, error) {
	log := logger.FromContext(ctx)

	ok, err := a.credentials.VerifyPassword(ctx, user, req.PasswordCurrent)
	if err != nil {
		return models.Session{}, err
	}
	if !ok {
		return models.Session{}, ErrIncorrectCurrentPassword
	}

	updated, err := a.credentials.UpdatePassword(ctx, user, req.Password)
	if err != nil {
		log.Err(err).Str("func", "*authService.ChangePassword").Msg("error updating password")
		return models.Session{}, err
	}
	a.credentials.RecordEvent(ctx, updated, models.EventPasswordChange, clientIP, "")

	return a.openSession(updated)
}

func (a *authService) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest, clientIP string) error {
	log := logger.FromContext(ctx)
	email := validators.NormalizeEmail(req.Email)

	user, err := a.credentials.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			log.Err(err).Str("func", "*authService.ForgotPassword").Msg("error looking up user")
		}
		return nil
	}

	reset, err := a.tokens.IssueActionToken(models.ActionPasswordReset, a.resetTokenTTL)
	if err != nil {
		log.Err(err).Str("func", "*authService.ForgotPassword").Msg("error issuing reset token")
		return nil
	}
	if err := a.users.SetResetToken(ctx, user.ID, reset.Hash, reset.ExpiresAt); err != nil {
		log.Err(err).Str("func", "*authService.ForgotPassword").Msg("error storing reset token")
		return nil
	}
	a.credentials.RecordEvent(ctx, user, models.EventResetRequest, clientIP, "")

	a.sendMail(ctx, models.MailMessage{To: user.Email, Kind: models.ActionPasswordReset, Token: reset.Plaintext})
	return nil
}

func (a *authService) ResetPassword(ctx context.Context, token string, req models.ResetPasswordRequest, clientIP string) (models.Session, error) {
	log := logger.FromContext(ctx)

	user, err := a.tokens.ConsumeActionToken(ctx, models.ActionPasswordReset, token,
		func(ctx context.Context, hash string) (models.User, error) {
			owner, err := a.users.FindActiveByResetToken(ctx, hash, a.now())
			if err != nil {
				return models.User{}, err
			}
			return a.credentials.ResetPassword(ctx, owner, hash, req.Password)
		})
	if err != nil {
		if !errors.Is(err, ErrInvalidOrExpiredToken) {
			log.Err(err).Str("func", "*authService.ResetPassword").Msg("error resetting password")
		}
		return models.Session{}, err
	}
	a.credentials.RecordEvent(ctx, user, models.EventResetComplete, clientIP, "")

	return a.openSession(user)
}

func (a *authService) ValidateSession(ctx context.Context, tokenString string) (models.User, error) {
	token, err := a.tokens.Verify(tokenString)
	if err != nil {
		return models.User{}, err
	}

	user, err := a.credentials.FindByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return models.User{}, fmt.Errorf("%w: user no longer exists", ErrUnauthenticated)
		}
		return models.User{}, fmt.Errorf("error looking up session owner: %w", err)
	}

	if user.ChangedPasswordAfter(token.IssuedAt) {
		return models.User{}, fmt.Errorf("%w: password changed after token was issued", ErrUnauthenticated)
	}
	return user, nil
}

func (a *authService) RestrictTo(user models.User, roles ...models.Role) error {
	if !user.Role.In(roles...) {
		return ErrForbidden
	}
	return nil
}

func (a *authService) VerifyEmail(ctx context.Context, token string, clientIP string) (models.User, error) {
	user, err := a.tokens.ConsumeActionToken(ctx, models.ActionEmailVerification, token,
		func(ctx context.Context, hash string) (models.User, error) {
			return a.users.ConsumeVerificationToken(ctx, hash, a.now())
		})
	if err != nil {
		return models.User{}, err
	}
	a.credentials.RecordEvent(ctx, user, models.EventEmailVerified, clientIP, "")
	return user, nil
}

func (a *authService) RefreshSession(ctx context.Context, user models.User) (models.Session, error) {
	return a.openSession(user)
}

func (a *authService) ListSecurityEvents(ctx context.Context, userID string, limit uint64) ([]models.SecurityEvent, error) {
	if _, err := a.credentials.FindByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	switch {
	case limit == 0:
		limit = defaultEventsLimit
	case limit > maxEventsLimit:
		limit = maxEventsLimit
	}

	events, err := a.events.ListEvents(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing security events: %w", err)
	}
	return events, nil
}

func (a *authService) SessionDuration() time.Duration {
	return a.tokens.Duration()
}

func (a *authService) openSession(user models.User) (models.Session, error) {
	token, err := a.tokens.Issue(user.ID)
	if err != nil {
		return models.Session{}, err
	}
	return models.Session{User: user, Token: token}, nil
}

// sendMail queues msg; a full queue drops the mail and is only logged.
func (a *authService) sendMail(ctx context.Context, msg models.MailMessage) {
	if err := a.mail.Enqueue(msg); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("to", msg.To).
			Str("kind", string(msg.Kind)).
			Msg("error queueing mail")
	}
}
