// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"time"

	"github.com/MKhiriev/storefront-auth/internal/validators"
	"github.com/MKhiriev/storefront-auth/models"
)

// AuthValidationService rejects malformed request bodies with a
// [ValidationError] before they reach the wrapped AuthService.
type AuthValidationService struct {
	inner     AuthService
	validator validators.Validator
}

func NewAuthValidationService() AuthServiceWrapper {
	return &AuthValidationService{
		validator: validators.NewCredentialsValidator(),
	}
}

func (v *AuthValidationService) Wrap(inner AuthService) AuthService {
	v.inner = inner
	return v
}

func (v *AuthValidationService) Signup(ctx context.Context, req models.SignupRequest, clientIP string) (models.Session, error) {
	if err := v.validate(ctx, req); err != nil {
		return models.Session{}, err
	}
	return v.inner.Signup(ctx, req, clientIP)
}

func (v *AuthValidationService) Login(ctx context.Context, req models.LoginRequest, clientIP string) (models.Session, error) {
	if err := v.validate(ctx, req); err != nil {
		return models.Session{}, err
	}
	return v.inner.Login(ctx, req, clientIP)
}

func (v *AuthValidationService) Logout(ctx context.Context, user *models.User, clientIP string) error {
	return v.inner.Logout(ctx, user, clientIP)
}

func (v *AuthValidationService) ChangePassword(ctx context.Context, user models.User, req models.ChangePasswordRequest, clientIP string) (models.Session, error) {
	if err := v.validate(ctx, req); err != nil {
		return models.Session{}, err
	}
	return v.inner.ChangePassword(ctx, user, req, clientIP)
}

func (v *AuthValidationService) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest, clientIP string) error {
	if err := v.validate(ctx, req); err != nil {
		return err
	}
	return v.inner.ForgotPassword(ctx, req, clientIP)
}

// ResetPassword validates the new password before the token is consumed,
// so a weak password leaves the token usable.
func (v *AuthValidationService) ResetPassword(ctx context.Context, token string, req models.ResetPasswordRequest, clientIP string) (models.Session, error) {
	if err := v.validate(ctx, req); err != nil {
		return models.Session{}, err
	}
	return v.inner.ResetPassword(ctx, token, req, clientIP)
}

func (v *AuthValidationService) ValidateSession(ctx context.Context, token string) (models.User, error) {
	return v.inner.ValidateSession(ctx, token)
}

func (v *AuthValidationService) RestrictTo(user models.User, roles ...models.Role) error {
	return v.inner.RestrictTo(user, roles...)
}

func (v *AuthValidationService) VerifyEmail(ctx context.Context, token string, clientIP string) (models.User, error) {
	return v.inner.VerifyEmail(ctx, token, clientIP)
}

func (v *AuthValidationService) RefreshSession(ctx context.Context, user models.User) (models.Session, error) {
	return v.inner.RefreshSession(ctx, user)
}

func (v *AuthValidationService) ListSecurityEvents(ctx context.Context, userID string, limit uint64) ([]models.SecurityEvent, error) {
	return v.inner.ListSecurityEvents(ctx, userID, limit)
}

func (v *AuthValidationService) SessionDuration() time.Duration {
	return v.inner.SessionDuration()
}

func (v *AuthValidationService) validate(ctx context.Context, obj any) error {
	if err := v.validator.Validate(ctx, obj); err != nil {
		return &ValidationError{Reason: err}
	}
	return nil
}
