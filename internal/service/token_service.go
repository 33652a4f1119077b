// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/storefront-auth/internal/config"
	"github.com/MKhiriev/storefront-auth/internal/store"
	"github.com/MKhiriev/storefront-auth/internal/utils"
	"github.com/MKhiriev/storefront-auth/models"
)

// actionTokenBytes is the entropy of an action token before hex encoding.
const actionTokenBytes = 32

// TokenService issues and verifies session tokens and single-use action
// tokens. Session verification needs no store access.
type TokenService struct {
	signKey  string
	issuer   string
	duration time.Duration
	now      func() time.Time
}

func NewTokenService(cfg config.App, now func() time.Time) *TokenService {
	return &TokenService{
		signKey:  cfg.TokenSignKey,
		issuer:   cfg.TokenIssuer,
		duration: cfg.TokenDuration,
		now:      now,
	}
}

// Issue signs a session token for userID.
func (s *TokenService) Issue(userID string) (models.Token, error) {
	token, err := utils.GenerateSessionToken(s.issuer, userID, s.now(), s.duration, s.signKey)
	if err != nil {
		return models.Token{}, fmt.Errorf("error issuing session token: %w", err)
	}
	return token, nil
}

// Verify checks signature, issuer and expiry of a session token. Every
// failure is reported as [ErrUnauthenticated].
func (s *TokenService) Verify(tokenString string) (models.Token, error) {
	if tokenString == "" {
		return models.Token{}, ErrUnauthenticated
	}

	token, err := utils.ValidateAndParseSessionToken(tokenString, s.signKey, s.issuer, s.now)
	if err != nil {
		return models.Token{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	return token, nil
}

func (s *TokenService) Duration() time.Duration {
	return s.duration
}

// IssueActionToken creates a fresh action token valid for ttl. Only the
// returned Hash and ExpiresAt may be persisted.
func (s *TokenService) IssueActionToken(kind models.ActionTokenKind, ttl time.Duration) (models.ActionToken, error) {
	plaintext, err := utils.RandomHex(actionTokenBytes)
	if err != nil {
		return models.ActionToken{}, fmt.Errorf("error issuing %s token: %w", kind, err)
	}

	return models.ActionToken{
		Kind:      kind,
		Plaintext: plaintext,
		Hash:      s.HashActionToken(plaintext),
		ExpiresAt: s.now().Add(ttl),
	}, nil
}

func (s *TokenService) HashActionToken(plaintext string) string {
	return utils.HashToken(plaintext)
}

// ConsumeActionToken hashes plaintext and hands the hash to consume, which
// must atomically match a non-expired token, clear it and apply the side
// effect of kind. A missing or expired token yields
// [ErrInvalidOrExpiredToken].
func (s *TokenService) ConsumeActionToken(
	ctx context.Context,
	kind models.ActionTokenKind,
	plaintext string,
	consume func(ctx context.Context, hash string) (models.User, error),
) (models.User, error) {
	if plaintext == "" {
		return models.User{}, ErrInvalidOrExpiredToken
	}

	user, err := consume(ctx, s.HashActionToken(plaintext))
	if err != nil {
		if errors.Is(err, store.ErrTokenNotFound) {
			return models.User{}, ErrInvalidOrExpiredToken
		}
		return models.User{}, fmt.Errorf("error consuming %s token: %w", kind, err)
	}
	return user, nil
}
