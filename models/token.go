// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the claim set carried by a signed session token.
// The user identifier travels in the standard "sub" claim.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// Token is an issued or verified session token.
//
// SignedString holds the compact serialized form of the token
// (header.payload.signature) ready to be transmitted in a cookie or an
// Authorization header. The remaining fields are parsed copies of the claims.
type Token struct {
	// SignedString is the compact JWS representation of the token.
	SignedString string `json:"-"`

	// UserID is the owner identifier extracted from the "sub" claim.
	UserID string `json:"-"`

	// IssuedAt is the "iat" claim.
	IssuedAt time.Time `json:"-"`

	// ExpiresAt is the "exp" claim.
	ExpiresAt time.Time `json:"-"`
}

// String returns the compact JWS serialization of the token.
// It implements the [fmt.Stringer] interface.
func (t Token) String() string {
	return t.SignedString
}

// ActionTokenKind distinguishes single-use action tokens.
type ActionTokenKind string

const (
	// ActionPasswordReset authorizes one password reset.
	ActionPasswordReset ActionTokenKind = "password-reset"

	// ActionEmailVerification authorizes one email verification.
	ActionEmailVerification ActionTokenKind = "email-verification"
)

// ActionToken is a freshly issued single-use token.
// Plaintext is handed to the caller exactly once for out-of-band delivery;
// only Hash and ExpiresAt are persisted.
type ActionToken struct {
	Kind      ActionTokenKind
	Plaintext string
	Hash      string
	ExpiresAt time.Time
}
