// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"
	"fmt"
	"time"
)

// Outcome errors of the auth operations. The HTTP layer maps each one to a
// status code; anything else is an internal failure.
var (
	ErrValidation               = errors.New("validation failed")
	ErrInvalidCredentials       = errors.New("incorrect email or password")
	ErrAccountLocked            = errors.New("account is temporarily locked")
	ErrIncorrectCurrentPassword = errors.New("your current password is wrong")
	ErrUnauthenticated          = errors.New("you are not logged in")
	ErrCsrfMismatch             = errors.New("invalid or missing CSRF token")
	ErrForbidden                = errors.New("you do not have permission to perform this action")
	ErrDuplicateEmail           = errors.New("email is already registered")
	ErrInvalidOrExpiredToken    = errors.New("token is invalid or has expired")
	ErrRateLimited              = errors.New("too many requests, please try again later")
	ErrNotFound                 = errors.New("resource not found")

	ErrVersionIsNotSpecified = errors.New("app version is not specified")
)

// ValidationError carries the rule a request body broke. It matches
// [ErrValidation] with errors.Is.
type ValidationError struct {
	Reason error
}

func (e *ValidationError) Error() string {
	return e.Reason.Error()
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidation, e.Reason}
}

// AccountLockedError is returned by login while the account is locked.
// It matches [ErrAccountLocked] with errors.Is.
type AccountLockedError struct {
	Until time.Time
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("%s, try again after %s", ErrAccountLocked, e.Until.UTC().Format(time.RFC3339))
}

func (e *AccountLockedError) Unwrap() error {
	return ErrAccountLocked
}
