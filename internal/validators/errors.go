// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrEmptyName            = errors.New("please provide your name")
	ErrNameTooLong          = errors.New("name must be at most 100 characters")
	ErrEmptyEmail           = errors.New("please provide your email")
	ErrInvalidEmail         = errors.New("please provide a valid email")
	ErrEmptyPassword        = errors.New("please provide a password")
	ErrPasswordTooShort     = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong      = errors.New("password must be at most 72 bytes")
	ErrWeakPassword         = errors.New("password must contain an uppercase letter, a lowercase letter, a digit and a special character")
	ErrPasswordsDoNotMatch  = errors.New("passwords do not match")
	ErrEmptyCurrentPassword = errors.New("please provide your current password")
)
