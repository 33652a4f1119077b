// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks auth request bodies (signup, login,
// forgot/reset/change password) before the service layer touches the
// store or runs bcrypt. Failures are the sentinels in errors.go, whose
// messages are safe to show to the client.
package validators

import "context"

// Validator validates one request value. When fields are given only those
// fields are checked, e.g. Validate(ctx, req, FieldPassword).
type Validator interface {
	Validate(ctx context.Context, obj any, fields ...string) error
}
