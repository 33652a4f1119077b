// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import "errors"

// Delivery failures reported by the mail service, grouped by what the
// operator has to do about them.
var (
	// ErrMailRejected means the service refused the message itself
	// (bad address, malformed payload). Resending it will not help.
	ErrMailRejected = errors.New("mail rejected by delivery service")
	// ErrMailUnauthorized means the service does not accept our credentials.
	ErrMailUnauthorized = errors.New("mail service refused credentials")
	// ErrMailThrottled means the service asked us to slow down.
	ErrMailThrottled = errors.New("mail service is throttling requests")
	// ErrMailUnavailable covers every 5xx answer.
	ErrMailUnavailable = errors.New("mail service unavailable")
)
