// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// LockoutState is the post-update lockout bookkeeping of one account,
// as returned by an atomic failed-login increment.
type LockoutState struct {
	LoginAttempts int
	AccountLocked bool
	LockUntil     *time.Time
}

// JustLocked reports whether the increment that produced this state is the
// one that crossed the threshold.
func (s LockoutState) JustLocked(threshold int) bool {
	return s.AccountLocked && s.LoginAttempts == threshold
}
