// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import "github.com/google/uuid"

// NewUserID returns a UUIDv7 so user rows and their audit trail sort by
// creation time. A clock failure falls back to a random UUIDv4.
func NewUserID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
