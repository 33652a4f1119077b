// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// SecurityEventKind enumerates audit log entry types.
type SecurityEventKind string

const (
	EventLogin          SecurityEventKind = "login"
	EventFailedLogin    SecurityEventKind = "failed-login"
	EventLogout         SecurityEventKind = "logout"
	EventPasswordChange SecurityEventKind = "password-change"
	EventResetRequest   SecurityEventKind = "reset-request"
	EventResetComplete  SecurityEventKind = "reset-complete"
	EventLock           SecurityEventKind = "lock"
	EventUnlock         SecurityEventKind = "unlock"
	EventEmailChange    SecurityEventKind = "email-change"
	EventEmailVerified  SecurityEventKind = "email-verified"
)

// SecurityEvent is a single append-only audit log entry for a user.
// Events live in their own table so the user record does not grow with them.
type SecurityEvent struct {
	// ID is the database identifier of the entry.
	ID int64 `json:"id"`

	// UserID is the owner of the event.
	UserID string `json:"userId"`

	// Kind is the type of the event.
	Kind SecurityEventKind `json:"kind"`

	// Timestamp is the moment the event happened.
	Timestamp time.Time `json:"timestamp"`

	// SourceIP is the client IP of the request that produced the event.
	SourceIP string `json:"sourceIp,omitempty"`

	// Detail is an optional free-form description.
	Detail string `json:"detail,omitempty"`
}

// TableName returns the name of the database table
// associated with the SecurityEvent model.
func (e SecurityEvent) TableName() string {
	return "security_events"
}
