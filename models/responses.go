// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// Response status values of the JSON envelope.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// UserData wraps a user in the "data" member of the envelope.
type UserData struct {
	User User `json:"user"`
}

// EventsData wraps audit entries in the "data" member of the envelope.
type EventsData struct {
	Events []SecurityEvent `json:"events"`
}

// SessionResponse is returned by every endpoint that issues a session token.
type SessionResponse struct {
	Status string   `json:"status"`
	Token  string   `json:"token"`
	Data   UserData `json:"data"`
}

// DataResponse is a success envelope with a payload and no token.
type DataResponse struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

// MessageResponse carries a human-readable message. It is used both for
// generic successes (forgot-password) and for every error.
type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
