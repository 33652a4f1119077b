// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// MailMessage is an out-of-band delivery request for an action token.
// Token carries the plaintext and must never be logged.
type MailMessage struct {
	To    string          `json:"to"`
	Kind  ActionTokenKind `json:"kind"`
	Token string          `json:"token"`
}
