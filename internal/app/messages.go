// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app holds the human-readable messages the HTTP API writes into
// response bodies that do not come from a service error.
package app

const (
	// MsgInternalServerError replaces the details of every 5xx failure.
	MsgInternalServerError = "something went wrong, please try again later"

	// MsgResetLinkSent is returned by forgot-password whether or not the
	// address belongs to an account.
	MsgResetLinkSent = "if an account with that email exists, a reset link has been sent"

	// MsgInvalidJSON is returned when a request body cannot be decoded.
	MsgInvalidJSON = "invalid JSON body"

	// MsgInvalidLimit is returned for a malformed ?limit= query value.
	MsgInvalidLimit = "limit must be a non-negative integer"

	MsgRouteNotFound = "route not found"
)
