// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"

	"github.com/MKhiriev/storefront-auth/internal/app"
)

var (
	// ErrInvalidJSON is returned for request bodies that are not a single
	// JSON object of the expected shape.
	ErrInvalidJSON = errors.New(app.MsgInvalidJSON)

	// ErrInvalidLimit is returned for a non-numeric events limit.
	ErrInvalidLimit = errors.New(app.MsgInvalidLimit)

	// ErrRouteNotFound is returned for unknown paths and unsupported methods.
	ErrRouteNotFound = errors.New(app.MsgRouteNotFound)

	errInternal = errors.New(app.MsgInternalServerError)
)
