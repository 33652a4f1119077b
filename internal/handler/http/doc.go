// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package http implements the JSON API of the auth service.
//
// Every request passes the global chain (panic recovery, real client IP,
// trace id, access log, request timeout, CSRF cookie rotation). Each /auth
// route then runs its own guards in a fixed order: rate limit, CSRF check,
// session authentication and role restriction. A request rejected by one
// guard never reaches the next one or the service layer.
package http
