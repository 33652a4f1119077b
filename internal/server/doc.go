// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package server wires and runs the application's transport servers.
//
// It binds the HTTP and gRPC listeners at construction time, serves both
// until the run context is cancelled and then stops them gracefully.
package server
