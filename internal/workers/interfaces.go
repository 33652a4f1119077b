// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package workers provides the background machinery of the auth service:
// a bounded pool for CPU-heavy password hashing, the outgoing mail
// dispatcher and periodic maintenance jobs, plus a Workers aggregate that
// runs them together until shutdown.
package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/storefront-auth/models"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Worker is the interface that must be implemented by any background worker.
//
// Run blocks until ctx is cancelled or the worker fails. A nil return after
// cancellation is a clean shutdown.
//
// Example implementation:
//
//	type MyWorker struct{}
//
//	func (w *MyWorker) Run(ctx context.Context) error {
//	    <-ctx.Done()
//	    return nil
//	}
type Worker interface {
	Run(ctx context.Context) error
}

// MailSender delivers one message.
type MailSender interface {
	SendMail(ctx context.Context, msg models.MailMessage) error
}

// ActionTokenPurger clears action tokens whose expiry is before now.
type ActionTokenPurger interface {
	PurgeExpiredActionTokens(ctx context.Context, now time.Time) (int64, error)
}

// WindowPurger drops expired rate-limit windows.
type WindowPurger interface {
	Purge(now time.Time) int
}

// Pinger checks connectivity to a dependency.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthReporter receives serving status updates.
type HealthReporter interface {
	SetServingStatus(service string, status healthpb.HealthCheckResponse_ServingStatus)
}
