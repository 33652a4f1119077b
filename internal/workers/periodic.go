// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/storefront-auth/internal/logger"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Periodic runs a job on a fixed interval. Job errors are logged and do
// not stop the worker.
type Periodic struct {
	name     string
	interval time.Duration
	job      func(ctx context.Context) error
	logger   *logger.Logger
}

func NewPeriodic(name string, interval time.Duration, job func(ctx context.Context) error, log *logger.Logger) *Periodic {
	return &Periodic{
		name:     name,
		interval: interval,
		job:      job,
		logger:   log.WithComponent(name),
	}
}

// Run executes the job once immediately, then on every tick until ctx is
// cancelled.
func (p *Periodic) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Periodic) tick(ctx context.Context) {
	if err := p.job(ctx); err != nil && ctx.Err() == nil {
		p.logger.Err(err).Msg("periodic job failed")
	}
}

// NewTokenSweeper clears expired reset and verification token hashes.
// Expired tokens are already rejected on use; the sweep only keeps stale
// hashes from lingering in storage.
func NewTokenSweeper(purger ActionTokenPurger, interval time.Duration, now func() time.Time, log *logger.Logger) *Periodic {
	var sweeper *Periodic
	sweeper = NewPeriodic("token-sweeper", interval, func(ctx context.Context) error {
		n, err := purger.PurgeExpiredActionTokens(ctx, now())
		if err != nil {
			return err
		}
		if n > 0 {
			sweeper.logger.Debug().Int64("cleared", n).Msg("expired action tokens cleared")
		}
		return nil
	}, log)
	return sweeper
}

// NewRateLimitPurger bounds the memory of an in-process rate limiter.
func NewRateLimitPurger(purger WindowPurger, interval time.Duration, now func() time.Time, log *logger.Logger) *Periodic {
	return NewPeriodic("rate-limit-purger", interval, func(context.Context) error {
		purger.Purge(now())
		return nil
	}, log)
}

// NewHealthProbe pings the database and publishes the result to reporter
// under the given service name ("" is the overall server status).
func NewHealthProbe(pinger Pinger, reporter HealthReporter, services []string, interval time.Duration, log *logger.Logger) *Periodic {
	return NewPeriodic("health-probe", interval, func(ctx context.Context) error {
		status := healthpb.HealthCheckResponse_SERVING
		err := pinger.PingContext(ctx)
		if err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
		for _, svc := range services {
			reporter.SetServingStatus(svc, status)
		}
		return err
	}, log)
}
