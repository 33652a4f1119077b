// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MKhiriev/storefront-auth/internal/logger"
	"github.com/MKhiriev/storefront-auth/models"
)

// ErrMailQueueFull is returned by Enqueue when the dispatcher is saturated.
var ErrMailQueueFull = errors.New("mail queue is full")

// MailDispatcher moves action-token mail off the request path. Requests
// enqueue; a fixed number of goroutines deliver through the MailSender.
type MailDispatcher struct {
	sender      MailSender
	queue       chan models.MailMessage
	workers     int
	sendTimeout time.Duration
	logger      *logger.Logger
}

func NewMailDispatcher(sender MailSender, workers, queueSize int, sendTimeout time.Duration, log *logger.Logger) *MailDispatcher {
	if workers < 1 {
		workers = 1
	}
	return &MailDispatcher{
		sender:      sender,
		queue:       make(chan models.MailMessage, queueSize),
		workers:     workers,
		sendTimeout: sendTimeout,
		logger:      log.WithComponent("mail-dispatcher"),
	}
}

// Enqueue schedules msg for delivery without blocking.
func (d *MailDispatcher) Enqueue(msg models.MailMessage) error {
	select {
	case d.queue <- msg:
		return nil
	default:
		return ErrMailQueueFull
	}
}

// Run delivers queued mail until ctx is cancelled.
func (d *MailDispatcher) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for range d.workers {
		wg.Go(func() {
			d.loop(ctx)
		})
	}
	wg.Wait()
	return nil
}

func (d *MailDispatcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-d.queue:
			d.deliver(ctx, msg)
		}
	}
}

func (d *MailDispatcher) deliver(ctx context.Context, msg models.MailMessage) {
	sendCtx := ctx
	if d.sendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, d.sendTimeout)
		defer cancel()
	}

	if err := d.sender.SendMail(sendCtx, msg); err != nil {
		d.logger.Err(err).
			Str("to", msg.To).
			Str("kind", string(msg.Kind)).
			Msg("mail delivery failed")
	}
}
