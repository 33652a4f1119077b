// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/storefront-auth/internal/logger"
	"github.com/MKhiriev/storefront-auth/internal/mock"
	"github.com/MKhiriev/storefront-auth/models"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []models.MailMessage
	err  error
}

func (r *recordingSender) SendMail(_ context.Context, msg models.MailMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return r.err
}

func (r *recordingSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func TestMailDispatcher_DeliversQueuedMail(t *testing.T) {
	sender := &recordingSender{}
	d := NewMailDispatcher(sender, 2, 8, time.Second, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Run(ctx) }()

	for i := range 3 {
		require.NoError(t, d.Enqueue(models.MailMessage{To: "u@example.com", Kind: models.ActionEmailVerification, Token: string(rune('a' + i))}))
	}

	assert.Eventually(t, func() bool { return sender.count() == 3 }, time.Second, 5*time.Millisecond)
}

func TestMailDispatcher_EnqueueFullQueue(t *testing.T) {
	d := NewMailDispatcher(&recordingSender{}, 1, 1, time.Second, logger.Nop())

	require.NoError(t, d.Enqueue(models.MailMessage{To: "a@example.com"}))
	err := d.Enqueue(models.MailMessage{To: "b@example.com"})

	assert.ErrorIs(t, err, ErrMailQueueFull)
}

func TestMailDispatcher_SenderErrorDoesNotStopDelivery(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	d := NewMailDispatcher(sender, 1, 4, time.Second, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Run(ctx) }()

	require.NoError(t, d.Enqueue(models.MailMessage{To: "a@example.com"}))
	require.NoError(t, d.Enqueue(models.MailMessage{To: "b@example.com"}))

	assert.Eventually(t, func() bool { return sender.count() == 2 }, time.Second, 5*time.Millisecond)
}

func TestMailDispatcher_RunReturnsOnCancel(t *testing.T) {
	d := NewMailDispatcher(&recordingSender{}, 3, 1, time.Second, logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, d.Run(ctx))
}

func TestMailDispatcher_SendBoundedByTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mock.NewMockMailSender(ctrl)
	msg := models.MailMessage{To: "a@example.com", Kind: models.ActionPasswordReset, Token: "t"}

	delivered := make(chan time.Duration, 1)
	sender.EXPECT().SendMail(gomock.Any(), msg).DoAndReturn(func(ctx context.Context, _ models.MailMessage) error {
		deadline, ok := ctx.Deadline()
		if !ok {
			delivered <- -1
			return nil
		}
		delivered <- time.Until(deadline)
		return nil
	})

	d := NewMailDispatcher(sender, 1, 1, 2*time.Second, logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Run(ctx) }()

	require.NoError(t, d.Enqueue(msg))

	select {
	case left := <-delivered:
		assert.Greater(t, left, time.Duration(0))
		assert.LessOrEqual(t, left, 2*time.Second)
	case <-time.After(time.Second):
		t.Fatal("mail was not delivered")
	}
}
