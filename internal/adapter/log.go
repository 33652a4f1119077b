// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"

	"github.com/MKhiriev/storefront-auth/internal/logger"
	"github.com/MKhiriev/storefront-auth/models"
)

type logMailSender struct {
	logger *logger.Logger
}

// NewLogMailSender returns a [MailSender] that only records that a message
// would have been sent. The token plaintext is not written.
func NewLogMailSender(logger *logger.Logger) MailSender {
	return &logMailSender{logger: logger.WithComponent("mail-sender")}
}

func (l *logMailSender) SendMail(_ context.Context, msg models.MailMessage) error {
	l.logger.Info().
		Str("to", msg.To).
		Str("kind", string(msg.Kind)).
		Msg("mail service not configured, message dropped")
	return nil
}
