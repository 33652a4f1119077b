// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides outbound integrations of the auth service.
//
// The primary abstraction is [MailSender], which decouples the service layer
// from the external mail delivery service. The package ships an HTTP/REST
// implementation ([NewHTTPMailSender]) and a logging fallback
// ([NewLogMailSender]) for deployments without a mail service.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling.
package adapter

import (
	"context"

	"github.com/MKhiriev/storefront-auth/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/mail_sender_mock.go -package=mock

// MailSender delivers action tokens to users out of band.
type MailSender interface {
	// SendMail delivers msg to msg.To. Implementations must not log the
	// token plaintext.
	SendMail(ctx context.Context, msg models.MailMessage) error
}
