// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/MKhiriev/storefront-auth/internal/config"
	"github.com/MKhiriev/storefront-auth/internal/logger"
	"github.com/MKhiriev/storefront-auth/internal/utils"
	"github.com/MKhiriev/storefront-auth/models"
)

const sendMailPath = "/api/v1/mail"

type httpMailSender struct {
	client *utils.HTTPClient
	logger *logger.Logger
}

// NewHTTPMailSender constructs an HTTP/REST implementation of [MailSender].
// It normalises and validates adapterCfg.MailServiceURL and configures the
// underlying HTTP client with the resolved base URL and request timeout.
//
// Returns an error if the URL is empty or cannot be parsed.
func NewHTTPMailSender(adapterCfg config.Adapter, logger *logger.Logger) (MailSender, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.MailServiceURL)
	if err != nil {
		return nil, fmt.Errorf("invalid mail service url: %w", err)
	}

	return &httpMailSender{
		client: utils.NewHTTPClient(baseURL, adapterCfg.RequestTimeout),
		logger: logger.WithComponent("mail-sender"),
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SendMail implements [MailSender]. It POSTs msg to the mail service.
func (h *httpMailSender) SendMail(ctx context.Context, msg models.MailMessage) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(msg).
		Post(sendMailPath)
	if err != nil {
		return fmt.Errorf("send mail request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return err
	}

	h.logger.Debug().
		Str("kind", string(msg.Kind)).
		Int("status", resp.StatusCode()).
		Msg("mail handed to delivery service")
	return nil
}
