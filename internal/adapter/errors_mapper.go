// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// mapHTTPError returns nil for 2xx responses and a classified delivery
// error carrying the status and response body otherwise.
func mapHTTPError(resp *resty.Response) error {
	status := resp.StatusCode()
	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(status)
	}

	var class error
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		class = ErrMailUnauthorized
	case status == http.StatusTooManyRequests:
		class = ErrMailThrottled
	case status >= http.StatusInternalServerError:
		class = ErrMailUnavailable
	case status >= http.StatusBadRequest:
		class = ErrMailRejected
	default:
		return fmt.Errorf("unexpected mail service response: http %d: %s", status, body)
	}
	return fmt.Errorf("%w: http %d: %s", class, status, body)
}
