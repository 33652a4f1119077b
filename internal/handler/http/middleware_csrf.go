// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/MKhiriev/storefront-auth/internal/logger"
	"github.com/MKhiriev/storefront-auth/internal/service"
	"github.com/MKhiriev/storefront-auth/internal/utils"
)

const csrfTokenBytes = 32

// issueCSRF sets a fresh XSRF-TOKEN cookie on every response. The value
// checked by verifyCSRF is the one the request arrived with.
func (h *Handler) issueCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := utils.RandomHex(csrfTokenBytes)
		if err != nil {
			writeError(w, r, err)
			return
		}
		h.setCSRFCookie(w, token)
		next.ServeHTTP(w, r)
	})
}

// verifyCSRF rejects the request with 403 unless the X-CSRF-Token header
// equals the XSRF-TOKEN cookie.
func (h *Handler) verifyCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(csrfHeaderName)
		cookie, err := r.Cookie(csrfCookieName)
		if err != nil || header == "" || cookie.Value == "" || !utils.EqualTokens(header, cookie.Value) {
			logger.FromRequest(r).Warn().
				Str("ip", utils.ClientIP(r)).
				Str("route", routeOf(r)).
				Msg("csrf token mismatch")
			writeError(w, r, service.ErrCsrfMismatch)
			return
		}
		next.ServeHTTP(w, r)
	})
}
