// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/MKhiriev/storefront-auth/internal/utils"
)

// withClientIP replaces RemoteAddr with the forwarded client address when
// the request arrived through a configured trusted proxy. Everything keyed
// on the client (rate limits, audit, logs) reads RemoteAddr afterwards, so
// headers sent by any other peer have no effect.
func (h *Handler) withClientIP(next http.Handler) http.Handler {
	if len(h.trustedProxies) == 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ip, ok := utils.ForwardedClientIP(r, h.trustedProxies); ok {
			r.RemoteAddr = ip
		}
		next.ServeHTTP(w, r)
	})
}
