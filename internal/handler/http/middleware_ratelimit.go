// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/MKhiriev/storefront-auth/internal/logger"
	"github.com/MKhiriev/storefront-auth/internal/ratelimit"
	"github.com/MKhiriev/storefront-auth/internal/service"
	"github.com/MKhiriev/storefront-auth/internal/utils"
)

// rateLimit counts the request against the (client IP, action) budget and
// answers 429 with Retry-After once the budget is spent. A limiter failure
// rejects the request.
func (h *Handler) rateLimit(action ratelimit.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r)

			decision, err := h.limiter.Allow(r.Context(), ip, action)
			if err != nil {
				writeError(w, r, fmt.Errorf("rate limiter: %w", err))
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			if !decision.Allowed {
				retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(max(retryAfter, 1)))
				logger.FromRequest(r).Warn().
					Str("ip", ip).
					Str("action", string(action)).
					Msg("rate limit exceeded")
				writeError(w, r, service.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
