// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MKhiriev/storefront-auth/internal/ratelimit"
	"github.com/MKhiriev/storefront-auth/models"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withClientIP)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(middleware.Timeout(h.requestTimeout))
	router.Use(h.issueCSRF)

	router.NotFound(h.routeNotFound)
	// an unsupported method is reported as a missing route
	router.MethodNotAllowed(h.routeNotFound)

	router.Route("/auth", func(r chi.Router) {
		// guard order: rate limit, csrf, auth, role
		r.With(h.rateLimit(ratelimit.ActionSignup), h.verifyCSRF).Post("/signup", h.signup)
		r.With(h.rateLimit(ratelimit.ActionLogin), h.verifyCSRF).Post("/login", h.login)
		r.Get("/logout", h.logout)
		r.With(h.rateLimit(ratelimit.ActionPasswordReset), h.verifyCSRF).Post("/forgot-password", h.forgotPassword)
		r.With(h.rateLimit(ratelimit.ActionPasswordReset), h.verifyCSRF).Patch("/reset-password/{token}", h.resetPassword)
		r.Get("/verify-email/{token}", h.verifyEmail)

		r.With(h.verifyCSRF, h.authenticate).Patch("/update-password", h.updatePassword)
		r.With(h.verifyCSRF, h.authenticate).Post("/refresh", h.refresh)
		r.With(h.authenticate).Get("/validate-token", h.validateToken)

		r.With(h.authenticate, h.restrictTo(models.RoleAdmin)).Get("/admin/users/{id}/events", h.listUserEvents)
	})

	router.Get("/api/version", h.getServerVersion)

	return router
}
