// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/storefront-auth/internal/logger"
	"github.com/MKhiriev/storefront-auth/internal/service"
	"github.com/MKhiriev/storefront-auth/internal/utils"
	"github.com/MKhiriev/storefront-auth/models"
)

// errorStatuses is checked in order; the first match wins.
var errorStatuses = []struct {
	err    error
	status int
}{
	{service.ErrValidation, http.StatusBadRequest},
	{service.ErrDuplicateEmail, http.StatusBadRequest},
	{service.ErrInvalidOrExpiredToken, http.StatusBadRequest},
	{ErrInvalidJSON, http.StatusBadRequest},
	{ErrInvalidLimit, http.StatusBadRequest},
	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{service.ErrAccountLocked, http.StatusUnauthorized},
	{service.ErrIncorrectCurrentPassword, http.StatusUnauthorized},
	{service.ErrUnauthenticated, http.StatusUnauthorized},
	{service.ErrCsrfMismatch, http.StatusForbidden},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrNotFound, http.StatusNotFound},
	{ErrRouteNotFound, http.StatusNotFound},
	{service.ErrRateLimited, http.StatusTooManyRequests},
}

// errorResponse maps err to a status code and the body sent to the client.
// Unknown errors become a generic 500 so internals never leak.
func errorResponse(err error) (int, models.MessageResponse) {
	var (
		validation *service.ValidationError
		locked     *service.AccountLockedError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, fail(validation.Error())
	case errors.As(err, &locked):
		return http.StatusUnauthorized, fail(locked.Error())
	}

	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status, fail(e.err.Error())
		}
	}
	return http.StatusInternalServerError, models.MessageResponse{Status: models.StatusError, Message: errInternal.Error()}
}

func fail(message string) models.MessageResponse {
	return models.MessageResponse{Status: models.StatusFail, Message: message}
}

// writeError logs err with the request logger and writes the mapped
// response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorResponse(err)

	log := logger.FromRequest(r)
	if status >= http.StatusInternalServerError {
		log.Err(err).Str("path", r.URL.Path).Msg("request failed")
	} else {
		log.Debug().Err(err).Int("status", status).Msg("request rejected")
	}

	utils.WriteJSON(w, body, status)
}

func (h *Handler) routeNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, ErrRouteNotFound)
}
