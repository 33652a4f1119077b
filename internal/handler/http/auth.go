// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/storefront-auth/internal/app"
	"github.com/MKhiriev/storefront-auth/internal/logger"
	"github.com/MKhiriev/storefront-auth/internal/service"
	"github.com/MKhiriev/storefront-auth/internal/utils"
	"github.com/MKhiriev/storefront-auth/models"
)

const maxBodyBytes = 1 << 20

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := h.auth.Signup(r.Context(), req, utils.ClientIP(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.writeSession(w, session, http.StatusCreated)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := h.auth.Login(r.Context(), req, utils.ClientIP(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.FromRequest(r).Info().Str("user_id", session.User.ID).Msg("user logged in")
	h.writeSession(w, session, http.StatusOK)
}

// logout always succeeds. A still-valid session is only used to attribute
// the audit event.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	var user *models.User
	if token, ok := sessionToken(r); ok {
		if u, err := h.auth.ValidateSession(r.Context(), token); err == nil {
			user = &u
		}
	}

	if err := h.auth.Logout(r.Context(), user, utils.ClientIP(r)); err != nil {
		writeError(w, r, err)
		return
	}

	h.clearSessionCookie(w)
	utils.WriteJSON(w, models.MessageResponse{Status: models.StatusSuccess}, http.StatusOK)
}

func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.auth.ForgotPassword(r.Context(), req, utils.ClientIP(r)); err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, models.MessageResponse{Status: models.StatusSuccess, Message: app.MsgResetLinkSent}, http.StatusOK)
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := h.auth.ResetPassword(r.Context(), chi.URLParam(r, "token"), req, utils.ClientIP(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.writeSession(w, session, http.StatusOK)
}

func (h *Handler) updatePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, r, service.ErrUnauthenticated)
		return
	}

	var req models.ChangePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := h.auth.ChangePassword(r.Context(), *user, req, utils.ClientIP(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.writeSession(w, session, http.StatusOK)
}

func (h *Handler) validateToken(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, r, service.ErrUnauthenticated)
		return
	}

	utils.WriteJSON(w, models.DataResponse{Status: models.StatusSuccess, Data: models.UserData{User: *user}}, http.StatusOK)
}

func (h *Handler) verifyEmail(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.VerifyEmail(r.Context(), chi.URLParam(r, "token"), utils.ClientIP(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, models.DataResponse{Status: models.StatusSuccess, Data: models.UserData{User: user}}, http.StatusOK)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, r, service.ErrUnauthenticated)
		return
	}

	session, err := h.auth.RefreshSession(r.Context(), *user)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.writeSession(w, session, http.StatusOK)
}

func (h *Handler) listUserEvents(w http.ResponseWriter, r *http.Request) {
	var limit uint64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			writeError(w, r, ErrInvalidLimit)
			return
		}
		limit = parsed
	}

	events, err := h.auth.ListSecurityEvents(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if events == nil {
		events = []models.SecurityEvent{}
	}

	utils.WriteJSON(w, models.DataResponse{Status: models.StatusSuccess, Data: models.EventsData{Events: events}}, http.StatusOK)
}

// writeSession sets the session cookie and writes the token envelope.
func (h *Handler) writeSession(w http.ResponseWriter, session models.Session, status int) {
	h.setSessionCookie(w, session.Token)
	utils.WriteJSON(w, models.SessionResponse{
		Status: models.StatusSuccess,
		Token:  session.Token.SignedString,
		Data:   models.UserData{User: session.User},
	}, status)
}

// decodeJSON reads exactly one JSON object of at most maxBodyBytes into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return errors.Join(ErrInvalidJSON, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return ErrInvalidJSON
	}
	return nil
}
