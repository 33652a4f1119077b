// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"bytes"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/storefront-auth/internal/config"
	"github.com/MKhiriev/storefront-auth/internal/logger"
	"github.com/MKhiriev/storefront-auth/internal/service"
	"github.com/MKhiriev/storefront-auth/models"
)

// ---- CSRF ----

func TestVerifyCSRF_Rejections(t *testing.T) {
	tests := []struct {
		name string
		opt  requestOption
	}{
		{"no cookie no header", func(*http.Request) {}},
		{"header without cookie", func(r *http.Request) { r.Header.Set(csrfHeaderName, testCSRF) }},
		{"cookie without header", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: csrfCookieName, Value: testCSRF})
		}},
		{"mismatch", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: csrfCookieName, Value: testCSRF})
			r.Header.Set(csrfHeaderName, strings.Repeat("0", len(testCSRF)))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			// the mock has no Login expectation: reaching the service fails the test

			rr := env.do(t, http.MethodPost, "/auth/login", models.LoginRequest{Email: "a@example.com", Password: "x"}, tt.opt)

			assert.Equal(t, http.StatusForbidden, rr.Code)
			assert.Equal(t, service.ErrCsrfMismatch.Error(), decodeBody(t, rr)["message"])
		})
	}
}

func TestIssueCSRF_RotatesOnEveryResponse(t *testing.T) {
	env := newTestEnv(t)
	env.appInfo.EXPECT().GetAppVersion(gomock.Any()).Return("v").Times(2)

	first := findCookie(env.do(t, http.MethodGet, "/api/version", nil), csrfCookieName)
	second := findCookie(env.do(t, http.MethodGet, "/api/version", nil), csrfCookieName)

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Len(t, first.Value, 2*csrfTokenBytes)
	assert.NotEqual(t, first.Value, second.Value)
	assert.False(t, first.HttpOnly, "client script must read the cookie")
	assert.Equal(t, http.SameSiteStrictMode, first.SameSite)
	assert.True(t, first.Secure)
}

func TestIssueCSRF_RejectedResponsesAlsoRotate(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/auth/login", models.LoginRequest{})

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.NotNil(t, findCookie(rr, csrfCookieName))
}

func TestInsecureCookies(t *testing.T) {
	h := &Handler{secureCookies: false, logger: logger.Nop()}
	rr := httptest.NewRecorder()
	h.setCSRFCookie(rr, "x")
	assert.False(t, findCookie(rr, csrfCookieName).Secure)
}

// ---- rate limit ----

func TestRateLimit_LoginSixthAttemptRejected(t *testing.T) {
	env := newTestEnv(t)
	env.auth.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(models.Session{}, service.ErrInvalidCredentials).Times(6)

	req := models.LoginRequest{Email: "alice@example.com", Password: "wrong"}
	for i := range 5 {
		rr := env.do(t, http.MethodPost, "/auth/login", req, withCSRF)
		require.Equal(t, http.StatusUnauthorized, rr.Code, "attempt %d", i+1)
	}

	rr := env.do(t, http.MethodPost, "/auth/login", req, withCSRF)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "900", rr.Header().Get("Retry-After"))
	assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, service.ErrRateLimited.Error(), decodeBody(t, rr)["message"])

	// other clients keep their own budget
	rr = env.do(t, http.MethodPost, "/auth/login", req, withCSRF, fromIP("198.51.100.20"))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRateLimit_ForwardedHeadersFromClientsAreIgnored(t *testing.T) {
	env := newTestEnv(t)
	env.auth.EXPECT().Login(gomock.Any(), gomock.Any(), testClientIP).
		Return(models.Session{}, service.ErrInvalidCredentials).Times(5)

	req := models.LoginRequest{Email: "alice@example.com", Password: "wrong"}
	codes := map[int]int{}
	for i := range 20 {
		rr := env.do(t, http.MethodPost, "/auth/login", req, withCSRF, forwardedFor(fmt.Sprintf("10.0.0.%d", i+1)))
		codes[rr.Code]++
	}

	assert.Equal(t, map[int]int{http.StatusUnauthorized: 5, http.StatusTooManyRequests: 15}, codes)
}

func TestRateLimit_KeysOnClientBehindTrustedProxy(t *testing.T) {
	const proxyIP = "10.1.2.3"
	env := newTestEnvWithServer(t, logger.Nop(), config.Server{
		RequestTimeout: 5 * time.Second,
		TrustedProxies: []string{"10.0.0.0/8"},
	})
	env.auth.EXPECT().Login(gomock.Any(), gomock.Any(), "203.0.113.50").
		Return(models.Session{}, service.ErrInvalidCredentials).Times(5)
	env.auth.EXPECT().Login(gomock.Any(), gomock.Any(), "203.0.113.51").
		Return(models.Session{}, service.ErrInvalidCredentials)

	req := models.LoginRequest{Email: "alice@example.com", Password: "wrong"}
	viaProxy := func(chain string) requestOption {
		return func(r *http.Request) {
			r.RemoteAddr = net.JoinHostPort(proxyIP, "41000")
			r.Header.Set("X-Forwarded-For", chain)
		}
	}

	// a spoofed leftmost entry does not change the key
	for i := range 5 {
		chain := fmt.Sprintf("198.51.100.%d, 203.0.113.50", i+1)
		rr := env.do(t, http.MethodPost, "/auth/login", req, withCSRF, viaProxy(chain))
		require.Equal(t, http.StatusUnauthorized, rr.Code, "attempt %d", i+1)
	}
	rr := env.do(t, http.MethodPost, "/auth/login", req, withCSRF, viaProxy("198.51.100.99, 203.0.113.50"))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	rr = env.do(t, http.MethodPost, "/auth/login", req, withCSRF, viaProxy("203.0.113.51"))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRateLimit_RunsBeforeCSRF(t *testing.T) {
	env := newTestEnv(t)

	for range 3 {
		rr := env.do(t, http.MethodPost, "/auth/signup", models.SignupRequest{})
		require.Equal(t, http.StatusForbidden, rr.Code)
	}
	rr := env.do(t, http.MethodPost, "/auth/signup", models.SignupRequest{})
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}

func TestRateLimit_ForgotAndResetShareBudget(t *testing.T) {
	env := newTestEnv(t)
	env.auth.EXPECT().ForgotPassword(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)
	env.auth.EXPECT().ResetPassword(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(models.Session{}, service.ErrInvalidOrExpiredToken)

	env.do(t, http.MethodPost, "/auth/forgot-password", models.ForgotPasswordRequest{Email: "a@example.com"}, withCSRF)
	env.do(t, http.MethodPost, "/auth/forgot-password", models.ForgotPasswordRequest{Email: "a@example.com"}, withCSRF)
	env.do(t, http.MethodPatch, "/auth/reset-password/t", models.ResetPasswordRequest{}, withCSRF)

	rr := env.do(t, http.MethodPatch, "/auth/reset-password/t", models.ResetPasswordRequest{}, withCSRF)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}

// ---- auth / restrictTo ----

func TestAuthenticate_GuardOrder(t *testing.T) {
	env := newTestEnv(t)
	// csrf fails first, so the session is never validated

	rr := env.do(t, http.MethodPatch, "/auth/update-password", models.ChangePasswordRequest{}, withBearer(testSessionID))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRestrictTo_WithoutUserInContext(t *testing.T) {
	h := &Handler{logger: logger.Nop()}
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { t.Fatal("next called") })

	rr := httptest.NewRecorder()
	h.restrictTo(models.RoleAdmin)(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

// ---- trace id ----

func TestWithTraceID(t *testing.T) {
	tests := []struct {
		name           string
		requestTraceID string
	}{
		{"reuses caller trace id", "my-custom-trace-id"},
		{"generates trace id", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &Handler{logger: &logger.Logger{Logger: zerolog.New(&buf)}}

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				logger.FromRequest(r).Info().Msg("inside")
			})
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.requestTraceID != "" {
				req.Header.Set(traceIDHeader, tt.requestTraceID)
			}
			rr := httptest.NewRecorder()
			h.withTraceID(next).ServeHTTP(rr, req)

			got := rr.Header().Get(traceIDHeader)
			if tt.requestTraceID != "" {
				assert.Equal(t, tt.requestTraceID, got)
			} else {
				_, err := uuid.Parse(got)
				assert.NoError(t, err)
			}
			assert.Contains(t, buf.String(), `"trace_id":"`+got+`"`)
		})
	}
}

// ---- access log ----

func TestWithLogging_NoTokenInLog(t *testing.T) {
	var buf bytes.Buffer
	env := newTestEnvWithLogger(t, &logger.Logger{Logger: zerolog.New(&buf)})
	env.auth.EXPECT().VerifyEmail(gomock.Any(), "s3cr3t-token", testClientIP).Return(alice, nil)

	rr := env.do(t, http.MethodGet, "/auth/verify-email/s3cr3t-token", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	out := buf.String()
	assert.Contains(t, out, `"route":"/auth/verify-email/{token}"`)
	assert.Contains(t, out, `"status":200`)
	assert.Contains(t, out, `"method":"GET"`)
	assert.NotContains(t, out, "s3cr3t-token")
}

func TestWithLogging_CSRFWarningOmitsPathToken(t *testing.T) {
	var buf bytes.Buffer
	env := newTestEnvWithLogger(t, &logger.Logger{Logger: zerolog.New(&buf)})

	rr := env.do(t, http.MethodPatch, "/auth/reset-password/s3cr3t-token", models.ResetPasswordRequest{})

	require.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, buf.String(), "csrf token mismatch")
	assert.NotContains(t, buf.String(), "s3cr3t-token")
}

func TestWithLogging_RecordsStatusAndSize(t *testing.T) {
	var buf bytes.Buffer
	h := &Handler{logger: logger.Nop()}
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req = req.WithContext(zerolog.New(&buf).WithContext(req.Context()))
	rr := httptest.NewRecorder()
	h.withLogging(next).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"size":15`)
	assert.Contains(t, buf.String(), `"route":"unmatched"`)
}
