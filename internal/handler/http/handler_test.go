// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/storefront-auth/internal/config"
	"github.com/MKhiriev/storefront-auth/internal/logger"
	"github.com/MKhiriev/storefront-auth/internal/mock"
	"github.com/MKhiriev/storefront-auth/internal/ratelimit"
	"github.com/MKhiriev/storefront-auth/internal/service"
	"github.com/MKhiriev/storefront-auth/models"
)

const (
	testClientIP  = "192.0.2.1" // httptest.NewRequest RemoteAddr
	testCSRF      = "4f2a6c1e9b7d3a5c8e0f1b2d4a6c8e0f4f2a6c1e9b7d3a5c8e0f1b2d4a6c8e0f"
	testSessionID = "eyJhbGciOiJIUzI1NiJ9.test.sig"
)

type testEnv struct {
	router  *chi.Mux
	auth    *mock.MockAuthService
	appInfo *mock.MockAppInfoService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithLogger(t, logger.Nop())
}

func newTestEnvWithLogger(t *testing.T, log *logger.Logger) *testEnv {
	t.Helper()
	return newTestEnvWithServer(t, log, config.Server{RequestTimeout: 5 * time.Second})
}

func newTestEnvWithServer(t *testing.T, log *logger.Logger, serverCfg config.Server) *testEnv {
	t.Helper()
	ctrl := gomock.NewController(t)

	auth := mock.NewMockAuthService(ctrl)
	appInfo := mock.NewMockAppInfoService(ctrl)
	auth.EXPECT().SessionDuration().Return(config.DefaultTokenDuration).AnyTimes()

	limiter := ratelimit.NewMemory(ratelimit.RulesFromConfig(config.RateLimit{
		LoginLimit:          config.DefaultLoginLimit,
		LoginWindow:         config.DefaultLoginWindow,
		SignupLimit:         config.DefaultSignupLimit,
		SignupWindow:        config.DefaultSignupWindow,
		PasswordResetLimit:  config.DefaultPasswordResetLimit,
		PasswordResetWindow: config.DefaultPasswordResetWindow,
	}), time.Now)

	h := NewHandler(
		&service.Services{AuthService: auth, AppInfoService: appInfo},
		limiter,
		serverCfg,
		config.Security{},
		log,
	)
	return &testEnv{router: h.Init(), auth: auth, appInfo: appInfo}
}

type requestOption func(*http.Request)

func withCSRF(r *http.Request) {
	r.AddCookie(&http.Cookie{Name: csrfCookieName, Value: testCSRF})
	r.Header.Set(csrfHeaderName, testCSRF)
}

func withBearer(token string) requestOption {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withSessionCookie(token string) requestOption {
	return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token}) }
}

func fromIP(ip string) requestOption {
	return func(r *http.Request) { r.RemoteAddr = net.JoinHostPort(ip, "41000") }
}

func forwardedFor(ip string) requestOption {
	return func(r *http.Request) {
		r.Header.Set("X-Forwarded-For", ip)
		r.Header.Set("X-Real-IP", ip)
		r.Header.Set("True-Client-IP", ip)
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	for _, opt := range opts {
		opt(req)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body
}

func findCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func testSession(user models.User) models.Session {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	return models.Session{
		User: user,
		Token: models.Token{
			SignedString: testSessionID,
			UserID:       user.ID,
			IssuedAt:     now,
			ExpiresAt:    now.Add(config.DefaultTokenDuration),
		},
	}
}

var (
	alice = models.User{ID: "u-1", Email: "alice@example.com", Name: "Alice", Role: models.RoleUser, PasswordHash: "$2a$12$secret"}
	admin = models.User{ID: "u-9", Email: "root@example.com", Name: "Root", Role: models.RoleAdmin}
)
