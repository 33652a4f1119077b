// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package grpc

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/MKhiriev/storefront-auth/internal/logger"
)

func check(t *testing.T, h *Handler, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := h.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestNewHandler_StartsNotServing(t *testing.T) {
	h := NewHandler(logger.Nop())

	for _, svc := range h.Services() {
		assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, h, svc), "service %q", svc)
	}
}

func TestSetServingStatus(t *testing.T) {
	h := NewHandler(logger.Nop())

	h.SetServingStatus(AuthServiceName, healthpb.HealthCheckResponse_SERVING)

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, h, AuthServiceName))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, h, ""))
}

func TestSetServingStatus_LogsOnlyTransitions(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&logger.Logger{Logger: zerolog.New(&buf)})

	h.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	h.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	h.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	assert.Equal(t, 2, strings.Count(buf.String(), "health status changed"))
}

func TestShutdown_ForcesNotServing(t *testing.T) {
	h := NewHandler(logger.Nop())
	h.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	h.Shutdown()
	h.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, h, ""))
}
