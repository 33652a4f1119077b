// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package grpc

import (
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/MKhiriev/storefront-auth/internal/logger"
)

// AuthServiceName is the health-check service name of the auth API. The
// empty name reports the overall server status.
const AuthServiceName = "storefront.auth.v1.Auth"

// Handler is the root gRPC transport handler.
//
// It serves the standard grpc.health.v1.Health service. Statuses start as
// NOT_SERVING and are updated by the database health probe through
// [Handler.SetServingStatus].
type Handler struct {
	health *health.Server

	mu       sync.Mutex
	statuses map[string]healthpb.HealthCheckResponse_ServingStatus

	logger *logger.Logger
}

func NewHandler(logger *logger.Logger) *Handler {
	h := &Handler{
		health:   health.NewServer(),
		statuses: make(map[string]healthpb.HealthCheckResponse_ServingStatus),
		logger:   logger.WithComponent("grpc-health"),
	}
	for _, svc := range h.Services() {
		h.health.SetServingStatus(svc, healthpb.HealthCheckResponse_NOT_SERVING)
		h.statuses[svc] = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.logger.Debug().Msg("gRPC handler created")
	return h
}

// Services lists the health-check service names this handler reports.
func (h *Handler) Services() []string {
	return []string{"", AuthServiceName}
}

// Register attaches the health service to s.
func (h *Handler) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.health)
}

// SetServingStatus publishes status for service and logs transitions.
func (h *Handler) SetServingStatus(service string, status healthpb.HealthCheckResponse_ServingStatus) {
	h.mu.Lock()
	prev, known := h.statuses[service]
	h.statuses[service] = status
	h.mu.Unlock()

	if !known || prev != status {
		h.logger.Info().
			Str("service", service).
			Stringer("status", status).
			Msg("health status changed")
	}
	h.health.SetServingStatus(service, status)
}

// Shutdown marks every service NOT_SERVING and ignores later updates.
func (h *Handler) Shutdown() {
	h.health.Shutdown()
}
