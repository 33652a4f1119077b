// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/netip"
	"time"

	"github.com/MKhiriev/storefront-auth/internal/config"
	"github.com/MKhiriev/storefront-auth/internal/logger"
	"github.com/MKhiriev/storefront-auth/internal/ratelimit"
	"github.com/MKhiriev/storefront-auth/internal/service"
	"github.com/MKhiriev/storefront-auth/internal/utils"
)

type Handler struct {
	auth    service.AuthService
	appInfo service.AppInfoService
	limiter ratelimit.Limiter

	trustedProxies []netip.Prefix

	secureCookies  bool
	requestTimeout time.Duration

	logger *logger.Logger
}

func NewHandler(
	services *service.Services,
	limiter ratelimit.Limiter,
	serverCfg config.Server,
	securityCfg config.Security,
	logger *logger.Logger,
) *Handler {
	trustedProxies, err := utils.ParseTrustedProxies(serverCfg.TrustedProxies)
	if err != nil {
		logger.Err(err).Str("func", "NewHandler").Msg("ignoring forwarding headers from all peers")
		trustedProxies = nil
	}

	logger.Info().Int("trusted_proxies", len(trustedProxies)).Msg("http handler created")
	return &Handler{
		auth:           services.AuthService,
		appInfo:        services.AppInfoService,
		limiter:        limiter,
		trustedProxies: trustedProxies,
		secureCookies:  !securityCfg.InsecureCookies,
		requestTimeout: serverCfg.RequestTimeout,
		logger:         logger,
	}
}
