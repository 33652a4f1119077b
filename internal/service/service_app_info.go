// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/storefront-auth/internal/config"
	"github.com/MKhiriev/storefront-auth/internal/logger"
)

// buildInfo reports which storefront-auth build is answering, so a
// storefront deploy can check that the auth tier it talks to is current.
type buildInfo struct {
	version string
}

// NewAppInfoService returns the service behind /api/version. The version
// comes from ldflags or APP_VERSION and must not be empty.
func NewAppInfoService(cfg config.App, log *logger.Logger) (AppInfoService, error) {
	if cfg.Version == "" {
		return nil, ErrVersionIsNotSpecified
	}

	log.Info().Str("version", cfg.Version).Msg("storefront-auth build")
	return &buildInfo{version: cfg.Version}, nil
}

func (b *buildInfo) GetAppVersion(context.Context) string {
	return b.version
}
