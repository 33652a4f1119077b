// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"time"

	"github.com/MKhiriev/storefront-auth/internal/config"
	"github.com/MKhiriev/storefront-auth/internal/logger"
	"github.com/MKhiriev/storefront-auth/internal/store"
	"github.com/MKhiriev/storefront-auth/internal/workers"
)

type Services struct {
	AuthService    AuthService
	AppInfoService AppInfoService
}

// NewServices wires the auth components over storages. now is the clock
// used for every expiry and lockout decision.
func NewServices(
	storages *store.Storages,
	pool *workers.Pool,
	mail MailQueue,
	cfg *config.StructuredConfig,
	now func() time.Time,
	logger *logger.Logger,
) (*Services, error) {
	appInfo, err := NewAppInfoService(cfg.App, logger)
	if err != nil {
		return nil, err
	}

	credentials := NewCredentialStore(storages.UserRepository, storages.SecurityEventRepository, pool, cfg.App, now)
	auth := NewAuthService(AuthDeps{
		Users:       storages.UserRepository,
		Events:      storages.SecurityEventRepository,
		Credentials: credentials,
		Tokens:      NewTokenService(cfg.App, now),
		Lockout:     NewLockoutPolicy(storages.UserRepository, credentials, cfg.Security),
		Mail:        mail,
		Now:         now,
	}, cfg.Security, logger)

	return &Services{
		AuthService:    NewAuthValidationService().Wrap(auth),
		AppInfoService: appInfo,
	}, nil
}
