// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import "github.com/MKhiriev/storefront-auth/internal/logger"

// Storages groups every repository built on one database connection.
type Storages struct {
	UserRepository          UserRepository
	SecurityEventRepository SecurityEventRepository
}

func NewStorages(db *DB, log *logger.Logger) *Storages {
	return &Storages{
		UserRepository:          NewUserRepository(db, log),
		SecurityEventRepository: NewSecurityEventRepository(db, log),
	}
}
