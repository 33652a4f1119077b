// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/storefront-auth/internal/logger"
	"github.com/MKhiriev/storefront-auth/models"
)

type securityEventRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewSecurityEventRepository constructs the audit log repository.
func NewSecurityEventRepository(db *DB, logger *logger.Logger) SecurityEventRepository {
	logger.Debug().Msg("creating security event repository")
	return &securityEventRepository{
		db:     db,
		logger: logger,
	}
}

func (r *securityEventRepository) AppendEvent(ctx context.Context, event models.SecurityEvent) error {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Insert(securityEventsTable).
		Columns("user_id", "kind", "occurred_at", "source_ip", "detail").
		Values(event.UserID, string(event.Kind), utc(event.Timestamp), nullString(event.SourceIP), nullString(event.Detail)).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "*securityEventRepository.AppendEvent").Msg("error inserting security event")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *securityEventRepository) ListEvents(ctx context.Context, userID string, limit uint64) ([]models.SecurityEvent, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Select(securityEventColumns...).
		From(securityEventsTable).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("occurred_at DESC", "id DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var events []models.SecurityEvent
	err = r.db.withReadRetry(ctx, func() error {
		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		events = make([]models.SecurityEvent, 0, limit)
		for rows.Next() {
			event, err := scanSecurityEvent(rows)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrScanningRows, err)
			}
			events = append(events, event)
		}
		return rows.Err()
	})
	if err != nil {
		log.Err(err).Str("func", "*securityEventRepository.ListEvents").Msg("error listing security events")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return events, nil
}
