// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/MKhiriev/storefront-auth/models"
)

const (
	usersTable          = "users"
	securityEventsTable = "security_events"
)

// userColumns is the canonical column order used by scanUser.
var userColumns = []string{
	"id",
	"email",
	"name",
	"role",
	"password_hash",
	"password_changed_at",
	"email_verified",
	"verification_token_hash",
	"verification_expiry",
	"password_reset_token_hash",
	"password_reset_expiry",
	"login_attempts",
	"account_locked",
	"lock_until",
	"last_login",
	"last_login_ip",
	"active",
	"created_at",
	"updated_at",
}

var securityEventColumns = []string{
	"id",
	"user_id",
	"kind",
	"occurred_at",
	"source_ip",
	"detail",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var (
		u                                  models.User
		role                               string
		changedAt, verifyExp, resetExp     scannedTime
		lockUntil, lastLogin               scannedTime
		createdAt, updatedAt               scannedTime
		verifyHash, resetHash, lastLoginIP sql.NullString
	)

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&role,
		&u.PasswordHash,
		&changedAt,
		&u.EmailVerified,
		&verifyHash,
		&verifyExp,
		&resetHash,
		&resetExp,
		&u.LoginAttempts,
		&u.AccountLocked,
		&lockUntil,
		&lastLogin,
		&lastLoginIP,
		&u.Active,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return models.User{}, err
	}

	u.Role = models.Role(role)
	u.PasswordChangedAt = timePtr(changedAt)
	u.VerificationTokenHash = verifyHash.String
	u.VerificationExpiry = timePtr(verifyExp)
	u.PasswordResetTokenHash = resetHash.String
	u.PasswordResetExpiry = timePtr(resetExp)
	u.LockUntil = timePtr(lockUntil)
	u.LastLogin = timePtr(lastLogin)
	u.LastLoginIP = lastLoginIP.String
	u.CreatedAt = createdAt.Time
	u.UpdatedAt = updatedAt.Time

	return u, nil
}

func scanSecurityEvent(row rowScanner) (models.SecurityEvent, error) {
	var (
		e          models.SecurityEvent
		kind       string
		occurredAt scannedTime
		ip, detail sql.NullString
	)
	if err := row.Scan(&e.ID, &e.UserID, &kind, &occurredAt, &ip, &detail); err != nil {
		return models.SecurityEvent{}, err
	}
	e.Timestamp = occurredAt.Time
	e.Kind = models.SecurityEventKind(kind)
	e.SourceIP = ip.String
	e.Detail = detail.String
	return e, nil
}

func timePtr(t scannedTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// scannedTime is a nullable timestamp that also accepts the text form
// SQLite hands back for expressions without a declared column type, such
// as RETURNING columns.
type scannedTime struct {
	Time  time.Time
	Valid bool
}

func (t *scannedTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = scannedTime{}
		return nil
	case time.Time:
		*t = scannedTime{Time: v.UTC(), Valid: true}
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
}

func (t *scannedTime) parse(s string) error {
	s = strings.TrimSuffix(s, "Z")
	for _, layout := range sqlite3.SQLiteTimestampFormats {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			*t = scannedTime{Time: parsed.UTC(), Valid: true}
			return nil
		}
	}
	return fmt.Errorf("cannot parse timestamp %q", s)
}

// nullTime converts an optional timestamp to a driver value.
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: utc(*t), Valid: true}
}

// nullString maps the empty string to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
