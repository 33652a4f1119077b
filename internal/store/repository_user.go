// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/storefront-auth/internal/logger"
	"github.com/MKhiriev/storefront-auth/models"
)

// userRepository is the SQL implementation of [UserRepository] over the
// "users" table. It works with both PostgreSQL and SQLite; the statement
// builder of the underlying [DB] picks the placeholder style.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type userRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

var returningUser = "RETURNING " + strings.Join(userColumns, ", ")

// CreateUser persists a new user record and returns the canonical database
// representation (defaults and timestamps included).
//
// Error handling:
//   - unique violation on email → [ErrEmailAlreadyExists].
//   - any other driver-level error → wrapped [ErrExecutingStatement].
func (r *userRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Insert(usersTable).
		Columns(
			"id", "email", "name", "role", "password_hash", "password_changed_at",
			"email_verified", "verification_token_hash", "verification_expiry",
			"active", "created_at", "updated_at",
		).
		Values(
			user.ID, user.Email, user.Name, string(user.Role), user.PasswordHash, nullTime(user.PasswordChangedAt),
			user.EmailVerified, nullString(user.VerificationTokenHash), nullTime(user.VerificationExpiry),
			true, utc(user.CreatedAt), utc(user.CreatedAt),
		).
		Suffix(returningUser).
		ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	created, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrEmailAlreadyExists
		}
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error inserting user")
		return models.User{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return created, nil
}

func (r *userRepository) FindActiveByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, "*userRepository.FindActiveByEmail", sq.Eq{"email": email, "active": true})
}

func (r *userRepository) FindActiveByID(ctx context.Context, id string) (models.User, error) {
	return r.findOne(ctx, "*userRepository.FindActiveByID", sq.Eq{"id": id, "active": true})
}

func (r *userRepository) FindActiveByResetToken(ctx context.Context, tokenHash string, now time.Time) (models.User, error) {
	user, err := r.findOne(ctx, "*userRepository.FindActiveByResetToken", sq.And{
		sq.Eq{"password_reset_token_hash": tokenHash, "active": true},
		sq.Gt{"password_reset_expiry": utc(now)},
	})
	if errors.Is(err, ErrUserNotFound) {
		return models.User{}, ErrTokenNotFound
	}
	return user, err
}

func (r *userRepository) findOne(ctx context.Context, fn string, where sq.Sqlizer) (models.User, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Select(userColumns...).
		From(usersTable).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var user models.User
	err = r.db.withReadRetry(ctx, func() error {
		var scanErr error
		user, scanErr = scanUser(r.db.QueryRowContext(ctx, query, args...))
		return scanErr
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		log.Err(err).Str("func", fn).Msg("error selecting user")
		return models.User{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return user, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) (models.User, error) {
	update := r.db.builder.
		Update(usersTable).
		Set("password_hash", passwordHash).
		Set("password_changed_at", utc(changedAt)).
		Set("updated_at", utc(changedAt)).
		Where(sq.Eq{"id": id, "active": true})

	user, err := r.updateOne(ctx, "*userRepository.UpdatePassword", update)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// RegisterFailedLogin increments login_attempts and, once the new value
// reaches threshold, sets account_locked and lock_until in the same
// statement. An already locked account keeps its original lock_until.
func (r *userRepository) RegisterFailedLogin(ctx context.Context, id string, threshold int, lockUntil, now time.Time) (models.LockoutState, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Update(usersTable).
		Set("login_attempts", sq.Expr("login_attempts + 1")).
		Set("account_locked", sq.Expr("CASE WHEN login_attempts + 1 >= ? THEN TRUE ELSE account_locked END", threshold)).
		Set("lock_until", sq.Expr("CASE WHEN account_locked THEN lock_until WHEN login_attempts + 1 >= ? THEN ? ELSE lock_until END", threshold, utc(lockUntil))).
		Set("updated_at", utc(now)).
		Where(sq.Eq{"id": id, "active": true}).
		Suffix("RETURNING login_attempts, account_locked, lock_until").
		ToSql()
	if err != nil {
		return models.LockoutState{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var (
		state models.LockoutState
		until scannedTime
	)
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&state.LoginAttempts, &state.AccountLocked, &until)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.LockoutState{}, ErrUserNotFound
		}
		log.Err(err).Str("func", "*userRepository.RegisterFailedLogin").Msg("error incrementing failed logins")
		return models.LockoutState{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	state.LockUntil = timePtr(until)

	return state, nil
}

func (r *userRepository) UnlockExpired(ctx context.Context, id string, now time.Time) (bool, error) {
	n, err := r.exec(ctx, "*userRepository.UnlockExpired", r.db.builder.
		Update(usersTable).
		Set("login_attempts", 0).
		Set("account_locked", false).
		Set("lock_until", nil).
		Set("updated_at", utc(now)).
		Where(sq.And{
			sq.Eq{"id": id, "account_locked": true},
			sq.Or{sq.Eq{"lock_until": nil}, sq.LtOrEq{"lock_until": utc(now)}},
		}))
	return n > 0, err
}

// RecordLogin matches only accounts outside a live lock, so a lock placed
// by concurrent failures while the password was being checked survives.
func (r *userRepository) RecordLogin(ctx context.Context, id, ip string, now time.Time) error {
	n, err := r.exec(ctx, "*userRepository.RecordLogin", r.db.builder.
		Update(usersTable).
		Set("login_attempts", 0).
		Set("account_locked", false).
		Set("lock_until", nil).
		Set("last_login", utc(now)).
		Set("last_login_ip", nullString(ip)).
		Set("updated_at", utc(now)).
		Where(sq.And{
			sq.Eq{"id": id, "active": true},
			sq.Or{sq.Eq{"account_locked": false}, sq.Eq{"lock_until": nil}, sq.LtOrEq{"lock_until": utc(now)}},
		}))
	if err == nil && n == 0 {
		return ErrUserNotFound
	}
	return err
}

func (r *userRepository) SetResetToken(ctx context.Context, id, tokenHash string, expiry time.Time) error {
	n, err := r.exec(ctx, "*userRepository.SetResetToken", r.db.builder.
		Update(usersTable).
		Set("password_reset_token_hash", tokenHash).
		Set("password_reset_expiry", utc(expiry)).
		Where(sq.Eq{"id": id, "active": true}))
	if err == nil && n == 0 {
		return ErrUserNotFound
	}
	return err
}

// ConsumeResetToken matches on id, hash and expiry in the WHERE clause so
// that a token consumed or replaced by a concurrent request cannot be used
// again, and the password change happens in the same statement.
func (r *userRepository) ConsumeResetToken(ctx context.Context, id, tokenHash, passwordHash string, changedAt, now time.Time) (models.User, error) {
	update := r.db.builder.
		Update(usersTable).
		Set("password_hash", passwordHash).
		Set("password_changed_at", utc(changedAt)).
		Set("password_reset_token_hash", nil).
		Set("password_reset_expiry", nil).
		Set("updated_at", utc(now)).
		Where(sq.And{
			sq.Eq{"id": id, "password_reset_token_hash": tokenHash, "active": true},
			sq.Gt{"password_reset_expiry": utc(now)},
		})

	user, err := r.updateOne(ctx, "*userRepository.ConsumeResetToken", update)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrTokenNotFound
	}
	return user, err
}

func (r *userRepository) SetVerificationToken(ctx context.Context, id, tokenHash string, expiry time.Time) error {
	n, err := r.exec(ctx, "*userRepository.SetVerificationToken", r.db.builder.
		Update(usersTable).
		Set("verification_token_hash", tokenHash).
		Set("verification_expiry", utc(expiry)).
		Where(sq.Eq{"id": id, "active": true}))
	if err == nil && n == 0 {
		return ErrUserNotFound
	}
	return err
}

func (r *userRepository) ConsumeVerificationToken(ctx context.Context, tokenHash string, now time.Time) (models.User, error) {
	update := r.db.builder.
		Update(usersTable).
		Set("email_verified", true).
		Set("verification_token_hash", nil).
		Set("verification_expiry", nil).
		Set("updated_at", utc(now)).
		Where(sq.And{
			sq.Eq{"verification_token_hash": tokenHash, "active": true},
			sq.Gt{"verification_expiry": utc(now)},
		})

	user, err := r.updateOne(ctx, "*userRepository.ConsumeVerificationToken", update)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrTokenNotFound
	}
	return user, err
}

func (r *userRepository) PurgeExpiredActionTokens(ctx context.Context, now time.Time) (int64, error) {
	resets, err := r.exec(ctx, "*userRepository.PurgeExpiredActionTokens", r.db.builder.
		Update(usersTable).
		Set("password_reset_token_hash", nil).
		Set("password_reset_expiry", nil).
		Where(sq.And{
			sq.NotEq{"password_reset_token_hash": nil},
			sq.LtOrEq{"password_reset_expiry": utc(now)},
		}))
	if err != nil {
		return 0, err
	}

	verifications, err := r.exec(ctx, "*userRepository.PurgeExpiredActionTokens", r.db.builder.
		Update(usersTable).
		Set("verification_token_hash", nil).
		Set("verification_expiry", nil).
		Where(sq.And{
			sq.NotEq{"verification_token_hash": nil},
			sq.LtOrEq{"verification_expiry": utc(now)},
		}))
	if err != nil {
		return resets, err
	}

	return resets + verifications, nil
}

// updateOne runs an UPDATE ... RETURNING for a single user. It returns
// sql.ErrNoRows unchanged so callers can map it to their own sentinel.
func (r *userRepository) updateOne(ctx context.Context, fn string, update sq.UpdateBuilder) (models.User, error) {
	log := logger.FromContext(ctx)

	query, args, err := update.Suffix(returningUser).ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, err
		}
		log.Err(err).Str("func", fn).Msg("error updating user")
		return models.User{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return user, nil
}

func (r *userRepository) exec(ctx context.Context, fn string, update sq.UpdateBuilder) (int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := update.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", fn).Msg("error executing update")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return n, nil
}
