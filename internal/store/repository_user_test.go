// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MKhiriev/storefront-auth/internal/logger"
	"github.com/MKhiriev/storefront-auth/models"
)

func newTestUserRepo(t *testing.T) (*userRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.Nop()
	repo := &userRepository{
		db:     newDB(db, DialectPostgres, l),
		logger: l,
	}
	return repo, mock, db
}

func pgError(code string) error {
	return &pgconn.PgError{Code: code}
}

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func userRows(u models.User) *sqlmock.Rows {
	return sqlmock.NewRows(userColumns).AddRow(
		u.ID, u.Email, u.Name, string(u.Role), u.PasswordHash, nil,
		u.EmailVerified, nil, nil, nil, nil,
		u.LoginAttempts, u.AccountLocked, nil, nil, nil,
		true, testNow, testNow,
	)
}

func testUser() models.User {
	return models.User{
		ID:           "0190a6c4-0000-7000-8000-000000000001",
		Email:        "jane@example.com",
		Name:         "Jane",
		Role:         models.RoleUser,
		PasswordHash: "$2a$12$hash",
		CreatedAt:    testNow,
	}
}

func TestCreateUser_Success(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	user := testUser()
	mock.ExpectQuery("INSERT INTO users").
		WillReturnRows(userRows(user))

	created, err := repo.CreateUser(context.Background(), user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != user.ID || created.Email != user.Email {
		t.Errorf("unexpected user returned: %+v", created)
	}
	if !created.Active {
		t.Error("expected created user to be active")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCreateUser_UniqueViolation(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(pgError(pgerrcode.UniqueViolation))

	_, err := repo.CreateUser(context.Background(), testUser())
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestCreateUser_UnexpectedDBError(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(errors.New("db network error"))

	_, err := repo.CreateUser(context.Background(), testUser())
	if !errors.Is(err, ErrExecutingStatement) {
		t.Fatalf("expected ErrExecutingStatement, got %v", err)
	}
}

func TestFindActiveByEmail_Success(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	user := testUser()
	mock.ExpectQuery("SELECT (.+) FROM users WHERE").
		WithArgs(true, user.Email).
		WillReturnRows(userRows(user))

	got, err := repo.FindActiveByEmail(context.Background(), user.Email)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("expected id %s, got %s", user.ID, got.ID)
	}
}

func TestFindActiveByEmail_NotFound(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindActiveByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestFindActiveByID_RetriesTransientError(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	user := testUser()
	mock.ExpectQuery("SELECT (.+) FROM users WHERE").
		WillReturnError(pgError(pgerrcode.ConnectionFailure))
	mock.ExpectQuery("SELECT (.+) FROM users WHERE").
		WillReturnRows(userRows(user))

	got, err := repo.FindActiveByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("expected id %s, got %s", user.ID, got.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestFindActiveByID_GivesUpAfterRetries(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	for range readRetries {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE").
			WillReturnError(pgError(pgerrcode.ConnectionFailure))
	}

	_, err := repo.FindActiveByID(context.Background(), "id")
	if !errors.Is(err, ErrExecutingQuery) {
		t.Fatalf("expected ErrExecutingQuery, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestFindActiveByID_DoesNotRetryPermanentError(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE").
		WillReturnError(pgError(pgerrcode.UndefinedTable))

	_, err := repo.FindActiveByID(context.Background(), "id")
	if !errors.Is(err, ErrExecutingQuery) {
		t.Fatalf("expected ErrExecutingQuery, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestFindActiveByResetToken_NotFound(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindActiveByResetToken(context.Background(), "hash", testNow)
	if !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound, got %v", err)
	}
}

func TestRegisterFailedLogin_ReturnsState(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	lockUntil := testNow.Add(30 * time.Minute)
	mock.ExpectQuery(`UPDATE users SET login_attempts = login_attempts \+ 1`).
		WillReturnRows(sqlmock.NewRows([]string{"login_attempts", "account_locked", "lock_until"}).
			AddRow(5, true, lockUntil))

	state, err := repo.RegisterFailedLogin(context.Background(), "id", 5, lockUntil, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.LoginAttempts != 5 || !state.AccountLocked {
		t.Errorf("unexpected state: %+v", state)
	}
	if state.LockUntil == nil || !state.LockUntil.Equal(lockUntil) {
		t.Errorf("expected lock until %v, got %v", lockUntil, state.LockUntil)
	}
}

func TestRegisterFailedLogin_NotRetried(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	mock.ExpectQuery("UPDATE users").
		WillReturnError(pgError(pgerrcode.ConnectionFailure))

	_, err := repo.RegisterFailedLogin(context.Background(), "id", 5, testNow, testNow)
	if !errors.Is(err, ErrExecutingStatement) {
		t.Fatalf("expected ErrExecutingStatement, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestConsumeResetToken_NoMatch(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	mock.ExpectQuery("UPDATE users SET password_hash").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.ConsumeResetToken(context.Background(), "id", "hash", "newhash", testNow, testNow)
	if !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound, got %v", err)
	}
}

func TestUnlockExpired(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	mock.ExpectExec("UPDATE users SET login_attempts").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users SET login_attempts").
		WillReturnResult(sqlmock.NewResult(0, 0))

	unlocked, err := repo.UnlockExpired(context.Background(), "id", testNow)
	if err != nil || !unlocked {
		t.Fatalf("expected unlock, got %v %v", unlocked, err)
	}
	unlocked, err = repo.UnlockExpired(context.Background(), "id", testNow)
	if err != nil || unlocked {
		t.Fatalf("expected no-op, got %v %v", unlocked, err)
	}
}

func TestRecordLogin_UnknownUser(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	mock.ExpectExec("UPDATE users").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.RecordLogin(context.Background(), "missing", "127.0.0.1", testNow)
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestPurgeExpiredActionTokens_SumsBothKinds(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	mock.ExpectExec("UPDATE users SET password_reset_token_hash").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE users SET verification_token_hash").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.PurgeExpiredActionTokens(context.Background(), testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 5 {
		t.Errorf("expected 5 purged tokens, got %d", n)
	}
}
