// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/MKhiriev/storefront-auth/internal/config"
	"github.com/MKhiriev/storefront-auth/internal/logger"
	"github.com/MKhiriev/storefront-auth/internal/store"
	"github.com/MKhiriev/storefront-auth/internal/workers"
	"github.com/MKhiriev/storefront-auth/models"
)

// ─────────────────────────────────────────────
// Clock
// ─────────────────────────────────────────────

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// ─────────────────────────────────────────────
// In-memory store.UserRepository
// ─────────────────────────────────────────────

type memUsers struct {
	mu    sync.Mutex
	users map[string]*models.User

	// afterFindByEmail runs once the email lookup returns, before the
	// caller sees the user.
	afterFindByEmail func(models.User)
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[string]*models.User)}
}

func (m *memUsers) get(id string) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.users[id]
}

func (m *memUsers) CreateUser(_ context.Context, user models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return models.User{}, store.ErrEmailAlreadyExists
		}
	}
	user.Active = true
	user.UpdatedAt = user.CreatedAt
	m.users[user.ID] = &user
	return user, nil
}

func (m *memUsers) find(match func(u *models.User) bool, notFound error) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Active && match(u) {
			return *u, nil
		}
	}
	return models.User{}, notFound
}

func (m *memUsers) FindActiveByEmail(_ context.Context, email string) (models.User, error) {
	user, err := m.find(func(u *models.User) bool { return u.Email == email }, store.ErrUserNotFound)
	if err == nil && m.afterFindByEmail != nil {
		m.afterFindByEmail(user)
	}
	return user, err
}

func (m *memUsers) FindActiveByID(_ context.Context, id string) (models.User, error) {
	return m.find(func(u *models.User) bool { return u.ID == id }, store.ErrUserNotFound)
}

func (m *memUsers) FindActiveByResetToken(_ context.Context, hash string, now time.Time) (models.User, error) {
	return m.find(func(u *models.User) bool {
		return u.PasswordResetTokenHash == hash && u.PasswordResetExpiry != nil && now.Before(*u.PasswordResetExpiry)
	}, store.ErrTokenNotFound)
}

func (m *memUsers) UpdatePassword(_ context.Context, id, hash string, changedAt time.Time) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || !u.Active {
		return models.User{}, store.ErrUserNotFound
	}
	u.PasswordHash = hash
	u.PasswordChangedAt = &changedAt
	return *u, nil
}

func (m *memUsers) RegisterFailedLogin(_ context.Context, id string, threshold int, lockUntil, _ time.Time) (models.LockoutState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || !u.Active {
		return models.LockoutState{}, store.ErrUserNotFound
	}
	u.LoginAttempts++
	if !u.AccountLocked && u.LoginAttempts >= threshold {
		u.AccountLocked = true
		u.LockUntil = &lockUntil
	}
	return models.LockoutState{LoginAttempts: u.LoginAttempts, AccountLocked: u.AccountLocked, LockUntil: u.LockUntil}, nil
}

func (m *memUsers) UnlockExpired(_ context.Context, id string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || !u.AccountLocked || (u.LockUntil != nil && now.Before(*u.LockUntil)) {
		return false, nil
	}
	u.AccountLocked, u.LoginAttempts, u.LockUntil = false, 0, nil
	return true, nil
}

func (m *memUsers) RecordLogin(_ context.Context, id, ip string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || !u.Active || u.IsLocked(now) {
		return store.ErrUserNotFound
	}
	u.LoginAttempts, u.AccountLocked, u.LockUntil = 0, false, nil
	u.LastLogin, u.LastLoginIP = &now, ip
	return nil
}

func (m *memUsers) SetResetToken(_ context.Context, id, hash string, expiry time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	u.PasswordResetTokenHash, u.PasswordResetExpiry = hash, &expiry
	return nil
}

func (m *memUsers) ConsumeResetToken(_ context.Context, id, tokenHash, passwordHash string, changedAt, now time.Time) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || !u.Active || u.PasswordResetTokenHash != tokenHash ||
		u.PasswordResetExpiry == nil || !now.Before(*u.PasswordResetExpiry) {
		return models.User{}, store.ErrTokenNotFound
	}
	u.PasswordHash, u.PasswordChangedAt = passwordHash, &changedAt
	u.PasswordResetTokenHash, u.PasswordResetExpiry = "", nil
	return *u, nil
}

func (m *memUsers) SetVerificationToken(_ context.Context, id, hash string, expiry time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	u.VerificationTokenHash, u.VerificationExpiry = hash, &expiry
	return nil
}

func (m *memUsers) ConsumeVerificationToken(_ context.Context, hash string, now time.Time) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Active && u.VerificationTokenHash == hash && u.VerificationExpiry != nil && now.Before(*u.VerificationExpiry) {
			u.EmailVerified = true
			u.VerificationTokenHash, u.VerificationExpiry = "", nil
			return *u, nil
		}
	}
	return models.User{}, store.ErrTokenNotFound
}

func (m *memUsers) PurgeExpiredActionTokens(context.Context, time.Time) (int64, error) {
	return 0, nil
}

// ─────────────────────────────────────────────
// In-memory store.SecurityEventRepository
// ─────────────────────────────────────────────

type memEvents struct {
	mu     sync.Mutex
	events []models.SecurityEvent
}

func (m *memEvents) AppendEvent(_ context.Context, e models.SecurityEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = int64(len(m.events) + 1)
	m.events = append(m.events, e)
	return nil
}

func (m *memEvents) ListEvents(_ context.Context, userID string, limit uint64) ([]models.SecurityEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.SecurityEvent
	for i := len(m.events) - 1; i >= 0 && uint64(len(out)) < limit; i-- {
		if m.events[i].UserID == userID {
			out = append(out, m.events[i])
		}
	}
	return out, nil
}

func (m *memEvents) kinds(userID string) []models.SecurityEventKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.SecurityEventKind
	for _, e := range m.events {
		if e.UserID == userID {
			out = append(out, e.Kind)
		}
	}
	return out
}

// ─────────────────────────────────────────────
// MailQueue
// ─────────────────────────────────────────────

type memMail struct {
	mu   sync.Mutex
	sent []models.MailMessage
}

func (m *memMail) Enqueue(msg models.MailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *memMail) last() (models.MailMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return models.MailMessage{}, false
	}
	return m.sent[len(m.sent)-1], true
}

func (m *memMail) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// ─────────────────────────────────────────────
// Harness
// ─────────────────────────────────────────────

const testSignKey = "0123456789abcdef0123456789abcdef"

type harness struct {
	svc    AuthService
	users  *memUsers
	events *memEvents
	mail   *memMail
	clock  *testClock
	tokens *TokenService
}

func testConfig() *config.StructuredConfig {
	return &config.StructuredConfig{
		App: config.App{
			TokenSignKey:       testSignKey,
			TokenIssuer:        config.DefaultTokenIssuer,
			TokenDuration:      config.DefaultTokenDuration,
			BcryptCost:         bcrypt.MinCost,
			PasswordChangeSkew: config.DefaultPasswordChangeSkew,
			Version:            "test",
		},
		Security: config.Security{
			LockoutThreshold:     config.DefaultLockoutThreshold,
			LockoutDuration:      config.DefaultLockoutDuration,
			ResetTokenTTL:        config.DefaultResetTokenTTL,
			VerificationTokenTTL: config.DefaultVerificationTokenTTL,
		},
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		users:  newMemUsers(),
		events: &memEvents{},
		mail:   &memMail{},
		clock:  newTestClock(),
	}
	storages := &store.Storages{UserRepository: h.users, SecurityEventRepository: h.events}

	cfg := testConfig()
	services, err := NewServices(storages, workers.NewPool(4), h.mail, cfg, h.clock.Now, logger.Nop())
	if err != nil {
		t.Fatalf("NewServices: %v", err)
	}
	h.svc = services.AuthService
	h.tokens = NewTokenService(cfg.App, h.clock.Now)
	return h
}
