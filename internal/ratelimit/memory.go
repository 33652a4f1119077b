// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// Memory is an in-process fixed-window [Limiter]. Expired windows are
// replaced lazily on the next hit for the same key; [Memory.Purge] drops
// the ones never hit again.
type Memory struct {
	mu      sync.Mutex
	rules   Rules
	now     func() time.Time
	windows map[string]*window
}

func NewMemory(rules Rules, now func() time.Time) *Memory {
	return &Memory{
		rules:   rules,
		now:     now,
		windows: make(map[string]*window),
	}
}

func (m *Memory) Allow(_ context.Context, key string, action Action) (Decision, error) {
	rule, err := m.rules.rule(action)
	if err != nil {
		return Decision{}, err
	}

	now := m.now()
	k := counterKey(action, key)

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[k]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(rule.Window)}
		m.windows[k] = w
	}
	w.count++

	if w.count > rule.Limit {
		return Decision{RetryAfter: w.resetAt.Sub(now)}, nil
	}
	return Decision{Allowed: true, Remaining: rule.Limit - w.count}, nil
}

// Purge removes every window that ended at or before now and returns how
// many were removed.
func (m *Memory) Purge(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for k, w := range m.windows {
		if !now.Before(w.resetAt) {
			delete(m.windows, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked windows.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}
