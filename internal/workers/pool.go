// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Pool bounds the number of CPU-bound jobs (bcrypt hashing and comparison)
// running at once so that a burst of logins cannot starve request handling.
type Pool struct {
	sem  *semaphore.Weighted
	size int
}

// NewPool returns a pool admitting size concurrent jobs. A non-positive size
// means one job per CPU.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size)), size: size}
}

// Size returns the concurrency limit.
func (p *Pool) Size() int {
	return p.size
}

// Do waits for a free slot and runs job in the caller's goroutine.
// It returns ctx.Err() if the context ends before a slot frees up; job is
// then not run at all.
func (p *Pool) Do(ctx context.Context, job func() error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("waiting for hash slot: %w", err)
	}
	defer p.sem.Release(1)

	return job()
}
