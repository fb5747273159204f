// Copyright 2026 The Field Labs Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package locks

import (
	"context"
	"errors"
)

// ErrInvalidArg is raised if an invalid argument is passed to a
// constructor in this package.
var ErrInvalidArg = errors.New("invalid argument")

// A Semaphore is a counting permit gate. It is constructed with an
// initial permit count which is also its capacity: the count can never
// go negative and can never exceed the capacity.
//
// A Semaphore with capacity 1 behaves as a (non-owner-checked) binary
// lock. With capacity K it admits at most K concurrent holders.
type Semaphore struct {
	permits  chan struct{}
	capacity int
}

// NewSemaphore constructs a Semaphore with the given number of
// permits. A zero-permit semaphore admits nobody, ever.
func NewSemaphore(permits int) (*Semaphore, error) {
	if permits < 0 {
		return nil, ErrInvalidArg
	}
	s := &Semaphore{
		permits:  make(chan struct{}, permits),
		capacity: permits,
	}
	for i := 0; i < permits; i++ {
		s.permits <- struct{}{}
	}
	return s, nil
}

// Acquire takes one permit, blocking while the count is zero. It
// returns the context's error if ctx is canceled first, in which case
// no permit was taken.
func (s *Semaphore) Acquire(ctx context.Context) error {
	// Prefer a permit over reporting cancellation when both are ready.
	select {
	case <-s.permits:
		return nil
	default:
	}
	select {
	case <-s.permits:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire takes one permit without blocking. It returns false if the
// count is zero.
func (s *Semaphore) TryAcquire() bool {
	select {
	case <-s.permits:
		return true
	default:
		return false
	}
}

// Release returns one permit, waking one blocked acquirer if any.
// Releasing more permits than were acquired would raise the count past
// the capacity; that is a contract violation and panics.
func (s *Semaphore) Release() {
	select {
	case s.permits <- struct{}{}:
	default:
		panic("locks: Semaphore.Release beyond capacity")
	}
}

// Permits reports the number of available permits. It is inherently
// racy with respect to concurrent acquirers and is intended for
// assertions and diagnostics.
func (s *Semaphore) Permits() int {
	return len(s.permits)
}

// Capacity reports the permit count the Semaphore was constructed with.
func (s *Semaphore) Capacity() int {
	return s.capacity
}
