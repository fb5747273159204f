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
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// A Mutex is a mutual-exclusion lock that is acquired through typed
// [Guard] values. At most one Guard is live at any time; the lock is
// released only through that Guard.
//
// The Mutex is not reentrant. A goroutine that acquires it again while
// still holding its Guard panics instead of deadlocking against
// itself.
//
// A Mutex must be constructed with [NewMutex] and must not be copied
// after first use. There is no ordering guarantee among blocked
// acquirers.
type Mutex struct {
	mu struct {
		sync.Mutex
		cond    sync.Cond
		held    bool
		owner   int64 // Goroutine holding the lock, 0 when unknown.
		waiters int
	}
}

// NewMutex constructs an unlocked Mutex.
func NewMutex() *Mutex {
	m := &Mutex{}
	m.mu.cond.L = &m.mu.Mutex
	return m
}

// Lock blocks the caller until the mutex is free, acquires it, and
// returns the Guard that releases it. Lock panics if the calling
// goroutine already holds the mutex.
func (m *Mutex) Lock() *Guard {
	id := goid()
	m.mu.Lock()
	defer m.mu.Unlock()
	if id != 0 && m.mu.held && m.mu.owner == id {
		panic("locks: Lock of Mutex held by the calling goroutine")
	}
	for m.mu.held {
		m.mu.waiters++
		m.mu.cond.Wait()
		m.mu.waiters--
	}
	m.mu.held = true
	m.mu.owner = id
	return &Guard{m: m}
}

// TryLock acquires the mutex if it is free. The Guard is nil when the
// returned bool is false. Like [Mutex.Lock], TryLock panics if the
// calling goroutine already holds the mutex.
func (m *Mutex) TryLock() (*Guard, bool) {
	id := goid()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mu.held {
		if id != 0 && m.mu.owner == id {
			panic("locks: TryLock of Mutex held by the calling goroutine")
		}
		return nil, false
	}
	m.mu.held = true
	m.mu.owner = id
	return &Guard{m: m}, true
}

// Held reports whether the mutex is currently held by some Guard. It is
// inherently racy with respect to concurrent acquirers and is intended
// for assertions and diagnostics.
func (m *Mutex) Held() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mu.held
}

// Waiters reports the number of callers currently blocked in
// [Mutex.Lock]. Like [Mutex.Held], it is diagnostic only.
func (m *Mutex) Waiters() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mu.waiters
}

// A Guard represents one acquisition of a [Mutex]. Its release is
// one-shot: the second Unlock panics.
type Guard struct {
	m    *Mutex
	done bool // Guarded by m.mu.
}

// Unlock releases the mutex held by this Guard, waking one blocked
// acquirer if any. Unlock panics if the Guard has already been
// released.
func (g *Guard) Unlock() {
	m := g.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if g.done {
		panic("locks: Unlock of released Guard")
	}
	if !m.mu.held {
		panic("locks: Unlock of unlocked Mutex")
	}
	g.done = true
	m.mu.held = false
	m.mu.owner = 0
	m.mu.cond.Signal()
}

// goid returns the ID of the calling goroutine, parsed from the stack
// header line "goroutine N [running]:". A zero return means the ID
// could not be determined and reacquisition goes undetected. The ID is
// used only for misuse diagnostics, never for synchronization.
func goid() int64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	i := bytes.IndexByte(b, ' ')
	if i <= 0 {
		return 0
	}
	id, err := strconv.ParseInt(string(b[:i]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// With runs fn while holding m. The lock is released on every exit
// path, including a panic in fn.
func With(m *Mutex, fn func()) {
	g := m.Lock()
	defer g.Unlock()
	fn()
}
