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

// Package counter contains a mutex-guarded shared counter and a worker
// harness that exercises it under contention.
//
// The counter deliberately performs a separated read-pause-write cycle
// inside its critical section. Without the lock held across that whole
// span, concurrent increments interleave and lose updates; with it, the
// final value is exactly the number of increments performed, under any
// scheduling.
package counter

import (
	"context"
	"fmt"
	"sync"

	"github.com/fieldlabs/concurrency-powertools/locks"
	"github.com/fieldlabs/concurrency-powertools/pace"
	"github.com/fieldlabs/concurrency-powertools/workgroup"
)

// Events provides a [Shared] counter with optional callbacks that
// observe its critical section. Both callbacks run while the counter's
// mutex is held.
type Events struct {
	OnEnter func(value int64) // After acquisition, before the read.
	OnExit  func(value int64) // After the write, before release.
}

func (e *Events) doEnter(value int64) {
	if e != nil && e.OnEnter != nil {
		e.OnEnter(value)
	}
}

func (e *Events) doExit(value int64) {
	if e != nil && e.OnExit != nil {
		e.OnExit(value)
	}
}

// Shared is an integer counter guarded by a [locks.Mutex]. The value
// changes only while the mutex is held.
//
// A Shared is safe for concurrent use.
type Shared struct {
	events *Events
	mu     *locks.Mutex
	pacer  pace.Strategy
	value  int64 // Guarded by mu.
}

// NewShared constructs a counter starting at zero. The pacer widens the
// window between the read and the write of each increment; pass
// [pace.None] for no simulated work.
func NewShared(pacer pace.Strategy) *Shared {
	if pacer == nil {
		pacer = pace.None()
	}
	return &Shared{
		mu:    locks.NewMutex(),
		pacer: pacer,
	}
}

// SetEvents allows instrumentation callbacks to be injected. This
// method should be called before the counter is shared with workers.
func (c *Shared) SetEvents(events *Events) {
	c.events = events
}

// Increment adds one to the counter. The read, the simulated-work
// pause, and the write all happen under the counter's mutex. A context
// cancellation cuts the pause short; the increment itself always
// completes.
func (c *Shared) Increment(ctx context.Context) {
	g := c.mu.Lock()
	defer g.Unlock()

	c.events.doEnter(c.value)
	current := c.value
	_ = pace.Sleep(ctx, c.pacer)
	c.value = current + 1
	c.events.doExit(c.value)
}

// Value returns the current count.
func (c *Shared) Value() int64 {
	g := c.mu.Lock()
	defer g.Unlock()
	return c.value
}

// Exercise runs workers concurrent workers through the pool, each
// performing perWorker increments, and joins them all. When it returns
// nil, the counter has grown by exactly workers*perWorker.
//
// A pool rejection is returned as a recoverable error; workers that
// were already spawned are still joined before returning.
func (c *Shared) Exercise(ctx context.Context, g *workgroup.Group, workers, perWorker int) error {
	if workers < 1 || perWorker < 1 {
		return fmt.Errorf("counter: invalid workers %d / increments %d", workers, perWorker)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		err := g.Go(func(ctx context.Context) {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				c.Increment(ctx)
			}
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return fmt.Errorf("spawning worker %d: %w", i, err)
		}
	}
	wg.Wait()
	return nil
}
