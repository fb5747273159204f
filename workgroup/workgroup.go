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

// Package workgroup contains a goroutine pool with a bounded task
// queue. Submitting work beyond the pool's capacity is a recoverable
// error rather than an unbounded pile-up or a fatal condition.
package workgroup

import (
	"context"
	"fmt"
	"sync"
)

// A Group executes submitted functions using at most a fixed number of
// concurrently-running goroutines. Workers are started on demand and
// exit when they run out of queued work, so an idle Group holds no
// goroutines.
//
// A Group is internally synchronized and is safe for concurrent use.
type Group struct {
	ctx   context.Context
	depth int
	wg    sync.WaitGroup

	mu struct {
		sync.Mutex
		queue   chan func(context.Context)
		workers int
		size    int
	}
}

// WithSize constructs a Group that runs at most size tasks
// concurrently. Up to queueDepth additional tasks may be pending;
// beyond that, [Group.Go] rejects the submission.
//
// The context is passed to every task. Canceling it does not interrupt
// a running task, but tasks are expected to honor it.
func WithSize(ctx context.Context, size, queueDepth int) (*Group, error) {
	if size < 1 || queueDepth < 0 {
		return nil, fmt.Errorf("workgroup: invalid size %d / queue depth %d", size, queueDepth)
	}
	g := &Group{ctx: ctx, depth: queueDepth}
	g.mu.queue = make(chan func(context.Context), queueDepth)
	g.mu.size = size
	return g, nil
}

// Go submits fn for execution. It never blocks: if a worker slot is
// free the task starts immediately, otherwise it is queued. Go returns
// an error if the queue is full.
func (g *Group) Go(fn func(context.Context)) error {
	g.mu.Lock()
	if g.mu.workers < g.mu.size {
		g.mu.workers++
		g.wg.Add(1)
		g.mu.Unlock()
		go g.work(fn)
		return nil
	}
	select {
	case g.mu.queue <- fn:
		g.wg.Add(1)
		g.mu.Unlock()
		return nil
	default:
		g.mu.Unlock()
		return fmt.Errorf("workgroup: queue depth %d exceeded", g.depth)
	}
}

// Wait blocks until every successfully-submitted task has finished.
// Tasks may continue to be submitted while Wait is blocked.
func (g *Group) Wait() {
	g.wg.Wait()
}

// Len reports the number of currently-running workers. It is inherently
// racy and intended for diagnostics.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mu.workers
}

// work runs fn and then drains queued tasks until none remain. The
// queue re-check and the worker-count decrement happen under the same
// lock that [Group.Go] uses, so a queued task can never be stranded
// without a worker.
func (g *Group) work(fn func(context.Context)) {
	for {
		fn(g.ctx)

		// The count for the completed task is released only after the
		// bookkeeping settles, so Wait implies quiescent accounting.
		g.mu.Lock()
		select {
		case next := <-g.mu.queue:
			g.mu.Unlock()
			g.wg.Done()
			fn = next
		default:
			g.mu.workers--
			g.mu.Unlock()
			g.wg.Done()
			return
		}
	}
}
