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

package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fieldlabs/concurrency-powertools/notify"
)

// ErrSubmitCancel will be returned from [context.Cause] if a claim's
// context was canceled via the function returned from
// [Scheduler.Submit].
var ErrSubmitCancel = fmt.Errorf("%w: Scheduler.Submit cancel()", context.Canceled)

// A ticket represents one submitted claim. The mu struct should only be
// accessed while holding its lock.
type ticket[K comparable] struct {
	resources []K                 // Desired resource set.
	result    notify.Var[*Status] // The outbox for the ticket.
	submitted time.Time           // The time at which Submit was called.

	mu struct {
		sync.Mutex
		cancel func()   // Non-nil while the claim is being served.
		claim  Claim[K] // Nil once served or withdrawn.
	}
}

// Scheduler serves claims in submission order, once each claim's
// resource set has been granted by the admission [Queue].
//
// A Scheduler is internally synchronized and is safe for concurrent
// use. A Scheduler should not be copied after it has been created.
type Scheduler[K comparable] struct {
	events *Events[K]            // Injectable callbacks.
	queue  *Queue[K, *ticket[K]] // Internally synchronized.
	runner Runner                // Serves admitted claims.
}

// New constructs a Scheduler that serves claims using the given
// [Runner]. If runner is nil, claims will be served using
// [context.Background].
func New[K comparable](runner Runner) *Scheduler[K] {
	if runner == nil {
		runner = GoRunner(context.Background())
	}
	return &Scheduler[K]{
		queue:  NewQueue[K, *ticket[K]](),
		runner: runner,
	}
}

// SetEvents allows monitoring callbacks to be injected into the
// Scheduler. This method should be called prior to any call to
// [Scheduler.Submit].
func (s *Scheduler[K]) SetEvents(events *Events[K]) {
	s.events = events
}

// Submit serves the [Claim] once all of its resources have been
// granted. The result of [Claim.Serve] is available through the
// returned [Outcome].
//
// A claim may return an empty resource slice; it will be served
// immediately.
//
// Claims must not submit new claims and proceed to wait upon them. That
// reintroduces the hold-and-wait cycle this scheduler exists to
// prevent.
//
// The cancel function may be called to asynchronously withdraw the
// claim. If the claim is already being served, its context is canceled
// instead.
func (s *Scheduler[K]) Submit(claim Claim[K]) (outcome Outcome, cancel func()) {
	w := &ticket[K]{
		resources: claim.Resources(),
		submitted: time.Now(),
	}
	w.mu.claim = claim
	w.result.Set(queued)
	admitted, err := s.queue.Enqueue(w.resources, w)
	if err != nil {
		w.result.Set(StatusFor(err))
		return &w.result, func() {}
	}
	s.events.doSubmit(claim, !admitted)
	if admitted {
		s.serve(w, false)
	}
	return &w.result, func() {
		// Swap in a placeholder claim so a completed ticket cannot be
		// revived; only act if the real claim is still pending.
		w.mu.Lock()
		needsServe := w.mu.claim != nil
		if needsServe {
			w.mu.claim = &withdrawnClaim[K]{}
		}
		if w.mu.cancel != nil {
			w.mu.cancel()
		}
		w.mu.Unlock()

		// Async cleanup.
		if needsServe {
			s.serve(w, true)
		}
	}
}

// serve hands the ticket to the runner. Completion dequeues the ticket,
// possibly admitting and serving successor tickets.
func (s *Scheduler[K]) serve(w *ticket[K], withdrawn bool) {
	work := func(ctx context.Context) {
		ctx, cancelCtx := context.WithCancelCause(ctx)
		defer cancelCtx(nil)

		// Clear the claim reference to make serving one-shot.
		w.mu.Lock()
		w.mu.cancel = func() { cancelCtx(ErrSubmitCancel) }
		claim := w.mu.claim
		w.mu.claim = nil
		w.mu.Unlock()

		// Already served and/or withdrawn.
		if claim == nil {
			return
		}

		var err error
		if withdrawn {
			err = ErrSubmitCancel
		} else {
			w.result.Set(executing)
			s.events.doStarted(claim, time.Since(w.submitted))
			err = tryServe(ctx, claim)
			w.mu.Lock()
			w.mu.cancel = nil
			w.mu.Unlock()
			s.events.doComplete(claim, time.Since(w.submitted))
		}
		w.result.Set(StatusFor(err))

		// Release the ticket's resources and kick off any claims that
		// its departure admitted.
		admitted, _ := s.queue.Dequeue(w)
		for _, next := range admitted {
			s.serve(next, false)
		}
	}

	if err := s.runner.Go(work); err != nil {
		w.result.Set(StatusFor(err))
	}
}

// Wait returns the first non-nil error.
func Wait(ctx context.Context, outcomes []Outcome) error {
outcome:
	for _, outcome := range outcomes {
		for {
			status, changed := outcome.Get()
			if status.Success() {
				continue outcome
			}
			if err := status.Err(); err != nil {
				return err
			}
			select {
			case <-changed:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

// tryServe invokes the claim with a panic handler.
func tryServe[K any](ctx context.Context, claim Claim[K]) (err error) {
	// Install the handler before executing user code.
	defer func() {
		x := recover()
		switch t := x.(type) {
		case nil:
		// Success.
		case error:
			err = t
		default:
			err = fmt.Errorf("panic in claim: %v", t)
		}
	}()

	return claim.Serve(ctx)
}
