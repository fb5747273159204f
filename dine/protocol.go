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

package dine

import (
	"context"
	"fmt"

	"github.com/fieldlabs/concurrency-powertools/locks"
	"github.com/fieldlabs/concurrency-powertools/schedule"
)

// A Protocol decides how a hungry philosopher acquires its two forks.
type Protocol interface {
	// Name identifies the protocol in logs.
	Name() string

	// begin prepares any per-run state. It is called once, from
	// [Simulation.Start].
	begin(ctx context.Context, s *Simulation) error

	// meal performs one full acquire-eat-release cycle for p.
	meal(ctx context.Context, s *Simulation, p *Philosopher) error
}

// dineAt takes the two forks in the given order, eats, and releases
// them in reverse order. The scoped guards release on every exit path.
func dineAt(ctx context.Context, s *Simulation, p *Philosopher, first, second int) error {
	g1 := s.table.Fork(first).Lock()
	defer g1.Unlock()
	s.events.doFork(p.seat, first, true)

	g2 := s.table.Fork(second).Lock()
	defer g2.Unlock()
	s.events.doFork(p.seat, second, false)

	return s.eat(ctx, p)
}

type naiveProtocol struct{}

// Naive returns the deadlock-prone textbook protocol: every seat takes
// its own-indexed fork first, then the right neighbor's. When all seats
// hold their first fork at once, each is waiting on the next around the
// ring and none can ever eat again.
//
// This protocol exists to demonstrate the failure; do not use it for
// anything that has to finish.
func Naive() Protocol { return naiveProtocol{} }

func (naiveProtocol) Name() string { return "naive" }

func (naiveProtocol) begin(context.Context, *Simulation) error { return nil }

func (naiveProtocol) meal(ctx context.Context, s *Simulation, p *Philosopher) error {
	return dineAt(ctx, s, p, s.table.leftFork(p.seat), s.table.rightFork(p.seat))
}

type lowerFirstProtocol struct{}

// LowerFirst returns the asymmetric-order protocol: every seat takes
// the lower-indexed of its two forks first. The seat whose right fork
// wraps to index 0 orders differently from its neighbors, which breaks
// the fully symmetric cycle.
//
// This is an instructive partial fix, not a general solution: rings
// where acquisition orders strictly alternate can still close a wait
// cycle. [Admission] is the strategy that is safe for every ring.
func LowerFirst() Protocol { return lowerFirstProtocol{} }

func (lowerFirstProtocol) Name() string { return "lower-first" }

func (lowerFirstProtocol) begin(context.Context, *Simulation) error { return nil }

func (lowerFirstProtocol) meal(ctx context.Context, s *Simulation, p *Philosopher) error {
	first, second := s.table.leftFork(p.seat), s.table.rightFork(p.seat)
	if second < first {
		first, second = second, first
	}
	return dineAt(ctx, s, p, first, second)
}

type admissionProtocol struct {
	capacity int
	sem      *locks.Semaphore
}

// Admission returns the bounded-admission protocol: a counting
// semaphore admits at most capacity seats into the acquisition phase.
// With capacity at most Seats-1, some admitted seat always has both
// neighbors outside the hungry set, so the circular-wait condition can
// never hold and every philosopher keeps eating.
//
// A capacity of 0 selects the default, Seats-1.
func Admission(capacity int) Protocol { return &admissionProtocol{capacity: capacity} }

func (a *admissionProtocol) Name() string { return "admission" }

func (a *admissionProtocol) begin(_ context.Context, s *Simulation) error {
	capacity := a.capacity
	if capacity == 0 {
		capacity = s.table.Seats() - 1
	}
	if capacity < 1 || capacity > s.table.Seats()-1 {
		return fmt.Errorf("dine: admission capacity %d must be in [1, %d]",
			capacity, s.table.Seats()-1)
	}
	sem, err := locks.NewSemaphore(capacity)
	if err != nil {
		return err
	}
	a.sem = sem
	return nil
}

func (a *admissionProtocol) meal(ctx context.Context, s *Simulation, p *Philosopher) error {
	if err := a.sem.Acquire(ctx); err != nil {
		return err
	}
	defer a.sem.Release()
	return dineAt(ctx, s, p, s.table.leftFork(p.seat), s.table.rightFork(p.seat))
}

type scheduledProtocol struct {
	sched *schedule.Scheduler[int]
}

// Scheduled returns the ordered-admission protocol: each meal is
// submitted as a two-fork claim to a [schedule.Scheduler], which grants
// overlapping claims in submission order and both forks of a claim
// atomically. No fork is ever held while waiting for another, so no
// wait cycle can form.
func Scheduled() Protocol { return &scheduledProtocol{} }

func (sp *scheduledProtocol) Name() string { return "scheduled" }

func (sp *scheduledProtocol) begin(ctx context.Context, _ *Simulation) error {
	sp.sched = schedule.New[int](schedule.GoRunner(ctx))
	return nil
}

func (sp *scheduledProtocol) meal(ctx context.Context, s *Simulation, p *Philosopher) error {
	forks := []int{s.table.leftFork(p.seat), s.table.rightFork(p.seat)}
	outcome, cancel := sp.sched.Submit(
		schedule.ClaimFunc(forks, func(ctx context.Context, _ []int) error {
			return s.eat(ctx, p)
		}))
	if err := schedule.Wait(ctx, []schedule.Outcome{outcome}); err != nil {
		cancel()
		return err
	}
	return nil
}
