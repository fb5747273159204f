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

/*
Package dine simulates ring-shaped resource contention: N philosophers
share N forks, fork i sitting between seats i and (i+1)%N, and a seat
needs both adjacent forks to eat.

The acquisition strategy is pluggable. [Naive] reproduces the classic
deadlock: every seat grabs its own fork first and the ring can close
into a circular wait. [LowerFirst] breaks the symmetry by acquisition
order and [Admission] bounds the number of concurrently-hungry seats
below N, which guarantees progress; [Scheduled] grants both forks
atomically through an in-order admission queue. Admission is the
default: it is the only strategy here that is deadlock-free for every
ring size.

Deadlock is a liveness failure, not an error: no operation in this
package detects it internally. Harnesses watch [Simulation.Progress]
under a deadline instead.
*/
package dine

import (
	"fmt"
	"sync/atomic"

	"github.com/fieldlabs/concurrency-powertools/locks"
	"github.com/fieldlabs/concurrency-powertools/notify"
)

// State is a philosopher's lifecycle state.
type State int8

// A philosopher cycles Thinking, Hungry, Eating; bounded runs end in
// Done.
const (
	Thinking State = iota
	Hungry
	Eating
	Done
)

func (s State) String() string {
	switch s {
	case Thinking:
		return "thinking"
	case Hungry:
		return "hungry"
	case Eating:
		return "eating"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int8(s))
	}
}

// A Table is a ring of mutex-guarded forks. Fork i is shared by seats i
// and (i+1)%Seats; each fork is held by at most one philosopher at a
// time.
type Table struct {
	forks []*locks.Mutex
}

// NewTable constructs a table with the given number of seats. A ring
// needs at least two.
func NewTable(seats int) (*Table, error) {
	if seats < 2 {
		return nil, fmt.Errorf("dine: a table needs at least 2 seats, got %d", seats)
	}
	t := &Table{forks: make([]*locks.Mutex, seats)}
	for i := range t.forks {
		t.forks[i] = locks.NewMutex()
	}
	return t, nil
}

// Seats returns the number of seats (and forks).
func (t *Table) Seats() int { return len(t.forks) }

// Fork returns the mutex guarding fork i.
func (t *Table) Fork(i int) *locks.Mutex { return t.forks[i] }

// leftFork and rightFork name the two forks adjacent to a seat.
func (t *Table) leftFork(seat int) int  { return seat }
func (t *Table) rightFork(seat int) int { return (seat + 1) % len(t.forks) }

// A Philosopher occupies one seat and cycles through its lifecycle
// until its meal budget is spent or its context ends.
type Philosopher struct {
	seat  int
	meals atomic.Int64
	state *notify.Var[State]
}

func newPhilosopher(seat int) *Philosopher {
	return &Philosopher{
		seat:  seat,
		state: notify.VarOf(Thinking),
	}
}

// Seat returns the philosopher's position, 0..Seats-1.
func (p *Philosopher) Seat() int { return p.seat }

// Meals returns the number of completed meals.
func (p *Philosopher) Meals() int64 { return p.meals.Load() }

// Lifecycle returns the philosopher's watchable state.
func (p *Philosopher) Lifecycle() *notify.Var[State] { return p.state }
