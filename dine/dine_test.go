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
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fieldlabs/concurrency-powertools/pace"
)

func TestNewTable(t *testing.T) {
	r := require.New(t)

	_, err := NewTable(1)
	r.Error(err)

	table, err := NewTable(5)
	r.NoError(err)
	r.Equal(5, table.Seats())
	r.Equal(0, table.leftFork(0))
	r.Equal(1, table.rightFork(0))
	r.Equal(0, table.rightFork(4))
}

func TestConfigValidation(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()

	_, err := New(Config{Seats: 1})
	r.Error(err)

	_, err = New(Config{MealsPerSeat: -1})
	r.Error(err)

	// The admission gate must stay below the seat count.
	s, err := New(Config{Seats: 5, Protocol: Admission(5)})
	r.NoError(err)
	_, err = s.Start(ctx)
	r.ErrorContains(err, "admission capacity")

	s, err = New(Config{Seats: 5, MealsPerSeat: 1})
	r.NoError(err)
	r.NoError(s.Run(ctx))
	_, err = s.Start(ctx)
	r.ErrorContains(err, "already started")
}

// The bounded-admission protocol must complete a large meal budget
// without the watchdog firing. Five seats, gate capacity four, a
// thousand meals in total.
func TestAdmissionLiveness(t *testing.T) {
	const seats = 5
	const mealsPerSeat = 200
	r := require.New(t)

	// Generous watchdog: this only fires if liveness is lost.
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pacer, err := pace.UniformJitter(50*time.Microsecond, 1)
	r.NoError(err)

	s, err := New(Config{
		Seats:        seats,
		MealsPerSeat: mealsPerSeat,
		Protocol:     Admission(seats - 1),
		Pacer:        pacer,
	})
	r.NoError(err)

	run, err := s.Start(ctx)
	r.NoError(err)
	r.NoError(s.WaitMeals(ctx, seats*mealsPerSeat))
	r.NoError(run.Wait())

	r.Equal(int64(seats*mealsPerSeat), s.Progress().Peek())
	for _, p := range s.Philosophers() {
		r.Equal(int64(mealsPerSeat), p.Meals())
		state, _ := p.Lifecycle().Get()
		r.Equal(Done, state)
	}
	for i := 0; i < seats; i++ {
		r.False(s.Table().Fork(i).Held(), "fork %d left held", i)
	}
}

// The naive protocol deadlocks. The test forces the fatal interleaving
// instead of hoping for it: an OnFork barrier parks every seat while it
// holds its first fork, so when the barrier opens, all five reach for a
// second fork that a neighbor already holds. The watchdog observing
// zero progress is the expected outcome.
//
// The five philosopher goroutines stay blocked forever; they are
// deliberately abandoned when the test ends.
func TestNaiveDeadlock(t *testing.T) {
	const seats = 5
	r := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := New(Config{
		Seats:    seats,
		Protocol: Naive(),
	})
	r.NoError(err)

	barrier := make(chan struct{})
	var arrived atomic.Int32
	s.SetEvents(&Events{
		OnFork: func(seat, fork int, first bool) {
			if !first {
				return
			}
			if arrived.Add(1) == seats {
				close(barrier)
			}
			<-barrier
		},
	})

	_, err = s.Start(ctx)
	r.NoError(err)

	// Watchdog: no meal can ever complete.
	watchdog, stop := context.WithTimeout(ctx, 5*time.Second)
	defer stop()
	r.ErrorIs(s.WaitMeals(watchdog, 1), context.DeadlineExceeded)
	r.Zero(s.Progress().Peek())

	// Every seat is stuck hungry with its first fork held.
	for _, p := range s.Philosophers() {
		state, _ := p.Lifecycle().Get()
		r.Equal(Hungry, state)
	}
	for i := 0; i < seats; i++ {
		r.True(s.Table().Fork(i).Held(), "fork %d should be held", i)
	}
}

// Asymmetric acquisition order breaks the symmetric cycle on this
// odd-sized ring. This documents the partial fix only; it is not a
// general guarantee for every ring shape.
func TestLowerFirstProgress(t *testing.T) {
	const seats = 5
	const mealsPerSeat = 100
	r := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	s, err := New(Config{
		Seats:        seats,
		MealsPerSeat: mealsPerSeat,
		Protocol:     LowerFirst(),
	})
	r.NoError(err)
	r.NoError(s.Run(ctx))
	r.Equal(int64(seats*mealsPerSeat), s.Progress().Peek())
}

// The ordered-admission variant grants both forks atomically.
func TestScheduledProgress(t *testing.T) {
	const seats = 5
	const mealsPerSeat = 100
	r := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	s, err := New(Config{
		Seats:        seats,
		MealsPerSeat: mealsPerSeat,
		Protocol:     Scheduled(),
	})
	r.NoError(err)
	r.NoError(s.Run(ctx))
	r.Equal(int64(seats*mealsPerSeat), s.Progress().Peek())
	for _, p := range s.Philosophers() {
		r.Equal(int64(mealsPerSeat), p.Meals())
	}
}

// Every observed transition must follow the lifecycle:
// thinking -> hungry -> eating -> thinking, ending in done.
func TestLifecycleTransitions(t *testing.T) {
	const seats = 3
	const mealsPerSeat = 25
	r := require.New(t)
	ctx := context.Background()

	valid := map[State][]State{
		Thinking: {Hungry, Done},
		Hungry:   {Eating},
		Eating:   {Thinking},
		Done:     {},
	}

	var mu sync.Mutex
	histories := make([][]State, seats)

	s, err := New(Config{
		Seats:        seats,
		MealsPerSeat: mealsPerSeat,
	})
	r.NoError(err)
	s.SetEvents(&Events{
		OnState: func(seat int, state State) {
			mu.Lock()
			defer mu.Unlock()
			histories[seat] = append(histories[seat], state)
		},
	})

	r.NoError(s.Run(ctx))

	for seat, history := range histories {
		r.NotEmpty(history)
		r.Equal(Done, history[len(history)-1], "seat %d", seat)

		previous := Thinking // Initial state.
		for i, state := range history {
			r.Containsf(valid[previous], state,
				"seat %d transition %d: %s -> %s", seat, i, previous, state)
			previous = state
		}

		// One eating span per meal.
		eats := 0
		for _, state := range history {
			if state == Eating {
				eats++
			}
		}
		r.Equal(mealsPerSeat, eats, "seat %d", seat)
	}
}

// Cancellation must unwind a paced, unbounded run: every seat is parked
// either in a pause or at the admission gate, and all of them return
// once the context ends.
func TestCancelUnwindsRun(t *testing.T) {
	const seats = 5
	r := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())

	pacer, err := pace.Fixed(time.Minute)
	r.NoError(err)

	s, err := New(Config{
		Seats:    seats,
		Protocol: Admission(1),
		Pacer:    pacer,
	})
	r.NoError(err)

	run, err := s.Start(ctx)
	r.NoError(err)

	time.Sleep(50 * time.Millisecond)
	cancel()
	r.ErrorIs(run.Wait(), context.Canceled)
}
