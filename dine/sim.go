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
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fieldlabs/concurrency-powertools/notify"
	"github.com/fieldlabs/concurrency-powertools/pace"
)

// Config assembles a [Simulation].
type Config struct {
	// Seats is the number of philosophers and forks. Defaults to 5.
	Seats int

	// MealsPerSeat bounds the run: each philosopher ends in the Done
	// state after this many meals. Zero runs until the context ends.
	MealsPerSeat int

	// Protocol selects the fork-acquisition strategy. Defaults to
	// Admission(0), the deadlock-free bounded-admission gate.
	Protocol Protocol

	// Pacer inserts simulated thinking and eating time. Defaults to
	// pace.None.
	Pacer pace.Strategy

	// Logger narrates state transitions at debug level. Defaults to a
	// no-op logger. The narration is illustrative; nothing should be
	// asserted on it.
	Logger *zap.Logger
}

// A Simulation owns one table and its philosophers. All of its mutable
// state is created by [New] and torn down when the run's workers have
// been joined; none of it is global, so independent simulations can run
// in one process.
type Simulation struct {
	cfg      Config
	events   *Events
	logger   *zap.Logger
	pacer    pace.Strategy
	phils    []*Philosopher
	progress *notify.Var[int64]
	protocol Protocol
	started  atomic.Bool
	table    *Table
}

// New constructs a Simulation. Zero-valued Config fields are filled
// with the documented defaults.
func New(cfg Config) (*Simulation, error) {
	if cfg.Seats == 0 {
		cfg.Seats = 5
	}
	if cfg.MealsPerSeat < 0 {
		return nil, fmt.Errorf("dine: negative meal budget %d", cfg.MealsPerSeat)
	}
	table, err := NewTable(cfg.Seats)
	if err != nil {
		return nil, err
	}
	if cfg.Protocol == nil {
		cfg.Protocol = Admission(0)
	}
	if cfg.Pacer == nil {
		cfg.Pacer = pace.None()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	s := &Simulation{
		cfg:      cfg,
		logger:   cfg.Logger.Named(cfg.Protocol.Name()),
		pacer:    cfg.Pacer,
		phils:    make([]*Philosopher, cfg.Seats),
		progress: notify.VarOf(int64(0)),
		protocol: cfg.Protocol,
		table:    table,
	}
	for i := range s.phils {
		s.phils[i] = newPhilosopher(i)
	}
	return s, nil
}

// SetEvents allows observation callbacks to be injected. This method
// should be called before [Simulation.Start].
func (s *Simulation) SetEvents(events *Events) {
	s.events = events
}

// Table returns the simulation's fork ring.
func (s *Simulation) Table() *Table { return s.table }

// Philosophers returns the seated philosophers in seat order.
func (s *Simulation) Philosophers() []*Philosopher { return s.phils }

// Progress returns the watchable count of meals completed across all
// seats. Liveness harnesses watch it under a deadline: a naive-protocol
// deadlock shows up as progress that stops advancing.
func (s *Simulation) Progress() *notify.Var[int64] { return s.progress }

// A Run is a started simulation.
type Run struct {
	eg *errgroup.Group
}

// Wait blocks until every philosopher has finished and returns the
// first error. Philosophers blocked inside a deadlocked acquisition
// never finish; callers that cannot rule deadlock out should watch
// [Simulation.Progress] instead of waiting unconditionally.
func (r *Run) Wait() error {
	return r.eg.Wait()
}

// Start spawns one worker per philosopher and returns the running
// simulation. A Simulation runs at most once.
func (s *Simulation) Start(ctx context.Context) (*Run, error) {
	if !s.started.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("dine: simulation already started")
	}
	if err := s.protocol.begin(ctx, s); err != nil {
		return nil, err
	}
	s.logger.Debug("starting",
		zap.Int("seats", s.table.Seats()),
		zap.Int("meals_per_seat", s.cfg.MealsPerSeat))

	eg, ctx := errgroup.WithContext(ctx)
	for _, p := range s.phils {
		p := p // Capture
		eg.Go(func() error {
			return s.live(ctx, p)
		})
	}
	return &Run{eg: eg}, nil
}

// Run starts the simulation and waits for it. See [Run.Wait] for the
// deadlock caveat.
func (s *Simulation) Run(ctx context.Context) error {
	run, err := s.Start(ctx)
	if err != nil {
		return err
	}
	return run.Wait()
}

// WaitMeals blocks until at least total meals have completed across all
// seats, or ctx ends.
func (s *Simulation) WaitMeals(ctx context.Context, total int64) error {
	for {
		count, changed := s.progress.Get()
		if count >= total {
			return nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// live is one philosopher's lifecycle loop.
func (s *Simulation) live(ctx context.Context, p *Philosopher) error {
	for cycle := 0; ; cycle++ {
		if s.cfg.MealsPerSeat > 0 && cycle == s.cfg.MealsPerSeat {
			s.setState(p, Done)
			return nil
		}
		// Thinking.
		if err := pace.Sleep(ctx, s.pacer); err != nil {
			return err
		}
		s.setState(p, Hungry)

		start := time.Now()
		if err := s.protocol.meal(ctx, s, p); err != nil {
			return err
		}
		p.meals.Add(1)
		s.progress.Update(func(old int64) int64 { return old + 1 })
		s.events.doMeal(p.seat, time.Since(start))
		s.setState(p, Thinking)
	}
}

// eat runs the eating span. Protocols call it while the seat owns both
// forks.
func (s *Simulation) eat(ctx context.Context, p *Philosopher) error {
	s.setState(p, Eating)
	return pace.Sleep(ctx, s.pacer)
}

func (s *Simulation) setState(p *Philosopher, state State) {
	p.state.Set(state)
	s.events.doState(p.seat, state)
	s.logger.Debug("state",
		zap.Int("seat", p.seat),
		zap.Stringer("state", state))
}
