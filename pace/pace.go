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

// Package pace provides injectable simulated-work delays, used to widen
// race windows in concurrency exercises without hard-coding sleeps.
// Harnesses accept a [Strategy] so that test suites can substitute
// [None] and run deterministically fast.
package pace

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"
)

// ErrInvalidArg is raised if an invalid argument is passed to a
// strategy constructor.
var ErrInvalidArg = errors.New("invalid argument")

// A Strategy produces the delay to insert at the next simulated-work
// point. Implementations must be safe for concurrent use.
type Strategy interface {
	// Pause returns the next delay. Zero means "do not pause".
	Pause() time.Duration
}

// Sleep pauses the caller for the strategy's next delay, returning
// early with the context's error if ctx is canceled first.
func Sleep(ctx context.Context, strategy Strategy) error {
	d := strategy.Pause()
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type noneStrategy struct{}

func (noneStrategy) Pause() time.Duration { return 0 }

// None returns a Strategy that never pauses. This is the strategy test
// suites should inject when they want wall-clock determinism.
func None() Strategy { return noneStrategy{} }

type fixedStrategy struct {
	delay time.Duration
}

func (f *fixedStrategy) Pause() time.Duration { return f.delay }

var _ Strategy = &fixedStrategy{}

// Fixed builds a strategy that always pauses for the given duration.
// Valid delays are within a microsecond and one minute.
func Fixed(delay time.Duration) (Strategy, error) {
	if delay < time.Microsecond || delay > time.Minute {
		return nil, ErrInvalidArg
	}
	return &fixedStrategy{delay: delay}, nil
}

type jitterStrategy struct {
	mu  sync.Mutex
	max time.Duration
	rng *rand.Rand
}

func (j *jitterStrategy) Pause() time.Duration {
	j.mu.Lock()
	defer j.mu.Unlock()
	return time.Duration(j.rng.Int63n(int64(j.max) + 1))
}

var _ Strategy = &jitterStrategy{}

// UniformJitter builds a strategy that pauses for a uniformly random
// duration in [0, max]. The seed makes a run reproducible. Valid max
// values are within a microsecond and one minute.
func UniformJitter(max time.Duration, seed int64) (Strategy, error) {
	if max < time.Microsecond || max > time.Minute {
		return nil, ErrInvalidArg
	}
	return &jitterStrategy{
		max: max,
		rng: rand.New(rand.NewSource(seed)),
	}, nil
}
