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
	"math/rand"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestNewSemaphore(t *testing.T) {
	r := require.New(t)

	_, err := NewSemaphore(-1)
	r.ErrorIs(err, ErrInvalidArg)

	s, err := NewSemaphore(3)
	r.NoError(err)
	r.Equal(3, s.Permits())
	r.Equal(3, s.Capacity())
}

func TestAcquireRelease(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()

	s, err := NewSemaphore(2)
	r.NoError(err)

	r.NoError(s.Acquire(ctx))
	r.NoError(s.Acquire(ctx))
	r.Equal(0, s.Permits())
	r.False(s.TryAcquire())

	s.Release()
	r.True(s.TryAcquire())

	s.Release()
	s.Release()
	r.Equal(2, s.Permits())
}

func TestAcquireCancel(t *testing.T) {
	r := require.New(t)

	s, err := NewSemaphore(1)
	r.NoError(err)
	r.True(s.TryAcquire())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	r.ErrorIs(s.Acquire(ctx), context.DeadlineExceeded)

	// The failed acquire must not have consumed a permit.
	s.Release()
	r.Equal(1, s.Permits())
}

func TestReleaseBeyondCapacityPanics(t *testing.T) {
	r := require.New(t)

	s, err := NewSemaphore(1)
	r.NoError(err)
	r.Panics(func() { s.Release() })

	// A zero-capacity semaphore has no permits to return.
	z, err := NewSemaphore(0)
	r.NoError(err)
	r.False(z.TryAcquire())
	r.Panics(func() { z.Release() })
}

// Stress the permit accounting from many goroutines with randomized
// hold times. The in-flight holder count must never exceed the
// capacity and the count must be fully restored afterwards.
func TestPermitBoundUnderContention(t *testing.T) {
	const workers = 50
	const perWorker = 200
	const capacity = 7
	r := require.New(t)
	ctx := context.Background()

	s, err := NewSemaphore(capacity)
	r.NoError(err)

	var holders atomic.Int32
	var violations atomic.Int32

	var eg errgroup.Group
	for i := 0; i < workers; i++ {
		rng := rand.New(rand.NewSource(int64(i)))
		eg.Go(func() error {
			for j := 0; j < perWorker; j++ {
				if rng.Intn(2) == 0 {
					if !s.TryAcquire() {
						continue
					}
				} else if err := s.Acquire(ctx); err != nil {
					return err
				}
				if holders.Add(1) > capacity {
					violations.Add(1)
				}
				runtime.Gosched()
				holders.Add(-1)
				s.Release()
			}
			return nil
		})
	}
	r.NoError(eg.Wait())
	r.Zero(violations.Load())
	r.Equal(capacity, s.Permits())
}

// With capacity 1 the semaphore degenerates to a binary lock; a guarded
// read-modify-write loop must not lose updates.
func TestBinarySemaphoreCounter(t *testing.T) {
	const workers = 16
	const perWorker = 2000
	r := require.New(t)
	ctx := context.Background()

	s, err := NewSemaphore(1)
	r.NoError(err)

	value := 0
	var eg errgroup.Group
	for i := 0; i < workers; i++ {
		eg.Go(func() error {
			for j := 0; j < perWorker; j++ {
				if err := s.Acquire(ctx); err != nil {
					return err
				}
				value++
				s.Release()
			}
			return nil
		})
	}
	r.NoError(eg.Wait())
	r.Equal(workers*perWorker, value)
}
