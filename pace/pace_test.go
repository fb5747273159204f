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

package pace

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNone(t *testing.T) {
	r := require.New(t)

	r.Zero(None().Pause())
	r.NoError(Sleep(context.Background(), None()))
}

func TestFixed(t *testing.T) {
	r := require.New(t)

	_, err := Fixed(0)
	r.ErrorIs(err, ErrInvalidArg)
	_, err = Fixed(2 * time.Minute)
	r.ErrorIs(err, ErrInvalidArg)

	s, err := Fixed(time.Millisecond)
	r.NoError(err)
	r.Equal(time.Millisecond, s.Pause())
	r.Equal(time.Millisecond, s.Pause())
}

func TestUniformJitter(t *testing.T) {
	r := require.New(t)

	_, err := UniformJitter(0, 1)
	r.ErrorIs(err, ErrInvalidArg)

	const max = 250 * time.Microsecond
	s, err := UniformJitter(max, 42)
	r.NoError(err)
	for i := 0; i < 1000; i++ {
		d := s.Pause()
		r.GreaterOrEqual(d, time.Duration(0))
		r.LessOrEqual(d, max)
	}

	// Same seed, same sequence.
	a, err := UniformJitter(max, 7)
	r.NoError(err)
	b, err := UniformJitter(max, 7)
	r.NoError(err)
	for i := 0; i < 100; i++ {
		r.Equal(a.Pause(), b.Pause())
	}
}

func TestSleepCancel(t *testing.T) {
	r := require.New(t)

	s, err := Fixed(time.Minute)
	r.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.ErrorIs(Sleep(ctx, s), context.Canceled)
}
