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

package notify

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestZeroValue(t *testing.T) {
	r := require.New(t)

	var v Var[int]
	value, changed := v.Get()
	r.Zero(value)
	r.NotNil(changed)
}

func TestSetWakesWaiter(t *testing.T) {
	r := require.New(t)

	v := VarOf("initial")
	value, changed := v.Get()
	r.Equal("initial", value)

	var eg errgroup.Group
	eg.Go(func() error {
		<-changed
		return nil
	})
	v.Set("updated")
	r.NoError(eg.Wait())
	r.Equal("updated", v.Peek())
}

func TestUpdate(t *testing.T) {
	r := require.New(t)

	v := VarOf(0)

	// Concurrent increments through Update must not lose any.
	const workers = 32
	const perWorker = 1000
	var eg errgroup.Group
	for i := 0; i < workers; i++ {
		eg.Go(func() error {
			for j := 0; j < perWorker; j++ {
				v.Update(func(old int) int { return old + 1 })
			}
			return nil
		})
	}
	r.NoError(eg.Wait())
	r.Equal(workers*perWorker, v.Peek())
}

func TestGetReusesChannelUntilSet(t *testing.T) {
	r := require.New(t)

	v := VarOf(1)
	_, ch1 := v.Get()
	_, ch2 := v.Get()
	r.Equal(ch1, ch2)

	v.Set(2)
	_, ch3 := v.Get()
	r.NotEqual(ch1, ch3)
}
