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

import "time"

// Events provides a [Simulation] with optional callbacks to observe
// philosopher activity.
//
// OnFork fires from inside the acquisition path, after a fork's mutex
// has been taken; blocking there holds the fork, which is exactly what
// a harness needs to force a particular interleaving. [Scheduled]
// grants both forks atomically and never fires OnFork.
//
// See [Simulation.SetEvents].
type Events struct {
	OnFork  func(seat, fork int, first bool)
	OnMeal  func(seat int, took time.Duration)
	OnState func(seat int, state State)
}

func (e *Events) doFork(seat, fork int, first bool) {
	if e != nil && e.OnFork != nil {
		e.OnFork(seat, fork, first)
	}
}

func (e *Events) doMeal(seat int, took time.Duration) {
	if e != nil && e.OnMeal != nil {
		e.OnMeal(seat, took)
	}
}

func (e *Events) doState(seat int, state State) {
	if e != nil && e.OnState != nil {
		e.OnState(seat, state)
	}
}
