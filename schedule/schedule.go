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
Package schedule orders access to potentially-overlapping sets of
resources.

A [Claim] names the resources it needs; a [Scheduler] runs each claim's
callback once every named resource is exclusively its own. Overlapping
claims execute in submission order, so a ring of agents that each need
two neighboring resources can never form a cyclic wait: both resources
of a claim are granted atomically by the admission queue, never one at
a time.

	sched := New[string](GoRunner(ctx))

	dine := func(ctx context.Context, forks []string) error { return nil }

	aliceOut, _ := sched.Submit(ClaimFunc([]string{"a", "b"}, dine))
	bobOut, _ := sched.Submit(ClaimFunc([]string{"b", "c"}, dine))

	err := Wait(ctx, []Outcome{aliceOut, bobOut})

Resources are identifiers, not software objects: the scheduler's queue
is the lock. [Queue] implements the underlying multi-key admission
logic and can be reused on its own.
*/
package schedule
