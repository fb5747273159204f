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

package schedule

import "time"

// Events provides a [Scheduler] with optional callbacks to monitor the
// flow of submitted claims.
//
// See [Scheduler.SetEvents].
type Events[K any] struct {
	OnComplete func(claim Claim[K], sinceSubmit time.Duration)
	OnStarted  func(claim Claim[K], sinceSubmit time.Duration)
	OnSubmit   func(claim Claim[K], deferred bool)
}

func (e *Events[K]) doComplete(claim Claim[K], sinceSubmit time.Duration) {
	if e != nil && e.OnComplete != nil {
		e.OnComplete(claim, sinceSubmit)
	}
}

func (e *Events[K]) doStarted(claim Claim[K], sinceSubmit time.Duration) {
	if e != nil && e.OnStarted != nil {
		e.OnStarted(claim, sinceSubmit)
	}
}

func (e *Events[K]) doSubmit(claim Claim[K], deferred bool) {
	if e != nil && e.OnSubmit != nil {
		e.OnSubmit(claim, deferred)
	}
}
