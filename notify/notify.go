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

// Package notify contains a utility for waiting on updates to a
// variable.
package notify

import "sync"

// A Var is a variable whose updates can be waited upon. The zero value
// of a Var holds the zero value of T. A Var must not be copied after
// first use.
type Var[T any] struct {
	mu struct {
		sync.Mutex
		value   T
		changed chan struct{} // Closed and replaced on each Set.
	}
}

// VarOf constructs a Var with an initial value.
func VarOf[T any](value T) *Var[T] {
	v := &Var[T]{}
	v.mu.value = value
	return v
}

// Get returns the current value and a channel that is closed the next
// time the value is updated.
func (v *Var[T]) Get() (T, <-chan struct{}) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mu.changed == nil {
		v.mu.changed = make(chan struct{})
	}
	return v.mu.value, v.mu.changed
}

// Peek returns the current value without arming a change notification.
func (v *Var[T]) Peek() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mu.value
}

// Set updates the value and wakes any callers blocked on a channel
// previously returned from [Var.Get].
func (v *Var[T]) Set(value T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mu.value = value
	if v.mu.changed != nil {
		close(v.mu.changed)
		v.mu.changed = nil
	}
}

// Update applies fn to the current value while holding an exclusive
// lock and stores the result, waking waiters. It returns the new value.
func (v *Var[T]) Update(fn func(old T) T) T {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mu.value = fn(v.mu.value)
	if v.mu.changed != nil {
		close(v.mu.changed)
		v.mu.changed = nil
	}
	return v.mu.value
}
