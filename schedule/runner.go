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

import "context"

// A Runner starts execution of admitted claims on behalf of a
// [Scheduler]; the scheduler itself never spawns goroutines.
//
// [github.com/fieldlabs/concurrency-powertools/workgroup.Group]
// satisfies this interface with a bounded pool.
type Runner interface {
	// Go must not block. A non-nil error means the claim could not
	// be started; the scheduler retires the claim with that error.
	Go(func(context.Context)) error
}

// RunnerFunc adapts a plain function to the [Runner] interface.
type RunnerFunc func(func(context.Context)) error

// Go implements [Runner].
func (f RunnerFunc) Go(fn func(context.Context)) error { return f(fn) }

// GoRunner returns a Runner that starts each claim on a fresh
// goroutine bound to ctx.
func GoRunner(ctx context.Context) Runner {
	return RunnerFunc(func(fn func(context.Context)) error {
		go fn(ctx)
		return nil
	})
}
