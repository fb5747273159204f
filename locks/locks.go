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
Package locks contains blocking mutual-exclusion and admission-control
primitives with strict misuse detection.

Unlike [sync.Mutex], the [Mutex] here hands out typed [Guard] values on
acquisition. A Guard releases the lock exactly once; releasing twice, or
releasing a mutex that is not held, is a contract violation and panics
rather than silently corrupting the exclusion invariant. This makes the
classic lock-leak and unlock-without-lock bugs immediately visible
instead of latent.

[Semaphore] is a counting permit gate. Its permit count is bounded by
the capacity it was constructed with: it can never go negative (Acquire
blocks at zero) and can never exceed the capacity (a surplus Release
panics). A semaphore with capacity K admits at most K concurrent
holders, which is the standard way to cap contention below the level at
which circular waits become possible.
*/
package locks
