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

// A Claim is provided to [Scheduler.Submit].
type Claim[K any] interface {
	// Serve contains the logic associated with the claim. It runs only
	// while every claimed resource belongs to this claim.
	Serve(ctx context.Context) error
	// Resources returns the set of resources the claim depends upon.
	Resources() []K
}

// ClaimFunc returns a [Claim] on the given resources whose Serve
// invokes the callback.
func ClaimFunc[K comparable](resources []K, fn func(ctx context.Context, resources []K) error) Claim[K] {
	return &claimFunc[K]{fn, dedup(resources)}
}

type claimFunc[K any] struct {
	fn        func(ctx context.Context, resources []K) error
	resources []K
}

func (c *claimFunc[K]) Serve(ctx context.Context) error { return c.fn(ctx, c.resources) }
func (c *claimFunc[K]) Resources() []K                  { return c.resources }

// withdrawnClaim replaces a claim that is canceled before it runs.
type withdrawnClaim[K any] struct{}

func (c *withdrawnClaim[K]) Serve(context.Context) error { return ErrSubmitCancel }
func (c *withdrawnClaim[K]) Resources() []K              { return nil }
