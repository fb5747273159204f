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

import (
	"fmt"
	"sync"
)

// node tracks one enqueued value and its position in the per-resource
// queues.
type node[K, V any] struct {
	granted   int // Number of resource queues where this node is first.
	resources []K
	val       V
}

// A Queue is an in-order admission queue for values associated with
// sets of potentially-overlapping resources. A value is admitted when
// it reaches the front of every resource queue it belongs to; because
// values join all of their queues at once, two values that share any
// resource are admitted in their enqueue order and a circular wait
// cannot form.
//
// A Queue is internally synchronized and is safe for concurrent use. A
// Queue should not be copied after it has been created.
type Queue[K, V comparable] struct {
	mu struct {
		sync.RWMutex
		byValue    map[V]*node[K, V]
		byResource map[K][]*node[K, V]
	}
}

// NewQueue constructs a [Queue].
func NewQueue[K, V comparable]() *Queue[K, V] {
	q := &Queue[K, V]{}
	q.mu.byValue = make(map[V]*node[K, V])
	q.mu.byResource = make(map[K][]*node[K, V])
	return q
}

// Enqueue adds the value to the queue of every named resource. The
// returned bool is true if the value is already at the front of all of
// them and may run immediately. It is an error to enqueue a value that
// is already present.
func (q *Queue[K, V]) Enqueue(resources []K, val V) (admitted bool, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, dup := q.mu.byValue[val]; dup {
		return false, fmt.Errorf("the value %v is already enqueued", val)
	}

	n := &node[K, V]{
		resources: dedup(resources),
		val:       val,
	}
	q.mu.byValue[val] = n

	for _, k := range n.resources {
		waiting := append(q.mu.byResource[k], n)
		q.mu.byResource[k] = waiting
		if len(waiting) == 1 {
			n.granted++
		}
	}

	// Trivially satisfied by an empty resource set.
	return n.granted == len(n.resources), nil
}

// Dequeue removes the value and returns any values that became
// admissible because of its departure. The bool is false if the value
// was not present; the caller decides whether that is a misuse.
func (q *Queue[K, V]) Dequeue(val V) ([]V, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n, ok := q.mu.byValue[val]
	if !ok {
		return nil, false
	}
	delete(q.mu.byValue, val)

	var admitted []V
	for _, k := range n.resources {
		waiting := q.mu.byResource[k]

		// The departing node is first in line except when it is being
		// withdrawn before ever running.
		var idx int
		for idx = range waiting {
			if waiting[idx] == n {
				break
			}
		}
		if idx == len(waiting) {
			panic(fmt.Sprintf("node missing from resource queue %v", k))
		}

		if idx > 0 {
			// Withdrawn from the middle; nobody is promoted.
			q.mu.byResource[k] = append(waiting[:idx], waiting[idx+1:]...)
			continue
		}

		waiting = waiting[1:]
		if len(waiting) == 0 {
			delete(q.mu.byResource, k)
			continue
		}
		q.mu.byResource[k] = waiting

		// Promote the new front of this resource queue. Once a node is
		// first everywhere, it is admissible.
		front := waiting[0]
		front.granted++
		if front.granted == len(front.resources) {
			admitted = append(admitted, front.val)
		} else if front.granted > len(front.resources) {
			panic("admission grant over-counted")
		}
	}

	return admitted, true
}

// IsEmpty returns true if there are no values in the queue.
func (q *Queue[K, V]) IsEmpty() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.mu.byValue) == 0
}

// IsQueuedResource returns true if some value in the queue names the
// resource.
func (q *Queue[K, V]) IsQueuedResource(key K) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.mu.byResource[key]) > 0
}

// IsQueuedValue returns true if the value is present in the queue.
func (q *Queue[K, V]) IsQueuedValue(val V) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	_, ok := q.mu.byValue[val]
	return ok
}

// Make a copy of the resource slice and deduplicate it.
func dedup[K comparable](resources []K) []K {
	resources = append([]K(nil), resources...)
	seen := make(map[K]struct{}, len(resources))
	idx := 0
	for _, key := range resources {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		resources[idx] = key
		idx++
	}
	return resources[:idx]
}
