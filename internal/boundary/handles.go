/*
 * Copyright 2024 The tsingest Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package boundary

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tsingest/tsingest-go"
)

// Handles are never reused within a process, so a stale handle is reported
// instead of reaching a newer object.
var lastHandle atomic.Uintptr

// handleError reports a null, freed or foreign handle.
type handleError struct {
	kind   string
	handle uintptr
}

func (e *handleError) Error() string {
	if e.handle == 0 {
		return fmt.Sprintf("null %s handle", e.kind)
	}
	return fmt.Sprintf("unknown %s handle %#x", e.kind, e.handle)
}

func (e *handleError) Code() tsingest.Code {
	return tsingest.CodeInvalidPointer
}

// registry maps opaque handles to live objects of one kind.
type registry[T any] struct {
	kind string

	mu    sync.Mutex
	items map[uintptr]T
}

func newRegistry[T any](kind string) *registry[T] {
	return &registry[T]{kind: kind, items: make(map[uintptr]T)}
}

func (r *registry[T]) add(v T) uintptr {
	h := lastHandle.Add(1)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[h] = v
	return h
}

func (r *registry[T]) get(h uintptr) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.items[h]
	if !ok {
		return v, &handleError{kind: r.kind, handle: h}
	}
	return v, nil
}

// take removes the handle so that no later call can reach the object.
func (r *registry[T]) take(h uintptr) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.items[h]
	if !ok {
		return v, &handleError{kind: r.kind, handle: h}
	}
	delete(r.items, h)
	return v, nil
}

func (r *registry[T]) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
