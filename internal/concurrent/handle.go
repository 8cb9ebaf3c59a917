// Licensed to LinDB under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. LinDB licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package concurrent

import (
	"unsafe"

	"go.uber.org/atomic"
)

// Handle is a thread-safe, intrusively reference-counted holder of a
// heap-allocated target. Retain increments the strong count (a plain Go
// copy of the struct does not); Release decrements it, and the last
// Release runs the optional onZero callback before the target is dropped.
//
// The zero Handle[T] is the null sentinel: it holds nothing and Release
// on it is a no-op. Handle is passed by value; the handle returned by
// NewHandle and every handle returned by Retain must each eventually
// call Release exactly once.
type Handle[T any] struct {
	box *handleBox[T]
}

type handleBox[T any] struct {
	value  T
	count  atomic.Int64
	onZero func(*T)
}

// NewHandle constructs a Handle owning value with an initial strong count
// of one. onZero, if non-nil, runs exactly once, when the last Handle
// referencing value is released.
func NewHandle[T any](value T, onZero func(*T)) Handle[T] {
	box := &handleBox[T]{value: value, onZero: onZero}
	box.count.Store(1)
	return Handle[T]{box: box}
}

// IsNil reports whether h is the null sentinel.
func (h Handle[T]) IsNil() bool {
	return h.box == nil
}

// Retain increments the strong count and returns h, mirroring a copy
// constructor. Retaining a null handle is a no-op and returns the null
// handle.
func (h Handle[T]) Retain() Handle[T] {
	if h.box == nil {
		return h
	}
	h.box.count.Inc()
	return h
}

// Release decrements the strong count. When it reaches zero, onZero (if
// any) runs and the target becomes eligible for garbage collection.
// Releasing a null handle is a no-op. Releasing more times than the
// handle was retained is undefined, matching the source's raw strong
// count.
func (h Handle[T]) Release() {
	if h.box == nil {
		return
	}
	if h.box.count.Dec() == 0 {
		if h.box.onZero != nil {
			h.box.onZero(&h.box.value)
		}
	}
}

// Get returns a pointer to the held target. Calling Get on a null handle
// is undefined, matching the source's "dereference undefined if null";
// this implementation panics with a nil pointer dereference.
func (h Handle[T]) Get() *T {
	return &h.box.value
}

// RefCount returns the current strong count, for tests and diagnostics.
// It is zero for a null handle.
func (h Handle[T]) RefCount() int64 {
	if h.box == nil {
		return 0
	}
	return h.box.count.Load()
}

// Ptr returns an opaque, stable identity for the held target, usable as
// a map key. Two handles sharing the same target return the same Ptr.
func (h Handle[T]) Ptr() uintptr {
	if h.box == nil {
		return 0
	}
	return uintptr(unsafe.Pointer(h.box))
}
