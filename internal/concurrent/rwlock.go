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
	"sync"
)

// goid identifies the calling goroutine for RWLock's recursive-exclusive
// bookkeeping. Go has no public goroutine id, so RWLock is parameterised
// on a caller-supplied token instead of reading one off the runtime;
// OperationCollection, its user in this package, passes goroutineID().
type goid = any

// RWLock is a reader/writer lock with recursive-exclusive semantics: a
// goroutine holding the exclusive lock may take further shared or
// exclusive locks on the same token without deadlocking, released in
// LIFO order. Shared-to-exclusive upgrade is not supported; callers must
// release shared before taking exclusive. Releasing a lock not held by
// the caller's token is undefined.
type RWLock struct {
	mu    sync.Mutex
	cond  *sync.Cond
	owner goid // valid only while depth > 0
	depth int  // exclusive recursion depth
	share int  // count of outstanding shared holders
}

// NewRWLock returns a ready-to-use RWLock.
func NewRWLock() *RWLock {
	l := &RWLock{}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// LockShared blocks while an exclusive holder other than token exists,
// then records one more shared holder.
func (l *RWLock) LockShared(token goid) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for l.depth > 0 && l.owner != token {
		l.cond.Wait()
	}
	l.share++
}

// UnlockShared releases one shared hold taken by token.
func (l *RWLock) UnlockShared(goid) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.share--
	if l.share == 0 {
		l.cond.Broadcast()
	}
}

// LockExclusive blocks while any holder other than token exists (shared
// or exclusive), then takes (or re-enters) the exclusive lock for token.
func (l *RWLock) LockExclusive(token goid) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.depth > 0 && l.owner == token {
		l.depth++
		return
	}
	for l.depth > 0 || l.share > 0 {
		l.cond.Wait()
	}
	l.owner = token
	l.depth = 1
}

// UnlockExclusive releases one level of token's exclusive recursion.
// When the depth reaches zero the owner is cleared and waiters are
// woken.
func (l *RWLock) UnlockExclusive(goid) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.depth--
	if l.depth == 0 {
		l.owner = nil
		l.cond.Broadcast()
	}
}
