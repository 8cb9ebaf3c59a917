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
	"container/list"
	"sync"
)

// Semaphore is a counting semaphore with a dynamically resizable
// maximum, an interruptible Acquire, and a per-thread wait list. The
// fair variant wakes waiters in arrival order; the unfair variant wakes
// any one waiter (here, whichever the runtime schedules first among
// those re-checking the condition).
type Semaphore struct {
	mu        sync.Mutex
	max       int
	available int
	fair      bool
	waiters   *list.List // of *semWaiter, arrival order; used only when fair
	notify    []chan struct{}
}

type semWaiter struct {
	ready chan struct{}
	n     int
}

// NewSemaphore returns a Semaphore with maximum (and initially available)
// permits. fair selects FIFO wake order among blocked acquirers.
func NewSemaphore(maximum int, fair bool) *Semaphore {
	return &Semaphore{
		max:       maximum,
		available: maximum,
		fair:      fair,
		waiters:   list.New(),
	}
}

// Acquire blocks until n permits are available or cancel() reports true,
// then atomically decrements available by n. It returns false if it
// returned because of cancellation, in which case no permits were taken.
// The caller must ensure n does not exceed the semaphore's maximum, or
// Acquire deadlocks (or blocks until a future SetMaxPermits(m>=n)).
// cancel is only re-evaluated when something wakes the wait loop: a
// Release, a SetMaxPermits, or an explicit Interrupt call from whatever
// set the condition cancel() observes. A caller that wants a blocked
// Acquire to notice cancellation promptly must call Interrupt after
// setting that condition.
func (s *Semaphore) Acquire(n int, cancel func() bool) bool {
	if s.fair {
		return s.acquireFair(n, cancel)
	}
	return s.acquireUnfair(n, cancel)
}

func (s *Semaphore) acquireUnfair(n int, cancel func() bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.available < n {
		if cancel != nil && cancel() {
			return false
		}
		s.waitLocked()
	}
	s.available -= n
	return true
}

// acquireFair enqueues a ticket and only ever consumes permits when it is
// at the head of the arrival-ordered wait list, so earlier acquirers are
// never starved by later ones.
func (s *Semaphore) acquireFair(n int, cancel func() bool) bool {
	s.mu.Lock()
	elem := s.waiters.PushBack(&semWaiter{n: n})
	for {
		front := s.waiters.Front()
		if front == elem && s.available >= n {
			s.available -= n
			s.waiters.Remove(elem)
			// pass a notification on to the next waiter, since removing
			// ourselves may have freed the new head to proceed.
			s.broadcastLocked()
			s.mu.Unlock()
			return true
		}
		if cancel != nil && cancel() {
			s.waiters.Remove(elem)
			s.broadcastLocked()
			s.mu.Unlock()
			return false
		}
		s.waitLocked()
	}
}

// TryAcquire never blocks; it returns false immediately if fewer than n
// permits are available (fair queueing is irrelevant to a non-blocking
// call).
func (s *Semaphore) TryAcquire(n int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.available < n {
		return false
	}
	s.available -= n
	return true
}

// Release increments available by n, clamped to max, and wakes up to n
// waiters.
func (s *Semaphore) Release(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.available += n
	if s.available > s.max {
		s.available = s.max
	}
	s.broadcastLocked()
}

// SetMaxPermits updates the maximum. Growing releases the delta;
// shrinking subtracts it from available, which may drive available
// negative momentarily if more permits are currently issued than
// max-m allows — subsequent Releases are absorbed silently (clamped at
// max) until the balance recovers.
func (s *Semaphore) SetMaxPermits(m int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delta := m - s.max
	s.max = m
	s.available += delta
	if delta > 0 {
		s.broadcastLocked()
	}
}

// Interrupt wakes every currently blocked Acquire so it re-checks its own
// cancel predicate, without releasing or consuming any permit. It is the
// dedicated wake edge invariant (d) requires for a waiter's interruption:
// a cancellation source must pair setting whatever flag cancel() observes
// with a call to Interrupt, the same way a Monitor cancellation source
// pairs its flag with Notify. A fair acquirer that cancels out of the
// wait list already re-broadcasts on its way out (see acquireFair), so
// this only needs to reach the waiter directly targeted; any other
// parked waiter simply finds available unchanged and its own cancel()
// still false, and goes back to waiting.
func (s *Semaphore) Interrupt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcastLocked()
}

// Available returns the current permit count, for diagnostics and tests.
func (s *Semaphore) Available() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available
}

// Max returns the current maximum permits.
func (s *Semaphore) Max() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.max
}

func (s *Semaphore) waitLocked() {
	// sync.Cond would require an embedded *sync.Cond bound to s.mu; a
	// plain broadcast channel keeps TryAcquire/Acquire/Release/SetMaxPermits
	// all operating under the same mutex without juggling a second
	// synchronization primitive.
	ch := make(chan struct{})
	s.notify = append(s.notify, ch)
	s.mu.Unlock()
	<-ch
	s.mu.Lock()
}

func (s *Semaphore) broadcastLocked() {
	for _, ch := range s.notify {
		close(ch)
	}
	s.notify = s.notify[:0]
}
