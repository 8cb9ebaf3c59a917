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

import "sync"

// Monitor pairs a mutex with a condition variable, the way the source's
// ExclusiveMonitor wraps an OS mutex and condvar. It is not reentrant:
// each Lock/Unlock pair belongs to a single scope, and Wait must be
// called with the monitor locked.
type Monitor struct {
	mu   sync.Mutex
	cond *sync.Cond
}

// NewMonitor returns a ready-to-use Monitor.
func NewMonitor() *Monitor {
	m := &Monitor{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Lock acquires the monitor.
func (m *Monitor) Lock() { m.mu.Lock() }

// Unlock releases the monitor.
func (m *Monitor) Unlock() { m.mu.Unlock() }

// Wait atomically releases the monitor, blocks until a NotifyOne or
// NotifyAll call, and reacquires the monitor before returning. The
// caller must hold the monitor. A cancellation source that wants to wake
// a Wait call early must pair setting its flag with a Notify call — see
// WaitUntil for the common interruptible-predicate loop built on top of
// that contract.
func (m *Monitor) Wait() { m.cond.Wait() }

// NotifyOne wakes exactly one waiter, if any are blocked in Wait.
func (m *Monitor) NotifyOne() { m.cond.Signal() }

// NotifyAll wakes every waiter blocked in Wait.
func (m *Monitor) NotifyAll() { m.cond.Broadcast() }

// WaitUntil blocks, with the monitor locked on entry, until ready()
// reports true or (when interruptible) cancelled() reports true,
// whichever happens first. It returns ready()'s final value. Both
// predicates are evaluated under the monitor's lock. Callers that flip
// the state behind cancelled() must also call NotifyAll for this loop to
// observe it promptly.
func (m *Monitor) WaitUntil(ready func() bool, interruptible bool, cancelled func() bool) bool {
	for {
		if ready() {
			return true
		}
		if interruptible && cancelled != nil && cancelled() {
			return false
		}
		m.cond.Wait()
	}
}
