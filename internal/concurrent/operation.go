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
	"time"

	"go.uber.org/atomic"
)

// Operation is the scheduler's unit of work: a runnable plus the
// capabilities the engine consults around it, and the handful of flags
// that track its lifecycle. Callers obtain one via NewOperation, enqueue
// it on an Engine with Queue, and observe completion with WaitFor.
type Operation struct {
	runnable Runnable
	guard    Guard
	mutator  StateMutator
	userData any

	interrupted atomic.Bool
	stopped     atomic.Bool

	mon *Monitor

	worker atomic.Pointer[Worker]

	queuedAt atomic.Pointer[time.Time]
}

// NewOperation builds an Operation. guard and mutator may be nil, in
// which case the engine treats the operation as always-admissible with
// no pre/post mutation — equivalent to trivialGuard and noopMutator.
func NewOperation(runnable Runnable, guard Guard, mutator StateMutator, userData any) *Operation {
	if guard == nil {
		guard = trivialGuard{}
	}
	if mutator == nil {
		mutator = noopMutator{}
	}
	return &Operation{
		runnable: runnable,
		guard:    guard,
		mutator:  mutator,
		userData: userData,
		mon:      NewMonitor(),
	}
}

// Runnable returns the operation's work item.
func (op *Operation) Runnable() Runnable { return op.runnable }

// Guard returns the operation's admission/cancel capability.
func (op *Operation) Guard() Guard { return op.guard }

// Mutator returns the operation's pre/post state-mutation capability.
func (op *Operation) Mutator() StateMutator { return op.mutator }

// UserData returns the payload supplied at construction.
func (op *Operation) UserData() any { return op.userData }

// IsInterrupted reports the operation's sticky cancel flag.
func (op *Operation) IsInterrupted() bool { return op.interrupted.Load() }

// IsStopped reports whether the operation has reached its terminal
// state: its runnable returned, or it was cancelled before admission.
func (op *Operation) IsStopped() bool { return op.stopped.Load() }

// Interrupt sets the sticky interrupt flag, wakes every WaitFor parked on
// the operation's own monitor, and, if the operation is currently
// assigned to a worker, sets that worker's cancel flag too. It does not
// wake a blocking primitive the runnable itself is parked in: a
// Semaphore.Acquire, for example, re-checks its cancel predicate only
// after a Release, SetMaxPermits or Semaphore.Interrupt.
func (op *Operation) Interrupt() {
	op.interrupted.Store(true)
	if w := op.worker.Load(); w != nil {
		w.Interrupt()
	}
	op.mon.Lock()
	op.mon.NotifyAll()
	op.mon.Unlock()
}

// WaitFor blocks until the operation is stopped. If interruptible and
// the calling operation's own interrupt flag (ownerInterrupted) becomes
// set while waiting, it returns false early with that flag still set;
// otherwise it returns true once stopped becomes true. Pass nil for
// ownerInterrupted to wait uninterruptibly.
func (op *Operation) WaitFor(interruptible bool, ownerInterrupted func() bool) bool {
	op.mon.Lock()
	defer op.mon.Unlock()
	return op.mon.WaitUntil(op.stopped.Load, interruptible, ownerInterrupted)
}

// markQueued stamps the time op entered the engine's pending FIFO, for
// the engine to compute admission wait time from. Called by Engine.Queue.
func (op *Operation) markQueued(t time.Time) {
	op.queuedAt.Store(&t)
}

// waitDuration returns how long op has been queued, measuring from the
// timestamp markQueued recorded. Called by the engine immediately before
// admitting op, to report operation_wait_seconds.
func (op *Operation) waitDuration(now time.Time) time.Duration {
	t := op.queuedAt.Load()
	if t == nil {
		return 0
	}
	return now.Sub(*t)
}

// bindWorker publishes the worker currently executing this operation so
// Interrupt can reach its cancel flag. Called by the engine under its lock
// right after Dispatch has handed the runnable to the worker (the
// completion callback, which clears it with nil, takes that same lock
// first, so it cannot run before the binding); pass nil to clear it.
func (op *Operation) bindWorker(w *Worker) {
	op.worker.Store(w)
}

// markStopped sets the terminal flag, exactly once, and wakes every
// WaitFor call parked on the operation's monitor.
func (op *Operation) markStopped() {
	op.mon.Lock()
	op.stopped.Store(true)
	op.mon.NotifyAll()
	op.mon.Unlock()
}
