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
	"time"

	"go.uber.org/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lindb/common/pkg/logger"

	"github.com/lindb/opscheduler/internal/metrics"
)

// defaultRecentCompletionsCap bounds the engine's diagnostics ring when a
// caller does not specify one.
const defaultRecentCompletionsCap = 256

var engineLogger = logger.GetLogger("Concurrent", "Engine")

// CompletionRecord is a snapshot of an operation's terminal state, kept
// in the engine's bounded diagnostics ring (see RecentCompletions). It is
// a lossy aid for introspection and tests, not part of the scheduling
// contract.
type CompletionRecord struct {
	Interrupted bool
	StoppedAt   time.Time
}

// Engine is the guarded operation engine: a single dispatcher goroutine
// that walks a pending FIFO of operations, consults each one's Guard, and
// admits eligible operations onto an embedded Pool. It specializes the
// spec's plain "job dispatcher" to operations carrying guards and state
// mutators; an Engine built with every operation's guard left nil
// (trivialGuard) degrades to exactly that plain dispatcher.
type Engine struct {
	name string
	pool *Pool

	mu             sync.Mutex
	cond           *sync.Cond
	pending        *list.List
	index          map[*Operation]*list.Element
	dispatchNeeded bool

	started atomic.Bool
	stopped atomic.Bool

	dispatcherDone chan struct{}

	running atomic.Int64

	current sync.Map // goroutine id (int64) -> *Operation

	recent *lru.Cache[*Operation, CompletionRecord]

	stats *metrics.EngineStatistics
}

// NewEngine returns an Engine built over pool. recentCap bounds the
// diagnostics ring (§4.9); zero or negative uses
// defaultRecentCompletionsCap.
func NewEngine(name string, pool *Pool, stats *metrics.EngineStatistics, recentCap int) *Engine {
	if recentCap <= 0 {
		recentCap = defaultRecentCompletionsCap
	}
	recent, _ := lru.New[*Operation, CompletionRecord](recentCap)
	e := &Engine{
		name:           name,
		pool:           pool,
		pending:        list.New(),
		index:          make(map[*Operation]*list.Element),
		dispatcherDone: make(chan struct{}),
		recent:         recent,
		stats:          stats,
	}
	e.cond = sync.NewCond(&e.mu)
	return e
}

// Start boots the dispatcher goroutine. Idempotent.
func (e *Engine) Start() {
	if e.started.Swap(true) {
		return
	}
	engineLogger.Info("engine starting", logger.String("engine", e.name))
	go e.dispatchLoop()
}

// Stop interrupts the dispatcher, terminates every running operation via
// the pool, and clears the pending FIFO — every operation still queued
// is marked stopped with interrupted=true, without its guard or mutator
// ever being consulted. Idempotent.
func (e *Engine) Stop() {
	if e.stopped.Swap(true) {
		return
	}
	engineLogger.Info("engine stopping", logger.String("engine", e.name))

	e.mu.Lock()
	e.dispatchNeeded = true
	e.cond.Broadcast()
	e.mu.Unlock()

	if e.started.Load() {
		<-e.dispatcherDone
	}

	e.pool.TerminateAll()

	e.mu.Lock()
	abandoned := make([]*Operation, 0, e.pending.Len())
	for elem := e.pending.Front(); elem != nil; elem = elem.Next() {
		abandoned = append(abandoned, elem.Value.(*Operation))
	}
	e.pending.Init()
	e.index = make(map[*Operation]*list.Element)
	if e.stats != nil {
		e.stats.OperationsQueued.Set(0)
	}
	e.mu.Unlock()

	for _, op := range abandoned {
		op.interrupted.Store(true)
		op.markStopped()
		if e.stats != nil {
			e.stats.OperationsCancelled.Inc()
		}
		e.recordCompletion(op, true)
	}
}

// Queue appends op to the pending FIFO and wakes the dispatcher. It
// returns false, rejecting op outright, if the engine has been stopped.
func (e *Engine) Queue(op *Operation) bool {
	if e.stopped.Load() {
		if e.stats != nil {
			e.stats.OperationsRejected.Inc()
		}
		engineLogger.Error("operation rejected: engine not running",
			logger.String("engine", e.name))
		return false
	}
	op.markQueued(time.Now())
	e.mu.Lock()
	elem := e.pending.PushBack(op)
	e.index[op] = elem
	e.dispatchNeeded = true
	if e.stats != nil {
		e.stats.OperationsQueued.Set(float64(e.pending.Len()))
	}
	e.cond.Broadcast()
	e.mu.Unlock()
	return true
}

// CurrentOperation returns the operation running on the calling
// goroutine, or nil if the caller is not executing inside a runnable
// dispatched by this engine.
func (e *Engine) CurrentOperation() *Operation {
	v, ok := e.current.Load(goroutineID())
	if !ok {
		return nil
	}
	return v.(*Operation)
}

// QueuedCount returns the number of operations currently pending
// admission.
func (e *Engine) QueuedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending.Len()
}

// TotalCount returns the number of operations either pending or
// currently executing.
func (e *Engine) TotalCount() int {
	e.mu.Lock()
	n := e.pending.Len()
	e.mu.Unlock()
	return n + int(e.running.Load())
}

// SetMaxWorkers reconfigures the pool's capacity semaphore. Enlarging it
// is one of the wake edges that sets dispatch-needed, since previously
// blocked admissions may now fit.
func (e *Engine) SetMaxWorkers(n int) {
	e.pool.SetMaxWorkers(n)
	e.mu.Lock()
	e.dispatchNeeded = true
	e.cond.Broadcast()
	e.mu.Unlock()
}

// SetWorkerExpireTime updates the pool's idle-worker expiry.
func (e *Engine) SetWorkerExpireTime(d time.Duration) {
	e.pool.SetExpireTime(d)
}

// RecentCompletions returns a snapshot of the engine's bounded
// diagnostics ring of recently completed operations (§4.9). The result is
// unordered and may be lossy under high throughput — it exists for
// introspection and tests, not as part of the scheduling contract.
func (e *Engine) RecentCompletions() []CompletionRecord {
	return e.recent.Values()
}

// Wakeup lets an embedding system nudge the dispatcher outside the usual
// enqueue/completion/capacity edges — e.g. after a guard-relevant change
// to external state the engine has no other way of learning about, per
// spec.md §4.7's "guard-state change broadcast" wake edge.
func (e *Engine) Wakeup() {
	e.mu.Lock()
	e.dispatchNeeded = true
	e.cond.Broadcast()
	e.mu.Unlock()
}

func (e *Engine) dispatchLoop() {
	defer close(e.dispatcherDone)
	e.mu.Lock()
	defer e.mu.Unlock()
	for {
		for !e.dispatchNeeded {
			e.cond.Wait()
		}
		if e.stopped.Load() {
			return
		}
		e.dispatchNeeded = false
		e.walkAndAdmitLocked()
	}
}

// walkAndAdmitLocked is one FIFO pass of the dispatcher main loop
// (spec.md §4.7 step 3), executed with e.mu held.
func (e *Engine) walkAndAdmitLocked() {
	for elem := e.pending.Front(); elem != nil; {
		next := elem.Next()
		op := elem.Value.(*Operation)

		switch {
		case op.guard.CanExecute(op):
			if !e.pool.ReserveCapacity() {
				// Capacity exhausted: treat exactly like the wait path
				// below rather than admitting without a permit — see
				// SPEC_FULL.md §9's resolution of the source's
				// "accepted but not placed" ambiguity.
				break
			}
			e.pending.Remove(elem)
			delete(e.index, op)
			e.dispatchNeeded = true
			if e.stats != nil {
				e.stats.OperationsQueued.Set(float64(e.pending.Len()))
			}
			e.admitLocked(op)

		case op.IsInterrupted() || op.guard.MustCancel(op):
			e.pending.Remove(elem)
			delete(e.index, op)
			if e.stats != nil {
				e.stats.OperationsCancelled.Inc()
				e.stats.OperationsQueued.Set(float64(e.pending.Len()))
			}
			op.interrupted.Store(true)
			op.markStopped()
			e.recordCompletion(op, true)

		default:
			// Wait path: leave it in place for a future pass.
		}
		elem = next
	}
}

// admitLocked runs the admit half of spec.md §4.7 step 3c. It is called
// with e.mu held, matching the spec's requirement that mutatePre and the
// handoff to the pool both happen under the engine lock; only the
// runnable's own execution, which proceeds on the worker's independent
// goroutine after Dispatch returns, happens outside it.
func (e *Engine) admitLocked(op *Operation) {
	admittedAt := time.Now()
	if e.stats != nil {
		e.stats.WaitDuration.Observe(op.waitDuration(admittedAt).Seconds())
	}
	op.mutator.MutatePre(op)
	e.running.Inc()
	if e.stats != nil {
		e.stats.OperationsAdmitted.Inc()
	}

	runnable := engineRunnable{engine: e, op: op}
	w := e.pool.Dispatch(runnable, func() {
		e.onOperationDone(op, admittedAt)
	})
	op.bindWorker(w)
}

// onOperationDone is the pool's completion callback (spec.md §4.7
// "Completion callback"), invoked by the worker's own goroutine after
// the runnable returns. mutatePost and the stopped transition it
// guards both happen under e.mu, matching admitLocked's mutatePre and
// giving callers a single lock under which mutatePre happens-before
// mutatePost happens-before stopped is observable.
func (e *Engine) onOperationDone(op *Operation, admittedAt time.Time) {
	e.mu.Lock()
	op.mutator.MutatePost(op)
	op.markStopped()
	e.dispatchNeeded = true
	e.cond.Broadcast()
	e.mu.Unlock()

	op.bindWorker(nil)
	e.running.Dec()

	if e.stats != nil {
		e.stats.OperationsCompleted.Inc()
		e.stats.ExecDuration.Observe(time.Since(admittedAt).Seconds())
	}
	e.recordCompletion(op, op.IsInterrupted())
}

func (e *Engine) recordCompletion(op *Operation, interrupted bool) {
	e.recent.Add(op, CompletionRecord{Interrupted: interrupted, StoppedAt: time.Now()})
}

// engineRunnable wraps a submitter's Runnable so the engine can publish
// "current operation" for the duration of the call (see CurrentOperation
// and goroutineID) without requiring Go's absent goroutine-local storage
// anywhere else in the package.
type engineRunnable struct {
	engine *Engine
	op     *Operation
}

func (r engineRunnable) Run() {
	gid := goroutineID()
	r.engine.current.Store(gid, r.op)
	defer r.engine.current.Delete(gid)
	r.op.runnable.Run()
}
