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
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/lindb/common/pkg/logger"

	"github.com/lindb/opscheduler/internal/metrics"
)

// unboundedMaxWorkers is the sentinel maximum meaning "no cap on live
// worker goroutines" — the capacity semaphore is not consulted at all.
const unboundedMaxWorkers = 0

// reapPollInterval bounds how long an idle worker can outlive its expiry
// before the background reaper retires it. It is deliberately a small
// fixed tick rather than a per-worker timer: a single goroutine scanning
// the free list under the pool lock cannot race with a caller popping a
// worker off that same list for reuse, whereas a timer owned by the
// worker itself could fire at the exact instant the pool hands it a new
// job. See acquireWorker and onWorkerDone.
const reapPollInterval = 5 * time.Millisecond

var poolLogger = logger.GetLogger("Concurrent", "Pool")

// Pool is a self-sizing, expiring goroutine pool. Workers are created
// lazily on demand, reused from a free list while idle, and reaped once
// they have sat idle past the configured expiry. Capacity is enforced by
// a Semaphore so TryRun/Run share the same admission discipline as every
// other bounded resource in this package.
type Pool struct {
	name string

	mu       sync.Mutex
	idle     []*Worker
	roster   map[*Worker]struct{}
	stopping bool

	capacity   *Semaphore
	bounded    bool
	maxWorkers int

	expire atomic.Duration

	reaperStop chan struct{}
	reaperDone chan struct{}

	stats *metrics.PoolStatistics
}

// NewPool returns a running Pool. maxWorkers == 0 means unbounded; expire
// is the idle-timeout after which an unused worker goroutine is retired.
func NewPool(name string, maxWorkers int, expire time.Duration, stats *metrics.PoolStatistics) *Pool {
	p := &Pool{
		name:       name,
		roster:     make(map[*Worker]struct{}),
		bounded:    maxWorkers > unboundedMaxWorkers,
		maxWorkers: maxWorkers,
		reaperStop: make(chan struct{}),
		reaperDone: make(chan struct{}),
		stats:      stats,
	}
	if p.bounded {
		p.capacity = NewSemaphore(maxWorkers, false)
	}
	p.expire.Store(expire)
	go p.reapLoop()
	return p
}

// TryRun submits runnable without blocking; it returns false if the pool
// is bounded and currently at capacity.
func (p *Pool) TryRun(runnable Runnable, onDone func()) bool {
	w, ok := p.acquireWorker(false)
	if !ok {
		return false
	}
	w.assign(assignment{runnable: runnable, onDone: onDone})
	return true
}

// Run submits runnable, blocking until capacity is available.
func (p *Pool) Run(runnable Runnable, onDone func()) {
	w, _ := p.acquireWorker(true)
	w.assign(assignment{runnable: runnable, onDone: onDone})
}

// ReserveCapacity takes one capacity permit without assigning a worker,
// reporting whether one was available (always true when unbounded). The
// engine uses this to check capacity under its own lock before running a
// guard's admission mutator, per the "check capacity before mutatePre"
// resolution in SPEC_FULL.md's design notes — a reservation taken here
// must later be consumed by Dispatch, never silently dropped.
func (p *Pool) ReserveCapacity() bool {
	if !p.bounded {
		return true
	}
	return p.capacity.TryAcquire(1)
}

// Dispatch hands runnable to a worker using a permit already taken by
// ReserveCapacity (or no permit at all, if the pool is unbounded). It
// must not be called without a matching successful ReserveCapacity, and
// returns the worker the runnable was handed to.
func (p *Pool) Dispatch(runnable Runnable, onDone func()) *Worker {
	w := p.acquireWorkerNoPermit()
	w.assign(assignment{runnable: runnable, onDone: onDone})
	return w
}

// acquireWorker implements spec's "acquire worker" algorithm: take a
// capacity permit (unless unbounded), reap expired idle workers, then
// reuse a free one or create a new one.
func (p *Pool) acquireWorker(blocking bool) (*Worker, bool) {
	if p.bounded {
		if blocking {
			p.capacity.Acquire(1, nil)
		} else if !p.capacity.TryAcquire(1) {
			return nil, false
		}
	}
	return p.acquireWorkerNoPermit(), true
}

// acquireWorkerNoPermit is steps 2-3 of spec's "acquire worker" algorithm,
// assuming a capacity permit (if any) was already taken by the caller.
func (p *Pool) acquireWorkerNoPermit() *Worker {
	p.mu.Lock()
	p.reapLocked(time.Now())
	var w *Worker
	if n := len(p.idle); n > 0 {
		w = p.idle[n-1]
		p.idle = p.idle[:n-1]
	} else {
		w = newWorker(p)
		p.roster[w] = struct{}{}
		if p.stats != nil {
			p.stats.WorkersCreated.Inc()
		}
	}
	p.mu.Unlock()

	if p.stats != nil {
		p.stats.WorkersBusy.Inc()
	}
	return w
}

// onWorkerDone is invoked by a worker's own goroutine immediately after
// its runnable and onDone callback return. It reports whether the pool
// has begun shutting down, in which case the worker must retire itself
// instead of returning to the free list — a running worker can only
// learn this at completion, since it has no way to be handed a stop
// signal while busy.
func (p *Pool) onWorkerDone(w *Worker) (retire bool) {
	p.mu.Lock()
	if p.stopping {
		delete(p.roster, w)
		retire = true
	} else {
		w.idleSince.Store(time.Now().UnixNano())
		p.idle = append(p.idle, w)
	}
	p.mu.Unlock()

	if p.bounded {
		p.capacity.Release(1)
	}
	if p.stats != nil {
		p.stats.WorkersBusy.Dec()
		if retire {
			p.stats.WorkersExpired.Inc()
		}
	}
	return retire
}

// onWorkerPanic converts a runnable's panic into a logged, counted event
// rather than crashing the worker goroutine; the worker survives and is
// returned to the free list by the normal onWorkerDone path.
func (p *Pool) onWorkerPanic(w *Worker, r any) {
	if p.stats != nil {
		p.stats.RunnablePanics.Inc()
	}
	poolLogger.Error("runnable panicked",
		logger.String("pool", p.name),
		logger.Error(fmt.Errorf("%v", r)))
	_ = w
}

// reapLocked retires idle workers that have sat past the expiry,
// assuming mu is held.
func (p *Pool) reapLocked(now time.Time) {
	expire := p.expire.Load()
	if expire <= 0 || len(p.idle) == 0 {
		return
	}
	kept := p.idle[:0]
	var victims []*Worker
	for _, w := range p.idle {
		idleSince := time.Unix(0, w.idleSince.Load())
		if now.Sub(idleSince) >= expire {
			delete(p.roster, w)
			w.state.Store(int32(workerExpired))
			victims = append(victims, w)
		} else {
			kept = append(kept, w)
		}
	}
	p.idle = kept
	if len(victims) == 0 {
		return
	}
	// Retirement itself must happen without mu held: it blocks on a
	// channel handshake with the worker's own goroutine.
	go func() {
		for _, w := range victims {
			w.retire()
			if p.stats != nil {
				p.stats.WorkersExpired.Inc()
			}
		}
	}()
}

func (p *Pool) reapLoop() {
	defer close(p.reaperDone)
	ticker := time.NewTicker(reapPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.mu.Lock()
			p.reapLocked(time.Now())
			p.mu.Unlock()
		case <-p.reaperStop:
			return
		}
	}
}

// SetMaxWorkers changes the pool's capacity. Switching between bounded
// and unbounded at runtime is not supported; a pool created unbounded
// stays unbounded.
func (p *Pool) SetMaxWorkers(maxWorkers int) {
	if !p.bounded {
		return
	}
	p.capacity.SetMaxPermits(maxWorkers)
	p.mu.Lock()
	p.maxWorkers = maxWorkers
	p.mu.Unlock()
}

// SetExpireTime changes the idle-expiry applied to workers going
// forward; workers already idle are measured against the new value on
// the reaper's next tick.
func (p *Pool) SetExpireTime(expire time.Duration) {
	p.expire.Store(expire)
}

// InterruptAll sets the cancel flag on every live worker (idle or
// running). It does not itself stop or wake anything, and it does not set
// the interrupted flag of the operations those workers are running; the
// worker flag is visible only through Worker.IsInterrupted.
func (p *Pool) InterruptAll() {
	p.mu.Lock()
	for w := range p.roster {
		w.Interrupt()
	}
	p.mu.Unlock()
}

// TerminateAll interrupts every worker, retires every currently idle
// one, and blocks until every running worker has finished its current
// runnable and self-retired. The caller must not concurrently call
// TryRun/Run while TerminateAll is in flight — the dispatcher that owns
// this pool is responsible for stopping first.
func (p *Pool) TerminateAll() {
	p.InterruptAll()

	p.mu.Lock()
	p.stopping = true
	idleNow := p.idle
	p.idle = nil
	for _, w := range idleNow {
		delete(p.roster, w)
	}
	p.mu.Unlock()

	for _, w := range idleNow {
		w.retire()
		if p.stats != nil {
			p.stats.WorkersExpired.Inc()
		}
	}

	for {
		p.mu.Lock()
		remaining := len(p.roster)
		p.mu.Unlock()
		if remaining == 0 {
			break
		}
		time.Sleep(reapPollInterval)
	}

	close(p.reaperStop)
	<-p.reaperDone
}

// LiveWorkers returns the number of worker goroutines currently alive
// (idle plus running), for diagnostics and tests.
func (p *Pool) LiveWorkers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.roster)
}

// MaxWorkers returns the configured maximum, or 0 for unbounded.
func (p *Pool) MaxWorkers() int {
	if !p.bounded {
		return unboundedMaxWorkers
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxWorkers
}
