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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPool_RunExecutesRunnable(t *testing.T) {
	p := NewPool("test", 0, time.Minute, nil)
	done := make(chan struct{})
	p.Run(RunnableFunc(func() { close(done) }), nil)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runnable never ran")
	}
}

func TestPool_TryRunRespectsCapacity(t *testing.T) {
	p := NewPool("test", 1, time.Minute, nil)
	block := make(chan struct{})
	started := make(chan struct{})

	ok := p.TryRun(RunnableFunc(func() {
		close(started)
		<-block
	}), nil)
	assert.True(t, ok)
	<-started

	ok = p.TryRun(RunnableFunc(func() {}), nil)
	assert.False(t, ok, "pool is at capacity, TryRun should fail")

	close(block)
}

func TestPool_ReuseIdleWorker(t *testing.T) {
	p := NewPool("test", 1, time.Minute, nil)
	var wg sync.WaitGroup
	wg.Add(1)
	p.Run(RunnableFunc(func() {}), func() { wg.Done() })
	wg.Wait()

	time.Sleep(10 * time.Millisecond) // let onDone's free-list push land
	assert.Equal(t, 1, p.LiveWorkers())

	wg.Add(1)
	p.Run(RunnableFunc(func() {}), func() { wg.Done() })
	wg.Wait()
	assert.Equal(t, 1, p.LiveWorkers(), "second run should reuse the idle worker, not create another")
}

func TestPool_ReapsExpiredIdleWorkers(t *testing.T) {
	p := NewPool("test", 0, 20*time.Millisecond, nil)
	var wg sync.WaitGroup
	wg.Add(1)
	p.Run(RunnableFunc(func() {}), func() { wg.Done() })
	wg.Wait()

	assert.Eventually(t, func() bool {
		return p.LiveWorkers() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestPool_ReserveCapacityAndDispatch(t *testing.T) {
	p := NewPool("test", 1, time.Minute, nil)
	assert.True(t, p.ReserveCapacity())
	assert.False(t, p.ReserveCapacity(), "capacity already exhausted")

	done := make(chan struct{})
	w := p.Dispatch(RunnableFunc(func() { close(done) }), nil)
	assert.NotNil(t, w)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatched runnable never ran")
	}
}

func TestPool_TerminateAllWaitsForRunning(t *testing.T) {
	p := NewPool("test", 0, time.Minute, nil)
	started := make(chan struct{})
	release := make(chan struct{})
	finished := make(chan struct{})

	p.Run(RunnableFunc(func() {
		close(started)
		<-release
	}), func() { close(finished) })
	<-started

	termDone := make(chan struct{})
	go func() {
		p.TerminateAll()
		close(termDone)
	}()

	select {
	case <-termDone:
		t.Fatal("TerminateAll returned before running worker finished")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-finished

	select {
	case <-termDone:
	case <-time.After(time.Second):
		t.Fatal("TerminateAll never returned")
	}
	assert.Equal(t, 0, p.LiveWorkers())
}

func TestPool_RunnablePanicRecovered(t *testing.T) {
	p := NewPool("test", 1, time.Minute, nil)
	var wg sync.WaitGroup
	wg.Add(1)
	p.Run(RunnableFunc(func() {
		panic("boom")
	}), func() { wg.Done() })

	wg.Wait()
	// pool must still be usable after a panicking runnable
	wg.Add(1)
	p.Run(RunnableFunc(func() {}), func() { wg.Done() })
	wg.Wait()
}
