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

func TestSemaphore_TryAcquireRelease(t *testing.T) {
	s := NewSemaphore(2, false)
	assert.True(t, s.TryAcquire(2))
	assert.False(t, s.TryAcquire(1))
	s.Release(1)
	assert.Equal(t, 1, s.Available())
	assert.True(t, s.TryAcquire(1))
}

func TestSemaphore_BlockingAcquireUnblocksOnRelease(t *testing.T) {
	s := NewSemaphore(1, false)
	assert.True(t, s.TryAcquire(1))

	acquired := make(chan struct{})
	go func() {
		s.Acquire(1, nil)
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("acquired before release")
	case <-time.After(20 * time.Millisecond):
	}

	s.Release(1)
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("blocked acquirer never woken")
	}
}

func TestSemaphore_AcquireCancel(t *testing.T) {
	s := NewSemaphore(1, false)
	assert.True(t, s.TryAcquire(1))

	var cancelled atomic32
	done := make(chan bool, 1)
	go func() {
		ok := s.Acquire(1, func() bool { return cancelled.Get() == 1 })
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	cancelled.Add(1)
	s.Interrupt()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("cancelled acquire never returned")
	}
	assert.Equal(t, 0, s.Available())
}

func TestSemaphore_FairOrdersWaiters(t *testing.T) {
	s := NewSemaphore(1, true)
	assert.True(t, s.TryAcquire(1))

	var order []int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			time.Sleep(time.Duration(n) * 10 * time.Millisecond)
			s.Acquire(1, nil)
			mu.Lock()
			order = append(order, n)
			mu.Unlock()
			s.Release(1)
		}(i)
	}
	// give every goroutine a chance to enqueue in arrival order before the
	// first release happens
	time.Sleep(50 * time.Millisecond)
	s.Release(1)

	wg.Wait()
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestSemaphore_SetMaxPermits(t *testing.T) {
	s := NewSemaphore(1, false)
	assert.True(t, s.TryAcquire(1))
	s.SetMaxPermits(3)
	assert.Equal(t, 2, s.Available())
	assert.Equal(t, 3, s.Max())

	s.SetMaxPermits(0)
	assert.True(t, s.Available() <= 0)
}
