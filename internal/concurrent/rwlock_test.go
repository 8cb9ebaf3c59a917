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

func TestRWLock_SharedConcurrent(t *testing.T) {
	l := NewRWLock()
	var wg sync.WaitGroup
	var active, maxSeen atomic32

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(token int) {
			defer wg.Done()
			l.LockShared(token)
			defer l.UnlockShared(token)
			n := active.Add(1)
			maxSeen.SetMax(n)
			time.Sleep(5 * time.Millisecond)
			active.Add(-1)
		}(i)
	}
	wg.Wait()
	assert.Greater(t, maxSeen.Get(), int32(1), "shared holders should overlap")
}

func TestRWLock_ExclusiveExcludesShared(t *testing.T) {
	l := NewRWLock()
	l.LockExclusive("writer")

	acquired := make(chan struct{})
	go func() {
		l.LockShared("reader")
		close(acquired)
		l.UnlockShared("reader")
	}()

	select {
	case <-acquired:
		t.Fatal("shared lock acquired while exclusive held")
	case <-time.After(30 * time.Millisecond):
	}

	l.UnlockExclusive("writer")
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("shared lock never acquired after exclusive release")
	}
}

func TestRWLock_RecursiveExclusive(t *testing.T) {
	l := NewRWLock()
	l.LockExclusive("t1")
	l.LockExclusive("t1") // re-entrant, same token

	released := make(chan struct{})
	go func() {
		l.LockExclusive("t2")
		close(released)
		l.UnlockExclusive("t2")
	}()

	time.Sleep(20 * time.Millisecond)
	select {
	case <-released:
		t.Fatal("other token acquired exclusive while t1 still holds depth 2")
	default:
	}

	l.UnlockExclusive("t1") // depth 1, still held
	time.Sleep(20 * time.Millisecond)
	select {
	case <-released:
		t.Fatal("other token acquired exclusive while t1 still holds depth 1")
	default:
	}

	l.UnlockExclusive("t1") // depth 0, fully released
	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("other token never acquired exclusive lock")
	}
}

// atomic32 is a tiny test-local counter so this file doesn't need an extra
// import just to track a high-water mark across goroutines.
type atomic32 struct {
	mu sync.Mutex
	v  int32
}

func (a *atomic32) Add(delta int32) int32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.v += delta
	return a.v
}

func (a *atomic32) SetMax(v int32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if v > a.v {
		a.v = v
	}
}

func (a *atomic32) Get() int32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.v
}
