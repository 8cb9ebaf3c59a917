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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonitor_NotifyOne(t *testing.T) {
	m := NewMonitor()
	ready := false
	done := make(chan struct{})

	go func() {
		m.Lock()
		defer m.Unlock()
		for !ready {
			m.Wait()
		}
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	m.Lock()
	ready = true
	m.NotifyOne()
	m.Unlock()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiter was never woken")
	}
}

func TestMonitor_WaitUntil_ReadyWins(t *testing.T) {
	m := NewMonitor()
	ready := false

	go func() {
		time.Sleep(10 * time.Millisecond)
		m.Lock()
		ready = true
		m.NotifyAll()
		m.Unlock()
	}()

	m.Lock()
	ok := m.WaitUntil(func() bool { return ready }, true, func() bool { return false })
	m.Unlock()

	assert.True(t, ok)
}

func TestMonitor_WaitUntil_Cancelled(t *testing.T) {
	m := NewMonitor()
	cancelled := false

	go func() {
		time.Sleep(10 * time.Millisecond)
		m.Lock()
		cancelled = true
		m.NotifyAll()
		m.Unlock()
	}()

	m.Lock()
	ok := m.WaitUntil(func() bool { return false }, true, func() bool { return cancelled })
	m.Unlock()

	assert.False(t, ok)
}
