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

func TestOperation_WaitForBlocksUntilStopped(t *testing.T) {
	op := NewOperation(RunnableFunc(func() {}), nil, nil, nil)
	assert.False(t, op.IsStopped())

	done := make(chan bool, 1)
	go func() {
		done <- op.WaitFor(false, nil)
	}()

	time.Sleep(10 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("WaitFor returned before markStopped")
	default:
	}

	op.markStopped()
	select {
	case ok := <-done:
		assert.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("WaitFor never returned")
	}
	assert.True(t, op.IsStopped())
}

func TestOperation_InterruptWakesInterruptibleWait(t *testing.T) {
	op := NewOperation(RunnableFunc(func() {}), nil, nil, nil)

	done := make(chan bool, 1)
	go func() {
		done <- op.WaitFor(true, op.IsInterrupted)
	}()

	time.Sleep(10 * time.Millisecond)
	op.Interrupt()

	select {
	case ok := <-done:
		assert.False(t, ok, "interruptible wait should return false on interrupt, operation never stopped")
	case <-time.After(time.Second):
		t.Fatal("WaitFor never woken by Interrupt")
	}
	assert.True(t, op.IsInterrupted())
	assert.False(t, op.IsStopped())
}

func TestOperation_InterruptReachesBoundWorker(t *testing.T) {
	op := NewOperation(RunnableFunc(func() {}), nil, nil, nil)
	p := NewPool("test", 1, time.Minute, nil)
	assert.True(t, p.ReserveCapacity())
	w := p.Dispatch(RunnableFunc(func() {}), nil)
	op.bindWorker(w)

	op.Interrupt()
	assert.True(t, w.IsInterrupted())
}

func TestOperation_UserData(t *testing.T) {
	op := NewOperation(RunnableFunc(func() {}), nil, nil, "payload")
	assert.Equal(t, "payload", op.UserData())
}
