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

//go:generate mockgen -source=./capabilities.go -destination=./capabilities_mock.go -package=concurrent

// Runnable is arbitrary user code executed by a worker. Implementations
// that are long-running should poll the owning Engine's
// CurrentOperation() at sensible boundaries to observe cooperative
// cancellation; the scheduler never preempts.
type Runnable interface {
	Run()
}

// RunnableFunc adapts a plain func() to a Runnable.
type RunnableFunc func()

// Run implements Runnable.
func (f RunnableFunc) Run() { f() }

// Guard is queried by the engine to decide admission and cancellation for
// an operation still in the pending FIFO. Both methods must be pure with
// respect to the calling goroutine's state: they may read guard state
// under their own discipline, but must not block.
type Guard interface {
	// CanExecute reports whether op may be admitted to the pool right now.
	CanExecute(op *Operation) bool
	// MustCancel reports whether op must be abandoned rather than left
	// waiting in the FIFO.
	MustCancel(op *Operation) bool
}

// StateMutator is invoked by the engine immediately before an admitted
// operation's runnable starts (MutatePre) and immediately after it
// returns (MutatePost), both under the engine's lock. Implementations
// must be short and non-blocking; mutators are not permitted to fail.
type StateMutator interface {
	MutatePre(op *Operation)
	MutatePost(op *Operation)
}

// trivialGuard always admits and never cancels, letting an Engine degrade
// to a plain FIFO job dispatcher (spec's "Job dispatcher" component is
// exactly an Engine built with this guard).
type trivialGuard struct{}

func (trivialGuard) CanExecute(*Operation) bool { return true }
func (trivialGuard) MustCancel(*Operation) bool { return false }

// noopMutator is the default StateMutator: both hooks are no-ops.
type noopMutator struct{}

func (noopMutator) MutatePre(*Operation)  {}
func (noopMutator) MutatePost(*Operation) {}
