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

// OperationCollection is a bounded convenience aggregate over a set of
// operations: queue them on an engine as one, interrupt them as one,
// await them as one, and drop the ones that have already stopped. An
// internal exclusive lock guards every mutation and iteration holds it
// for the full pass, matching spec.md §4.8.
//
// The guard is an RWLock keyed on goroutineID(), not a token callers
// supply: RWLock's recursive-exclusive semantics treat two holders of
// the same token as one reentrant owner, so a caller-chosen token (e.g.
// a fixed string shared across goroutines, as is easy to do by
// accident) would silently stop serializing concurrent callers against
// each other. Deriving the token from the actual calling goroutine, the
// same way Engine.CurrentOperation does, removes that footgun: distinct
// goroutines always get distinct tokens, and a goroutine that already
// holds the collection's exclusive lock still gets its recursive-exclusive
// behavior. A runnable queued through the collection runs on a worker
// goroutine and so gets a token of its own.
type OperationCollection struct {
	lock *RWLock
	ops  []*Operation
}

// NewOperationCollection returns an empty collection.
func NewOperationCollection() *OperationCollection {
	return &OperationCollection{lock: NewRWLock()}
}

// Add appends op to the collection.
func (c *OperationCollection) Add(op *Operation) {
	tok := goroutineID()
	c.lock.LockExclusive(tok)
	defer c.lock.UnlockExclusive(tok)
	c.ops = append(c.ops, op)
}

// Remove drops the first occurrence of op from the collection, if
// present.
func (c *OperationCollection) Remove(op *Operation) {
	tok := goroutineID()
	c.lock.LockExclusive(tok)
	defer c.lock.UnlockExclusive(tok)
	for i, existing := range c.ops {
		if existing == op {
			c.ops = append(c.ops[:i], c.ops[i+1:]...)
			return
		}
	}
}

// At returns the operation at index i, for indexed access.
func (c *OperationCollection) At(i int) *Operation {
	tok := goroutineID()
	c.lock.LockShared(tok)
	defer c.lock.UnlockShared(tok)
	return c.ops[i]
}

// Length returns the number of contained operations.
func (c *OperationCollection) Length() int {
	tok := goroutineID()
	c.lock.LockShared(tok)
	defer c.lock.UnlockShared(tok)
	return len(c.ops)
}

// IsEmpty reports whether the collection has no contained operations.
func (c *OperationCollection) IsEmpty() bool {
	return c.Length() == 0
}

// Clear drops every contained operation without interrupting or awaiting
// them.
func (c *OperationCollection) Clear() {
	tok := goroutineID()
	c.lock.LockExclusive(tok)
	defer c.lock.UnlockExclusive(tok)
	c.ops = nil
}

// Iterator returns a snapshot slice of the contained operations, safe to
// range over without holding the collection's lock.
func (c *OperationCollection) Iterator() []*Operation {
	tok := goroutineID()
	c.lock.LockShared(tok)
	defer c.lock.UnlockShared(tok)
	out := make([]*Operation, len(c.ops))
	copy(out, c.ops)
	return out
}

// Queue submits every contained operation to engine.
func (c *OperationCollection) Queue(engine *Engine) {
	tok := goroutineID()
	c.lock.LockShared(tok)
	defer c.lock.UnlockShared(tok)
	for _, op := range c.ops {
		engine.Queue(op)
	}
}

// Interrupt sets the interrupt flag on every contained operation.
func (c *OperationCollection) Interrupt() {
	tok := goroutineID()
	c.lock.LockShared(tok)
	defer c.lock.UnlockShared(tok)
	for _, op := range c.ops {
		op.Interrupt()
	}
}

// WaitFor awaits every contained operation in order. If interruptible and
// ownerInterrupted reports true partway through, it stops awaiting the
// remainder and returns false immediately.
func (c *OperationCollection) WaitFor(interruptible bool, ownerInterrupted func() bool) bool {
	tok := goroutineID()
	c.lock.LockShared(tok)
	defer c.lock.UnlockShared(tok)
	for _, op := range c.ops {
		if interruptible && ownerInterrupted != nil && ownerInterrupted() {
			return false
		}
		if !op.WaitFor(interruptible, ownerInterrupted) {
			return false
		}
	}
	return true
}

// Prune drops every contained operation that has already stopped.
func (c *OperationCollection) Prune() {
	tok := goroutineID()
	c.lock.LockExclusive(tok)
	defer c.lock.UnlockExclusive(tok)
	kept := c.ops[:0]
	for _, op := range c.ops {
		if !op.IsStopped() {
			kept = append(kept, op)
		}
	}
	c.ops = kept
}

// Terminate interrupts every contained operation, awaits all of them
// uninterruptibly, then prunes the (now entirely stopped) collection.
// Callers that own an OperationCollection should call Terminate before
// dropping their last reference to it, the way the source's destructor
// guarantees no contained operation outlives the collection.
func (c *OperationCollection) Terminate() {
	c.Interrupt()
	c.WaitFor(false, nil)
	c.Prune()
}
