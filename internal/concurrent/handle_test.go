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

	"github.com/stretchr/testify/assert"
)

func TestHandle_NullSentinel(t *testing.T) {
	var h Handle[int]
	assert.True(t, h.IsNil())
	assert.Equal(t, int64(0), h.RefCount())
	assert.Equal(t, uintptr(0), h.Ptr())
	h.Release() // no-op, must not panic
}

func TestHandle_RetainRelease(t *testing.T) {
	var zeroed bool
	h := NewHandle(42, func(v *int) { zeroed = true })
	assert.False(t, h.IsNil())
	assert.Equal(t, int64(1), h.RefCount())
	assert.Equal(t, 42, *h.Get())

	h2 := h.Retain()
	assert.Equal(t, int64(2), h.RefCount())

	h2.Release()
	assert.Equal(t, int64(1), h.RefCount())
	assert.False(t, zeroed)

	h.Release()
	assert.True(t, zeroed)
}

func TestHandle_PtrIdentity(t *testing.T) {
	h := NewHandle("x", nil)
	h2 := h.Retain()
	assert.Equal(t, h.Ptr(), h2.Ptr())

	other := NewHandle("x", nil)
	assert.NotEqual(t, h.Ptr(), other.Ptr())
}
