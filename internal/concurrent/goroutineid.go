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
	"runtime"
	"strconv"
	"strings"
)

// goroutineID extracts the calling goroutine's runtime id from its stack
// trace header ("goroutine 123 [running]: ..."). Go has no public
// goroutine-local storage, so Engine.CurrentOperation uses this as the
// stand-in for the source's worker-bound thread-local: the id is only
// ever used as an opaque map key, never compared across processes or
// relied on for anything but identifying "the same goroutine that is
// asking".
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	field := strings.Fields(string(buf[:n]))
	if len(field) < 2 {
		return 0
	}
	id, err := strconv.ParseInt(field[1], 10, 64)
	if err != nil {
		return 0
	}
	return id
}
