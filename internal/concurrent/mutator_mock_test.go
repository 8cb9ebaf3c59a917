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

	"go.uber.org/mock/gomock"
)

func TestEngine_MutatorHooksRunAroundRunnable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	pool := NewPool("test", 0, time.Minute, nil)
	engine := NewEngine("test", pool, nil, 0)
	engine.Start()
	defer engine.Stop()

	mutator := NewMockStateMutator(ctrl)
	guard := NewMockGuard(ctrl)

	gomock.InOrder(
		guard.EXPECT().CanExecute(gomock.Any()).Return(true),
		mutator.EXPECT().MutatePre(gomock.Any()),
		mutator.EXPECT().MutatePost(gomock.Any()),
	)

	op := NewOperation(RunnableFunc(func() {}), guard, mutator, nil)
	engine.Queue(op)
	if !op.WaitFor(false, nil) {
		t.Fatal("operation never stopped")
	}
}
