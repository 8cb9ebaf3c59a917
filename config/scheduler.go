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

// Package config holds the scheduler's typed, TOML/env-loadable
// configuration, in the shape the teacher codebase uses throughout its
// config package (struct tags plus a TOML() self-documenting dump and a
// NewDefaultX constructor).
package config

import (
	"fmt"
	"time"

	"github.com/lindb/common/pkg/ltoml"
)

// Reporting controls the demo binary's periodic host-sampling cadence
// (the SystemCollector interval), adapted from the teacher's Monitor
// config (push/report interval pattern) down to the single cadence this
// module actually needs: no protocol push target, since that surface is
// out of scope here.
type Reporting struct {
	PushInterval ltoml.Duration `env:"PUSH_INTERVAL" toml:"push-interval"`
}

// TOML returns Reporting's toml fragment.
func (r *Reporting) TOML() string {
	return fmt.Sprintf(`
## how often the demo binary samples host CPU/memory for worker sizing
## Default: %s
## Env: OPSCHEDULER_REPORTING_PUSH_INTERVAL
push-interval = "%s"`,
		r.PushInterval.String(), r.PushInterval.String())
}

// Scheduler is the scheduler's full configuration surface.
type Scheduler struct {
	MaxWorkers       int            `env:"MAX_WORKERS" toml:"max-workers"`
	WorkerExpireTime ltoml.Duration `env:"WORKER_EXPIRE_TIME" toml:"worker-expire-time"`
	SemaphoreFair    bool           `env:"SEMAPHORE_FAIR" toml:"semaphore-fair"`
	Reporting        Reporting      `envPrefix:"REPORTING_" toml:"reporting"`
}

// TOML returns Scheduler's self-documenting toml dump, the same shape as
// config.TSDB/config.Monitor's TOML() methods in the teacher.
func (s *Scheduler) TOML() string {
	return fmt.Sprintf(`
## Config for the Operation Scheduler
[scheduler]
## maximum number of live worker goroutines; 0 means unbounded
## Default: %d
## Env: OPSCHEDULER_MAX_WORKERS
max-workers = %d
## idle timeout after which an unused worker goroutine is retired
## Default: %s
## Env: OPSCHEDULER_WORKER_EXPIRE_TIME
worker-expire-time = "%s"
## fair (arrival-order) wake flag; the demo binary does not pass it to
## the pool, whose capacity semaphore always wakes any one waiter
## Default: %v
## Env: OPSCHEDULER_SEMAPHORE_FAIR
semaphore-fair = %v
%s`,
		s.MaxWorkers, s.MaxWorkers,
		s.WorkerExpireTime.String(), s.WorkerExpireTime.String(),
		s.SemaphoreFair, s.SemaphoreFair,
		s.Reporting.TOML(),
	)
}

// NewDefaultScheduler returns a Scheduler with reasonable defaults: 0
// (unbounded) workers, a 60s idle expiry, SemaphoreFair set to true, and
// a 30s host-sampling cadence.
func NewDefaultScheduler() *Scheduler {
	return &Scheduler{
		MaxWorkers:       0,
		WorkerExpireTime: ltoml.Duration(60 * time.Second),
		SemaphoreFair:    true,
		Reporting: Reporting{
			PushInterval: ltoml.Duration(30 * time.Second),
		},
	}
}
