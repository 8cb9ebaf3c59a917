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

// Package metrics wraps the scheduler's Prometheus instrumentation. Shape
// follows the teacher's metrics.ConcurrentStatistics: a plain struct of
// already-curried counters/gauges, constructed once and passed down into
// the components that mutate it, rather than a global registry look-up
// scattered through the code.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// PoolStatistics instruments a single concurrent.Pool.
type PoolStatistics struct {
	WorkersCreated prometheus.Counter
	WorkersExpired prometheus.Counter
	WorkersBusy    prometheus.Gauge
	RunnablePanics prometheus.Counter
}

// EngineStatistics instruments a single concurrent.Engine.
type EngineStatistics struct {
	OperationsQueued    prometheus.Gauge
	OperationsAdmitted  prometheus.Counter
	OperationsCancelled prometheus.Counter
	OperationsCompleted prometheus.Counter
	OperationsRejected  prometheus.Counter
	WaitDuration        prometheus.Histogram
	ExecDuration        prometheus.Histogram
}

// SchedulerStatistics bundles every metric the scheduler exposes, mirroring
// how the teacher groups its per-subsystem XStatistics structs under one
// constructor so callers register everything in one place.
type SchedulerStatistics struct {
	Pool   *PoolStatistics
	Engine *EngineStatistics

	SystemCPUPercent   prometheus.Gauge
	SystemMemAvailable prometheus.Gauge
	RecommendedWorkers prometheus.Gauge
}

// NewSchedulerStatistics builds a SchedulerStatistics with every metric
// labelled by name, ready to be registered against reg. Passing nil uses
// prometheus.DefaultRegisterer, matching most teacher call sites that
// register straight into the default registry.
func NewSchedulerStatistics(name string, reg prometheus.Registerer) *SchedulerStatistics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	constLabels := prometheus.Labels{"scheduler": name}

	s := &SchedulerStatistics{
		Pool: &PoolStatistics{
			WorkersCreated: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace:   "opscheduler",
				Subsystem:   "pool",
				Name:        "workers_created_total",
				Help:        "Number of worker goroutines ever created.",
				ConstLabels: constLabels,
			}),
			WorkersExpired: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace:   "opscheduler",
				Subsystem:   "pool",
				Name:        "workers_expired_total",
				Help:        "Number of worker goroutines retired by idle-timeout or shutdown.",
				ConstLabels: constLabels,
			}),
			WorkersBusy: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace:   "opscheduler",
				Subsystem:   "pool",
				Name:        "workers_busy",
				Help:        "Number of worker goroutines currently executing a runnable.",
				ConstLabels: constLabels,
			}),
			RunnablePanics: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace:   "opscheduler",
				Subsystem:   "pool",
				Name:        "runnable_panics_total",
				Help:        "Number of runnables recovered from panic.",
				ConstLabels: constLabels,
			}),
		},
		Engine: &EngineStatistics{
			OperationsQueued: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace:   "opscheduler",
				Subsystem:   "engine",
				Name:        "operations_queued",
				Help:        "Number of operations currently pending admission.",
				ConstLabels: constLabels,
			}),
			OperationsAdmitted: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace:   "opscheduler",
				Subsystem:   "engine",
				Name:        "operations_admitted_total",
				Help:        "Number of operations admitted to the pool.",
				ConstLabels: constLabels,
			}),
			OperationsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace:   "opscheduler",
				Subsystem:   "engine",
				Name:        "operations_cancelled_total",
				Help:        "Number of operations cancelled before admission.",
				ConstLabels: constLabels,
			}),
			OperationsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace:   "opscheduler",
				Subsystem:   "engine",
				Name:        "operations_completed_total",
				Help:        "Number of operations whose runnable ran to completion.",
				ConstLabels: constLabels,
			}),
			OperationsRejected: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace:   "opscheduler",
				Subsystem:   "engine",
				Name:        "operations_rejected_total",
				Help:        "Number of operations rejected at enqueue time (e.g. after Stop).",
				ConstLabels: constLabels,
			}),
			WaitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
				Namespace:   "opscheduler",
				Subsystem:   "engine",
				Name:        "operation_wait_seconds",
				Help:        "Time an operation spent queued before admission.",
				ConstLabels: constLabels,
				Buckets:     prometheus.DefBuckets,
			}),
			ExecDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
				Namespace:   "opscheduler",
				Subsystem:   "engine",
				Name:        "operation_exec_seconds",
				Help:        "Time an operation's runnable took to execute.",
				ConstLabels: constLabels,
				Buckets:     prometheus.DefBuckets,
			}),
		},
		SystemCPUPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "opscheduler",
			Subsystem:   "system",
			Name:        "cpu_percent",
			Help:        "Most recently sampled host CPU utilization percentage.",
			ConstLabels: constLabels,
		}),
		SystemMemAvailable: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "opscheduler",
			Subsystem:   "system",
			Name:        "mem_available_bytes",
			Help:        "Most recently sampled host available memory in bytes.",
			ConstLabels: constLabels,
		}),
		RecommendedWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "opscheduler",
			Subsystem:   "system",
			Name:        "recommended_max_workers",
			Help:        "Most recently computed recommendation for maxWorkers.",
			ConstLabels: constLabels,
		}),
	}

	reg.MustRegister(
		s.Pool.WorkersCreated, s.Pool.WorkersExpired, s.Pool.WorkersBusy, s.Pool.RunnablePanics,
		s.Engine.OperationsQueued, s.Engine.OperationsAdmitted, s.Engine.OperationsCancelled,
		s.Engine.OperationsCompleted, s.Engine.OperationsRejected, s.Engine.WaitDuration, s.Engine.ExecDuration,
		s.SystemCPUPercent, s.SystemMemAvailable, s.RecommendedWorkers,
	)
	return s
}
