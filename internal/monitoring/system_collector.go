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

// Package monitoring samples host resource usage for the scheduler's
// system-aware sizing feature (SPEC_FULL.md item 12): a periodic
// collector feeds CPU/memory gauges and recomputes a recommended
// maxWorkers value, the way the teacher's own system collector feeds
// its SystemStatistics on a ticker.
package monitoring

import (
	"context"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/lindb/common/pkg/logger"

	"github.com/lindb/opscheduler/internal/metrics"
)

var monitoringLogger = logger.GetLogger("Monitoring", "SystemCollector")

// defaultCollectInterval is how often SystemCollector re-samples the host.
const defaultCollectInterval = 10 * time.Second

// bytesPerRecommendedWorker is the rule of thumb used to translate
// available memory into a worker-count recommendation: assume each
// worker's working set costs roughly this much headroom, the same kind
// of coarse, overridable heuristic the teacher's capacity planning notes
// use rather than anything workload-specific.
const bytesPerRecommendedWorker = 64 * 1024 * 1024

// SystemCollector periodically samples host CPU and memory usage via
// gopsutil and publishes them, plus a derived worker-count recommendation,
// onto a SchedulerStatistics. The *StatGetter fields are public so tests
// can substitute failure-injecting stand-ins the way the teacher's own
// collector tests swap its getters.
type SystemCollector struct {
	ctx      context.Context
	interval time.Duration
	stats    *metrics.SchedulerStatistics

	CPUStatGetter    func() (float64, error)
	MemoryStatGetter func() (*mem.VirtualMemoryStat, error)

	recommended int
}

// NewSystemCollector returns a SystemCollector that samples every
// interval until ctx is cancelled. interval <= 0 uses
// defaultCollectInterval.
func NewSystemCollector(ctx context.Context, interval time.Duration, stats *metrics.SchedulerStatistics) *SystemCollector {
	if interval <= 0 {
		interval = defaultCollectInterval
	}
	return &SystemCollector{
		ctx:              ctx,
		interval:         interval,
		stats:            stats,
		CPUStatGetter:    GetCPUPercent,
		MemoryStatGetter: mem.VirtualMemory,
		recommended:      runtime.GOMAXPROCS(0),
	}
}

// Run blocks, sampling on every tick until ctx is cancelled.
func (c *SystemCollector) Run() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	c.collect()
	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.ctx.Done():
			return
		}
	}
}

// RecommendedMaxWorkers returns the most recently computed recommendation
// for Engine.SetMaxWorkers, seeded at runtime.GOMAXPROCS(0) before the
// first successful sample.
func (c *SystemCollector) RecommendedMaxWorkers() int {
	return c.recommended
}

func (c *SystemCollector) collect() {
	if cpuPercent, err := c.CPUStatGetter(); err != nil {
		monitoringLogger.Error("collect cpu stat failure", logger.Error(err))
	} else if c.stats != nil {
		c.stats.SystemCPUPercent.Set(cpuPercent)
	}

	var available uint64
	if memStat, err := c.MemoryStatGetter(); err != nil {
		monitoringLogger.Error("collect memory stat failure", logger.Error(err))
	} else {
		available = memStat.Available
		if c.stats != nil {
			c.stats.SystemMemAvailable.Set(float64(available))
		}
	}

	if available > 0 {
		byMemory := int(available / bytesPerRecommendedWorker)
		byCPU := runtime.GOMAXPROCS(0) * 4
		c.recommended = minInt(byMemory, byCPU)
		if c.recommended < 1 {
			c.recommended = 1
		}
	}
	if c.stats != nil {
		c.stats.RecommendedWorkers.Set(float64(c.recommended))
	}
}

// GetCPUPercent returns total host CPU utilization since the previous
// call (gopsutil's zero-interval mode). It is the default CPUStatGetter.
func GetCPUPercent() (float64, error) {
	percents, err := cpu.Percent(0, false)
	if err != nil {
		return 0, err
	}
	if len(percents) == 0 {
		return 0, nil
	}
	return percents[0], nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
