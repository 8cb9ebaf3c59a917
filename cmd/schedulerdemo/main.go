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

// Command schedulerdemo is a small harness exercising the operation
// scheduler end to end: it boots an Engine over a Pool, queues a batch
// of guarded operations, and logs their completion, the way
// the teacher's cmd/lind standalone command boots a runtime from a
// loaded config.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v7"
	"github.com/lindb/common/pkg/fileutil"
	"github.com/lindb/common/pkg/ltoml"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"

	"github.com/lindb/common/pkg/logger"

	"github.com/lindb/opscheduler/config"
	"github.com/lindb/opscheduler/internal/concurrent"
	"github.com/lindb/opscheduler/internal/metrics"
	"github.com/lindb/opscheduler/internal/monitoring"
)

const defaultCfgFile = "./opscheduler.toml"

var cfgFile string

var demoLogger = logger.GetLogger("Cmd", "SchedulerDemo")

func main() {
	root := &cobra.Command{
		Use:   "schedulerdemo",
		Short: "Run a demonstration of the operation scheduler",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "",
		fmt.Sprintf("config file path, default is %s", defaultCfgFile))

	root.AddCommand(runCmd, initConfigCmd)

	if err := root.Execute(); err != nil {
		demoLogger.Error("schedulerdemo exited with error", logger.Error(err))
		os.Exit(1)
	}
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "write a new default config file",
	RunE: func(_ *cobra.Command, _ []string) error {
		path := cfgFile
		if path == "" {
			path = defaultCfgFile
		}
		if fileutil.Exist(path) {
			return fmt.Errorf("config file %s already exists", path)
		}
		return ltoml.WriteConfig(path, config.NewDefaultScheduler())
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "run the scheduler demo scenario",
	RunE:  runDemo,
}

func runDemo(_ *cobra.Command, _ []string) error {
	ctx := contextWithSignals()

	cfg := config.NewDefaultScheduler()
	path := cfgFile
	if path == "" {
		path = defaultCfgFile
	}
	if fileutil.Exist(path) {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return fmt.Errorf("load config error: %s", err)
		}
	}
	// environment variables take precedence over file/default values,
	// matching the teacher's layered-config convention.
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "OPSCHEDULER_"}); err != nil {
		return fmt.Errorf("parse env config error: %s", err)
	}

	stats := metrics.NewSchedulerStatistics("demo", prometheus.NewRegistry())

	pool := concurrent.NewPool("demo", cfg.MaxWorkers, time.Duration(cfg.WorkerExpireTime), stats.Pool)
	engine := concurrent.NewEngine("demo", pool, stats.Engine, 0)
	engine.Start()
	defer engine.Stop()

	collector := monitoring.NewSystemCollector(ctx, time.Duration(cfg.Reporting.PushInterval), stats)
	go collector.Run()

	demoLogger.Info("scheduler demo starting", logger.Int("maxWorkers", cfg.MaxWorkers))
	runScenario(engine)

	<-ctx.Done()
	demoLogger.Info("scheduler demo stopping")
	return nil
}

// runScenario reproduces spec scenario S1/S2: a batch of independent
// operations admitted immediately, plus one gated behind a guard that
// only opens once every prior operation has completed.
func runScenario(engine *concurrent.Engine) {
	var wg sync.WaitGroup
	var completed atomic.Int32
	const batch = 8

	for i := 0; i < batch; i++ {
		i := i
		wg.Add(1)
		op := concurrent.NewOperation(
			concurrent.RunnableFunc(func() {
				defer wg.Done()
				time.Sleep(50 * time.Millisecond)
				completed.Add(1)
				demoLogger.Info("operation finished", logger.Int("index", i))
			}),
			nil, nil, i,
		)
		engine.Queue(op)
	}

	gated := concurrent.NewOperation(
		concurrent.RunnableFunc(func() {
			demoLogger.Info("gated operation finally ran")
		}),
		gateUntil(func() bool { return completed.Load() >= batch }),
		nil, nil,
	)
	engine.Queue(gated)

	wg.Wait()
}

// gateUntil adapts a plain predicate into a Guard that admits once ready
// reports true and never forces cancellation.
type gateUntil func() bool

func (g gateUntil) CanExecute(*concurrent.Operation) bool { return g() }
func (g gateUntil) MustCancel(*concurrent.Operation) bool { return false }

func contextWithSignals() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	go func() {
		// demo scenario is self-terminating; give it a bounded lifetime
		// so the process exits even without an external signal.
		time.Sleep(2 * time.Second)
		cancel()
	}()
	return ctx
}
