// Copyright 2025 ScyllaDB
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package throughput

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/scylladb/rngbench/pkg/metrics"
	"github.com/scylladb/rngbench/pkg/random"
	"github.com/scylladb/rngbench/pkg/utils"
)

// sink keeps the drawn values observable so the draw loop is not optimised
// away.
var sink atomic.Int32

// Run measures how many Int32 draws per second cfg.Threads workers achieve on
// generators of cfg.Kind. Warmup iterations are executed and discarded.
// The first error aborts the run.
func Run(ctx context.Context, cfg Config, logger *zap.Logger, opts ...random.Option) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.Stringer("kind", cfg.Kind), zap.Int("threads", cfg.Threads))

	opts = append([]random.Option{random.WithLogger(logger)}, opts...)
	if cfg.Strong {
		opts = append(opts, random.WithStrong())
	}

	handles, err := random.Handles(cfg.Kind, cfg.Seed, cfg.Threads, opts...)
	if err != nil {
		metrics.GeneratorErrors.WithLabelValues(cfg.Kind.String(), "throughput").Inc()
		return Result{}, err
	}

	threads := strconv.Itoa(cfg.Threads)

	for i := range cfg.WarmupIterations {
		score, err := measure(ctx, cfg, handles)
		if err != nil {
			return Result{}, err
		}
		metrics.ThroughputScore.WithLabelValues(cfg.Kind.String(), threads, "warmup").Set(score)
		logger.Debug("warmup iteration", zap.Int("iteration", i+1), zap.Float64("ops_per_second", score))
	}

	samples := make([]float64, 0, cfg.MeasuredIterations)
	for i := range cfg.MeasuredIterations {
		score, err := measure(ctx, cfg, handles)
		if err != nil {
			return Result{}, err
		}
		samples = append(samples, score)
		metrics.ThroughputScore.WithLabelValues(cfg.Kind.String(), threads, "measurement").Set(score)
		logger.Info("measured iteration", zap.Int("iteration", i+1), zap.Float64("ops_per_second", score))
	}

	return Summarize(cfg.Kind, cfg.Threads, samples), nil
}

func measure(ctx context.Context, cfg Config, handles []*random.Generator) (float64, error) {
	var score float64

	err := metrics.ExecutionTimeWithError("throughput_iteration", func() error {
		var err error
		score, err = iterate(ctx, handles, cfg.IterationTime)
		return err
	})
	if err != nil {
		metrics.GeneratorErrors.WithLabelValues(cfg.Kind.String(), "throughput").Inc()
	}
	return score, err
}

// iterate releases every worker at once, lets them draw until the iteration
// time is up and returns the achieved operations per second.
func iterate(ctx context.Context, handles []*random.Generator, d time.Duration) (float64, error) {
	var (
		stop  atomic.Bool
		ops   atomic.Int64
		start = make(chan struct{})
	)

	g, gctx := errgroup.WithContext(ctx)

	for _, h := range handles {
		g.Go(func() error {
			<-start

			var (
				n int64
				s int32
			)
			for !stop.Load() {
				s += h.Int32()
				n++
			}

			ops.Add(n)
			sink.Add(s)
			metrics.GeneratorDraws.WithLabelValues(h.Kind().String(), "throughput").Add(float64(n))
			return h.Err()
		})
	}

	began := time.Now()
	close(start)

	timer := utils.GetTimer(d)
	select {
	case <-timer.C:
	case <-gctx.Done():
	}
	utils.PutTimer(timer)
	stop.Store(true)

	err := g.Wait()
	elapsed := time.Since(began)

	if err != nil {
		return 0, err
	}
	if err = ctx.Err(); err != nil {
		return 0, err
	}

	return float64(ops.Load()) / elapsed.Seconds(), nil
}
