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

package metrics

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registerer = prometheus.NewRegistry()

var (
	ExecutionTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "execution_time",
			Help:    "Time taken to execute a task, in microseconds.",
			Buckets: []float64{1, 10, 100, 1000, 10_000, 100_000, 500_000, 1_000_000, 2_000_000, 5_000_000, 10_000_000, 30_000_000},
		},
		[]string{"task"},
	)

	GeneratorDraws = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generator_draws",
			Help: "Number of values drawn from generators.",
		},
		[]string{"kind", "mode"},
	)

	GeneratorErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generator_errors",
			Help: "Number of runs aborted by a generator failure.",
		},
		[]string{"kind", "mode"},
	)

	ThroughputScore = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "throughput_ops_per_second",
			Help: "Operations per second of the last completed iteration.",
		},
		[]string{"kind", "threads", "phase"},
	)

	DiceDeviation = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dice_mean_absolute_deviation",
			Help: "Mean absolute deviation of the last dice sanity check.",
		},
		[]string{"kind"},
	)

	Information = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "information",
		},
		[]string{"ty"},
	)
)

func init() {
	r := prometheus.WrapRegistererWithPrefix("rngbench_", registerer)

	r.MustRegister(queueMetrics, ExecutionTime)

	r.MustRegister(
		GeneratorDraws,
		GeneratorErrors,
		ThroughputScore,
		DiceDeviation,
		Information,
	)

	r.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{
			ReportErrors: true,
			PidFn: func() (int, error) {
				return os.Getpid(), nil
			},
		}),
		collectors.NewBuildInfoCollector(),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "go_goroutines_count",
			Help: "Number of goroutines currently active.",
		}, func() float64 {
			return float64(runtime.NumGoroutine())
		}),
	)
}

// Gatherer exposes the private registry, mostly for tests.
func Gatherer() prometheus.Gatherer {
	return registerer
}

// StartMetricsServer serves /metrics on bind until ctx is done. An empty bind
// disables the server.
func StartMetricsServer(ctx context.Context, bind string) {
	if bind == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.InstrumentMetricHandler(
		registerer, promhttp.HandlerFor(registerer, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			Registry:          registerer,
		}),
	))

	server := &http.Server{
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      1 * time.Minute,
		Handler:           mux,
		Addr:              bind,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(errors.Wrapf(err, "failed to start metrics server on %s", bind))
		}
	}()

	go func() {
		<-ctx.Done()
		if err := server.Shutdown(context.Background()); err != nil {
			log.Println(err)
		}
	}()
}

func ExecutionTimeWithError(task string, callback func() error) error {
	start := time.Now()
	err := callback()
	ExecutionTime.
		WithLabelValues(task).
		Observe(float64(time.Since(start).Nanoseconds()) / 1e3)

	return err
}
