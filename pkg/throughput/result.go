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
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/scylladb/rngbench/pkg/random"
)

// Confidence of the reported score error.
const Confidence = 0.999

type Result struct {
	Samples    []float64   `json:"samples"`
	Kind       random.Kind `json:"kind"`
	Threads    int         `json:"threads"`
	Forks      int         `json:"forks"`
	Score      float64     `json:"score"`
	ScoreError float64     `json:"score_error"`
	StdDev     float64     `json:"std_dev"`
	Min        float64     `json:"min"`
	Max        float64     `json:"max"`
}

// Summarize turns measured ops/s samples into a score: their mean, with the
// half-width of the Student-t confidence interval as the error.
func Summarize(kind random.Kind, threads int, samples []float64) Result {
	r := Result{
		Kind:    kind,
		Threads: threads,
		Samples: samples,
	}

	n := len(samples)
	if n == 0 {
		return r
	}

	r.Min = floats.Min(samples)
	r.Max = floats.Max(samples)

	if n == 1 {
		r.Score = samples[0]
		return r
	}

	r.Score, r.StdDev = stat.MeanStdDev(samples, nil)

	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
	r.ScoreError = t.Quantile(1-(1-Confidence)/2) * r.StdDev / math.Sqrt(float64(n))

	return r
}

// Merge pools the samples of several forks of the same configuration.
func Merge(results ...Result) (Result, error) {
	if len(results) == 0 {
		return Result{}, errors.New("no results to merge")
	}

	first := results[0]
	samples := make([]float64, 0, len(first.Samples)*len(results))

	for _, r := range results {
		if r.Kind != first.Kind || r.Threads != first.Threads {
			return Result{}, errors.Errorf(
				"can not merge %s/%d threads with %s/%d threads",
				r.Kind, r.Threads, first.Kind, first.Threads,
			)
		}
		samples = append(samples, r.Samples...)
	}

	merged := Summarize(first.Kind, first.Threads, samples)
	merged.Forks = len(results)
	return merged, nil
}
