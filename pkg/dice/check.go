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

package dice

import (
	"context"
	"strconv"

	"github.com/pkg/errors"

	"github.com/scylladb/rngbench/pkg/metrics"
	"github.com/scylladb/rngbench/pkg/random"
)

const (
	DefaultSides     = 6
	DefaultThrows    = 1_000_000
	DefaultWorkers   = 4
	DefaultTolerance = 0.01

	// draws between two context checks
	checkEvery = 1 << 16
)

var (
	ErrInvalidSides       = errors.New("dice must have at least one side")
	ErrInvalidThrows      = errors.New("throw count must not be negative")
	ErrDistributionSkewed = errors.New("distribution is skewed")
)

type Result struct {
	Table                 *FrequencyTable `json:"table"`
	Kind                  random.Kind     `json:"kind"`
	Mean                  int64           `json:"mean"`
	MeanAbsoluteDeviation int64           `json:"mean_absolute_deviation"`
}

// Summarize computes the expected count per side and the mean absolute
// deviation from it. Both use truncating integer division.
func Summarize(kind random.Kind, table *FrequencyTable) Result {
	sides := int64(table.Sides())
	mean := table.Total() / sides

	var diff int64
	for side := range table.Sides() {
		d := table.Count(side) - mean
		if d < 0 {
			d = -d
		}
		diff += d
	}

	return Result{
		Kind:                  kind,
		Table:                 table,
		Mean:                  mean,
		MeanAbsoluteDeviation: diff / sides,
	}
}

// DeviationRatio is the mean absolute deviation relative to the expected
// count per side.
func (r Result) DeviationRatio() float64 {
	if r.Mean == 0 {
		return 0
	}
	return float64(r.MeanAbsoluteDeviation) / float64(r.Mean)
}

// Verify fails when the deviation ratio reaches tolerance. A non-positive
// tolerance, or too few throws to expect at least one hit per side, always
// passes.
func (r Result) Verify(tolerance float64) error {
	if tolerance <= 0 || r.Mean == 0 {
		return nil
	}
	if ratio := r.DeviationRatio(); ratio >= tolerance {
		return errors.Wrapf(ErrDistributionSkewed,
			"%s: mean absolute deviation %d is %.4f%% of %d, tolerance %.4f%%",
			r.Kind, r.MeanAbsoluteDeviation, ratio*100, r.Mean, tolerance*100)
	}
	return nil
}

// Roll throws a dice with the given number of sides throws times using g and
// summarises the outcome.
func Roll(ctx context.Context, g *random.Generator, sides, throws int) (Result, error) {
	if sides < 1 {
		return Result{}, errors.Wrapf(ErrInvalidSides, "got %d", sides)
	}
	if throws < 0 {
		return Result{}, errors.Wrapf(ErrInvalidThrows, "got %d", throws)
	}

	table := NewFrequencyTable(sides)

	for i := range throws {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
		}

		side, err := g.IntN(sides)
		if err != nil {
			return Result{}, err
		}
		table.Inc(side)
	}

	if err := g.Err(); err != nil {
		metrics.GeneratorErrors.WithLabelValues(g.Kind().String(), "dice").Inc()
		return Result{}, err
	}

	metrics.GeneratorDraws.WithLabelValues(g.Kind().String(), "dice").Add(float64(throws))

	r := Summarize(g.Kind(), table)
	metrics.DiceDeviation.WithLabelValues(g.Kind().String()).Set(float64(r.MeanAbsoluteDeviation))
	return r, nil
}

// Aggregate merges per-worker results into one summary.
func Aggregate(results []Result) (Result, error) {
	if len(results) == 0 {
		return Result{}, errors.New("no results to aggregate")
	}

	table := NewFrequencyTable(results[0].Table.Sides())
	for i, r := range results {
		if err := table.Merge(r.Table); err != nil {
			return Result{}, errors.Wrap(err, "worker "+strconv.Itoa(i))
		}
	}
	return Summarize(results[0].Kind, table), nil
}
