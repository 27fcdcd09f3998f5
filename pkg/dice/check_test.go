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
	"bytes"
	"context"
	"encoding/binary"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/scylladb/rngbench/pkg/random"
	"github.com/scylladb/rngbench/pkg/workpool"
)

func tableOf(counts ...int64) *FrequencyTable {
	t := NewFrequencyTable(len(counts))
	copy(t.counts, counts)
	return t
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		table        *FrequencyTable
		name         string
		expectedMean int64
		expectedMAD  int64
	}{
		{name: "balanced", table: tableOf(10, 10, 10), expectedMean: 10, expectedMAD: 0},
		{name: "skewed", table: tableOf(10, 12, 8, 10, 11, 9), expectedMean: 10, expectedMAD: 1},
		{name: "truncating", table: tableOf(3, 3, 1), expectedMean: 2, expectedMAD: 1},
		{name: "empty", table: tableOf(0, 0, 0, 0, 0, 0), expectedMean: 0, expectedMAD: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r := Summarize(random.KindBasic, tc.table)
			assert.Equal(t, tc.expectedMean, r.Mean)
			assert.Equal(t, tc.expectedMAD, r.MeanAbsoluteDeviation)
		})
	}
}

func TestVerify(t *testing.T) {
	t.Parallel()

	r := Summarize(random.KindBasic, tableOf(90, 110, 100, 100))
	require.InDelta(t, 0.05, r.DeviationRatio(), 1e-9)

	require.NoError(t, r.Verify(0.10))
	require.NoError(t, r.Verify(0))

	err := r.Verify(0.01)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDistributionSkewed))

	assert.NoError(t, Summarize(random.KindBasic, tableOf(1, 0, 0, 0, 0, 0)).Verify(0.01))
}

func TestTableStringAndMerge(t *testing.T) {
	t.Parallel()

	table := tableOf(1, 2, 3)
	require.NoError(t, table.Merge(tableOf(1, 1, 1)))

	if diff := cmp.Diff("{0=2, 1=3, 2=4}", table.String()); diff != "" {
		t.Error(diff)
	}
	assert.Equal(t, int64(9), table.Total())
	assert.Error(t, table.Merge(tableOf(1, 1)))
}

func TestRollIsReproducibleWithSeed(t *testing.T) {
	t.Parallel()

	roll := func() Result {
		g, err := random.Resolve(random.KindBasic, mo.Some[int64](42))
		require.NoError(t, err)
		r, err := Roll(t.Context(), g, DefaultSides, 10_000)
		require.NoError(t, err)
		return r
	}

	first, second := roll(), roll()
	assert.Equal(t, first.Table.Counts(), second.Table.Counts())
	assert.Equal(t, int64(10_000), first.Table.Total())
	assert.Equal(t, int64(10_000/DefaultSides), first.Mean)
}

func TestRollRejectsInvalidArguments(t *testing.T) {
	t.Parallel()

	g, err := random.Resolve(random.KindBasic, mo.Some[int64](1))
	require.NoError(t, err)

	_, err = Roll(t.Context(), g, 0, 10)
	assert.True(t, errors.Is(err, ErrInvalidSides))

	_, err = Roll(t.Context(), g, 6, -1)
	assert.True(t, errors.Is(err, ErrInvalidThrows))
}

func TestRollStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	g, err := random.Resolve(random.KindSplittable, mo.Some[int64](1))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err = Roll(ctx, g, DefaultSides, DefaultThrows)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRollSurfacesEntropyFailure(t *testing.T) {
	t.Parallel()

	entropy := make([]byte, 32, 48)
	entropy = binary.LittleEndian.AppendUint64(entropy, 1)
	entropy = binary.LittleEndian.AppendUint64(entropy, 2)

	g, err := random.Resolve(random.KindSecure, mo.None[int64](),
		random.WithEntropy(bytes.NewReader(entropy)), random.WithStrong())
	require.NoError(t, err)

	_, err = Roll(t.Context(), g, DefaultSides, 100)
	require.Error(t, err)
	assert.True(t, errors.Is(err, random.ErrGeneratorUnavailable), err.Error())
}

func TestDistributionIsUniformForEveryKind(t *testing.T) {
	if testing.Short() {
		t.Skip("one million draws per kind")
	}
	t.Parallel()

	for _, kind := range random.AllKinds() {
		t.Run(kind.String(), func(t *testing.T) {
			t.Parallel()

			g, err := random.Resolve(kind, mo.None[int64]())
			require.NoError(t, err)

			r, err := Roll(t.Context(), g, DefaultSides, DefaultThrows)
			require.NoError(t, err)
			assert.Equal(t, int64(DefaultThrows), r.Table.Total())
			require.NoError(t, r.Verify(DefaultTolerance), r.Table.String())
		})
	}
}

func TestRollConcurrent(t *testing.T) {
	t.Parallel()

	const throws = 60_000

	pool := workpool.New("dice_test", DefaultWorkers, zaptest.NewLogger(t))
	defer pool.Close()

	for _, kind := range random.AllKinds() {
		handles, err := random.Handles(kind, mo.None[int64](), DefaultWorkers)
		require.NoError(t, err)

		results, err := RollConcurrent(t.Context(), pool, handles, DefaultSides, throws)
		require.NoError(t, err, kind.String())
		require.Len(t, results, DefaultWorkers)

		for _, r := range results {
			assert.Equal(t, int64(throws), r.Table.Total())
			assert.Equal(t, kind, r.Kind)
		}

		total, err := Aggregate(results)
		require.NoError(t, err)
		assert.Equal(t, int64(throws*DefaultWorkers), total.Table.Total())
		assert.Equal(t, int64(throws*DefaultWorkers/DefaultSides), total.Mean)
	}
}

func TestRollConcurrentPropagatesFailure(t *testing.T) {
	t.Parallel()

	pool := workpool.New("dice_test", 2, zaptest.NewLogger(t))
	defer pool.Close()

	good, err := random.Resolve(random.KindBasic, mo.Some[int64](3))
	require.NoError(t, err)

	_, err = RollConcurrent(t.Context(), pool, []*random.Generator{good, good.Shared()}, 0, 10)
	assert.True(t, errors.Is(err, ErrInvalidSides))

	_, err = RollConcurrent(t.Context(), pool, nil, DefaultSides, 10)
	assert.Error(t, err)
}

func TestPrint(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Print(&buf, "basic", Summarize(random.KindBasic, tableOf(10, 12, 8, 10, 11, 9))))

	snaps.MatchSnapshot(t, buf.String(), "basic")

	buf.Reset()
	require.NoError(t, Print(&buf, "secure total", Summarize(random.KindSecure, tableOf(0, 0))))
	snaps.MatchSnapshot(t, buf.String(), "empty")
}
