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
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutionTimeWithErrorReturnsCallbackError(t *testing.T) {
	t.Parallel()

	expected := assert.AnError
	err := ExecutionTimeWithError("metrics_test", func() error {
		return expected
	})
	require.ErrorIs(t, err, expected)
	assert.Positive(t, testutil.CollectAndCount(ExecutionTime))
}

func TestQueueMetricsTrackDepth(t *testing.T) {
	t.Parallel()

	q := NewQueueMetrics("metrics_test_queue")
	q.Inc()
	q.Inc()
	q.Dec()

	assert.InDelta(t, 1, testutil.ToFloat64(queueMetrics.WithLabelValues("metrics_test_queue")), 0)
}

func TestRegistryGathers(t *testing.T) {
	t.Parallel()

	GeneratorDraws.WithLabelValues("basic", "metrics_test").Add(3)

	families, err := Gatherer().Gather()
	require.NoError(t, err)

	names := make(map[string]struct{}, len(families))
	for _, family := range families {
		names[family.GetName()] = struct{}{}
	}
	assert.Contains(t, names, "rngbench_generator_draws")
}
