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

package random

import (
	"sync"
	"testing"

	"github.com/samber/mo"
	"github.com/scylladb/go-set/u64set"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreadLocalWorkersDrawIndependentStreams(t *testing.T) {
	t.Parallel()

	const draws = 10_000

	handles, err := Handles(KindThreadLocal, mo.None[int64](), 2)
	require.NoError(t, err)

	streams := make([][]uint64, len(handles))

	var wg sync.WaitGroup
	for i, g := range handles {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out := make([]uint64, draws)
			for j := range out {
				out[j] = g.Uint64()
			}
			streams[i] = out
		}()
	}
	wg.Wait()

	seen := u64set.New()
	for _, stream := range streams {
		require.Len(t, stream, draws)
		seen.Add(stream...)
	}

	assert.Equal(t, 2*draws, seen.Size(), "duplicate values across thread-local streams")
}
