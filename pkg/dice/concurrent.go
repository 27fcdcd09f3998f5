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

	"github.com/pkg/errors"
	"github.com/samber/mo"

	"github.com/scylladb/rngbench/pkg/random"
	"github.com/scylladb/rngbench/pkg/workpool"
)

// RollConcurrent runs one full check per handle on pool and returns the
// per-worker results in handle order. The first failure cancels the checks
// still running and is returned as is.
func RollConcurrent(
	ctx context.Context,
	pool *workpool.Pool,
	handles []*random.Generator,
	sides, throws int,
) ([]Result, error) {
	if len(handles) == 0 {
		return nil, errors.New("at least one generator handle is required")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	channels := make([]chan mo.Result[any], len(handles))
	for i, g := range handles {
		channels[i] = pool.Send(ctx, func(ctx context.Context) (any, error) {
			return Roll(ctx, g, sides, throws)
		})
	}

	var firstErr error
	results := make([]Result, 0, len(handles))

	for _, ch := range channels {
		res := <-ch
		pool.Release(ch)

		if res.IsError() {
			if firstErr == nil {
				firstErr = res.Error()
				cancel()
			}
			continue
		}

		results = append(results, res.MustGet().(Result))
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}
