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
	"github.com/pkg/errors"
	"github.com/samber/mo"
)

// Handles resolves one handle per worker following the sharing rules of each
// kind: basic and secure workers share one serialised handle, splittable
// workers each own a split of a common root, thread-local workers each get
// their own handle.
func Handles(kind Kind, seed mo.Option[int64], workers int, opts ...Option) ([]*Generator, error) {
	if workers < 1 {
		return nil, errors.Errorf("worker count must be at least 1, got %d", workers)
	}

	out := make([]*Generator, workers)

	switch kind {
	case KindBasic, KindSecure:
		g, err := Resolve(kind, seed, opts...)
		if err != nil {
			return nil, err
		}
		g = g.Shared()
		for i := range out {
			out[i] = g
		}
	case KindSplittable:
		root, err := Resolve(kind, seed, opts...)
		if err != nil {
			return nil, err
		}
		for i := range out {
			if out[i], err = root.Split(); err != nil {
				return nil, err
			}
		}
	case KindThreadLocal:
		for i := range out {
			g, err := Resolve(kind, seed, opts...)
			if err != nil {
				return nil, err
			}
			out[i] = g
		}
	default:
		return nil, errors.Wrapf(ErrUnknownGeneratorKind, "%d", uint8(kind))
	}

	return out, nil
}
