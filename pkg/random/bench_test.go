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
	"sync/atomic"
	"testing"

	"github.com/samber/mo"
)

var benchSink atomic.Int64

func BenchmarkInt32Parallel(b *testing.B) {
	for _, kind := range AllKinds() {
		b.Run(kind.String(), func(b *testing.B) {
			root, err := Resolve(kind, mo.None[int64]())
			if err != nil {
				b.Fatal(err)
			}
			root = root.Shared()

			b.RunParallel(func(pb *testing.PB) {
				g := root
				switch kind {
				case KindSplittable:
					child, splitErr := root.Split()
					if splitErr != nil {
						b.Error(splitErr)
						return
					}
					g = child
				case KindThreadLocal:
					g, _ = Resolve(kind, mo.None[int64]())
				}

				var s int64
				for pb.Next() {
					s += int64(g.Int32())
				}
				benchSink.Add(s)
			})
		})
	}
}

func BenchmarkIntNSequential(b *testing.B) {
	for _, kind := range AllKinds() {
		b.Run(kind.String(), func(b *testing.B) {
			g, err := Resolve(kind, mo.None[int64]())
			if err != nil {
				b.Fatal(err)
			}

			var s int64
			for b.Loop() {
				n, _ := g.IntN(6)
				s += int64(n)
			}
			benchSink.Add(s)
		})
	}
}
