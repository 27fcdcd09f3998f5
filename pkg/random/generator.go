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
	"encoding/binary"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

type nopLocker struct{}

func (nopLocker) Lock()   {}
func (nopLocker) Unlock() {}

// Generator is a handle over one pseudo-random stream. A handle returned by
// Resolve is not safe for concurrent use unless its kind guards itself
// (secure) or has no state (thread-local); use Shared to serialise access.
type Generator struct {
	rnd  *rand.Rand
	mu   sync.Locker
	err  func() error
	kind Kind
}

func newGenerator(kind Kind, src rand.Source) *Generator {
	return &Generator{
		kind: kind,
		rnd:  rand.New(src),
		mu:   nopLocker{},
	}
}

func (g *Generator) Kind() Kind {
	return g.kind
}

// Shared returns a handle over the same stream whose every draw holds a
// mutex. The receiver must not be used directly afterwards.
func (g *Generator) Shared() *Generator {
	if _, ok := g.mu.(nopLocker); !ok {
		return g
	}

	return &Generator{
		kind: g.kind,
		rnd:  g.rnd,
		mu:   &sync.Mutex{},
		err:  g.err,
	}
}

// Split derives an independent splittable stream keyed from the next 256
// bits of the receiver.
func (g *Generator) Split() (*Generator, error) {
	if g.kind != KindSplittable {
		return nil, errors.Wrapf(ErrUnsupportedOperation, "%s generators can not be split", g.kind)
	}

	var key [32]byte

	g.mu.Lock()
	for i := 0; i < len(key); i += 8 {
		binary.LittleEndian.PutUint64(key[i:], g.rnd.Uint64())
	}
	g.mu.Unlock()

	return newGenerator(KindSplittable, rand.NewChaCha8(key)), nil
}

// Err reports a failure of the underlying entropy source, if any.
func (g *Generator) Err() error {
	if g.err == nil {
		return nil
	}
	return g.err()
}

func (g *Generator) Uint64() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Uint64()
}

// Int32 returns a value over the full signed 32-bit range.
func (g *Generator) Int32() int32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return int32(g.rnd.Uint32())
}

func (g *Generator) Bool() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Uint64()>>63 == 1
}

// IntN returns a value in [0, bound).
func (g *Generator) IntN(bound int) (int, error) {
	if bound <= 0 {
		return 0, errors.Wrapf(ErrInvalidRange, "bound %d must be positive", bound)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.IntN(bound), nil
}

// IntRange returns a value in [minimum, maximum).
func (g *Generator) IntRange(minimum, maximum int) (int, error) {
	v, err := g.Int64Range(int64(minimum), int64(maximum))
	return int(v), err
}

// Int64Range returns a value in [minimum, maximum).
func (g *Generator) Int64Range(minimum, maximum int64) (int64, error) {
	if err := checkRange(minimum, maximum); err != nil {
		return 0, err
	}

	// the difference always fits into uint64 even when it overflows int64
	span := uint64(maximum) - uint64(minimum)

	g.mu.Lock()
	defer g.mu.Unlock()
	return minimum + int64(g.rnd.Uint64N(span)), nil
}

// Float64Range returns a value in [minimum, maximum).
func (g *Generator) Float64Range(minimum, maximum float64) (float64, error) {
	if err := checkFloatRange(minimum, maximum); err != nil {
		return 0, err
	}

	g.mu.Lock()
	f := g.rnd.Float64()
	g.mu.Unlock()

	// interpolating keeps ranges wider than MaxFloat64 finite
	return clampFloat(minimum*(1-f)+maximum*f, minimum, maximum), nil
}

// Float32Range returns a value in [minimum, maximum).
func (g *Generator) Float32Range(minimum, maximum float32) (float32, error) {
	if err := checkFloatRange(minimum, maximum); err != nil {
		return 0, err
	}

	g.mu.Lock()
	f := float64(g.rnd.Float32())
	g.mu.Unlock()

	v := float32(float64(minimum)*(1-f) + float64(maximum)*f)
	if v >= maximum {
		return math.Nextafter32(maximum, minimum), nil
	}
	return max(v, minimum), nil
}

func checkRange[T constraints.Integer | constraints.Float](minimum, maximum T) error {
	if !(minimum < maximum) {
		return errors.Wrapf(ErrInvalidRange, "min %v must be less than max %v", minimum, maximum)
	}
	return nil
}

func checkFloatRange[T constraints.Float](minimum, maximum T) error {
	if err := checkRange(minimum, maximum); err != nil {
		return err
	}
	if math.IsInf(float64(minimum), 0) || math.IsInf(float64(maximum), 0) {
		return errors.Wrapf(ErrInvalidRange, "range [%v, %v) is not finite", minimum, maximum)
	}
	return nil
}

func clampFloat(v, minimum, maximum float64) float64 {
	if v >= maximum {
		return math.Nextafter(maximum, minimum)
	}
	return max(v, minimum)
}
