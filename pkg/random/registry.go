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
	crand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand/v2"

	"github.com/pkg/errors"
	"github.com/samber/mo"
	"go.uber.org/zap"
)

type (
	options struct {
		entropy io.Reader
		logger  *zap.Logger
		strong  bool
	}

	Option func(*options)
)

// WithEntropy replaces crypto/rand as the source of unpredictable bits.
func WithEntropy(r io.Reader) Option {
	return func(o *options) {
		o.entropy = r
	}
}

// WithStrong makes secure generators read every value from the entropy
// source instead of a ChaCha8 stream keyed from it.
func WithStrong() Option {
	return func(o *options) {
		o.strong = true
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func newOptions(opts []Option) options {
	o := options{
		entropy: crand.Reader,
		logger:  zap.L().Named("random"),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Resolve builds a fresh generator of the given kind. Seeded basic and
// splittable generators are fully deterministic; a seed given to a secure
// generator is mixed into its entropy and never makes it reproducible.
func Resolve(kind Kind, seed mo.Option[int64], opts ...Option) (*Generator, error) {
	o := newOptions(opts)

	g, err := resolve(kind, seed, o)
	if err != nil {
		return nil, err
	}

	o.logger.Debug("generator resolved",
		zap.Stringer("kind", kind),
		zap.Bool("seeded", seed.IsPresent()),
		zap.Bool("strong", o.strong && kind == KindSecure),
	)
	return g, nil
}

func ResolveName(name string, seed mo.Option[int64], opts ...Option) (*Generator, error) {
	kind, err := ParseKind(name)
	if err != nil {
		return nil, err
	}
	return Resolve(kind, seed, opts...)
}

func resolve(kind Kind, seed mo.Option[int64], o options) (*Generator, error) {
	switch kind {
	case KindBasic:
		if s, ok := seed.Get(); ok {
			return newGenerator(kind, rand.NewPCG(uint64(s), uint64(s))), nil
		}

		key, err := readKey(o.entropy)
		if err != nil {
			return nil, unavailable(err, "can not seed %s generator", kind)
		}
		return newGenerator(kind, rand.NewPCG(
			binary.LittleEndian.Uint64(key[:8]),
			binary.LittleEndian.Uint64(key[8:16]),
		)), nil
	case KindSplittable:
		if s, ok := seed.Get(); ok {
			return newGenerator(kind, rand.NewChaCha8(SeedKey(s))), nil
		}

		key, err := readKey(o.entropy)
		if err != nil {
			return nil, unavailable(err, "can not seed %s generator", kind)
		}
		return newGenerator(kind, rand.NewChaCha8(key)), nil
	case KindThreadLocal:
		if seed.IsPresent() {
			return nil, errors.Wrap(ErrUnsupportedOperation, "thread-local generators can not be seeded")
		}
		return newGenerator(kind, threadLocalSource{}), nil
	case KindSecure:
		return resolveSecure(seed, o)
	default:
		return nil, errors.Wrapf(ErrUnknownGeneratorKind, "%d", uint8(kind))
	}
}

func resolveSecure(seed mo.Option[int64], o options) (*Generator, error) {
	// probing with a full key read makes an unusable entropy source fail here
	// instead of on the first draw
	key, err := readKey(o.entropy)
	if err != nil {
		return nil, unavailable(err, "secure generator")
	}

	if o.strong {
		src := newEntropySource(o.entropy)
		g := newGenerator(KindSecure, src).Shared()
		g.err = src.Err
		return g, nil
	}

	if s, ok := seed.Get(); ok {
		key = mixKey(key, s)
	}

	return newGenerator(KindSecure, rand.NewChaCha8(key)).Shared(), nil
}
