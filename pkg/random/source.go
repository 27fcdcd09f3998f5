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
	"crypto/sha256"
	"encoding/binary"
	"io"
	"math/rand/v2"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

// threadLocalSource has no state of its own: every call lands on the
// runtime generator of whichever thread runs the calling goroutine.
type threadLocalSource struct{}

func (threadLocalSource) Uint64() uint64 {
	return rand.Uint64()
}

// exhausted is returned once the entropy reader failed. Zero would spin
// rand.Rand's rejection sampling forever, all ones never triggers it.
const exhausted = ^uint64(0)

// entropySource reads every value from the entropy reader. Once a read
// fails the error sticks and later draws return exhausted.
type entropySource struct {
	r   io.Reader
	err atomic.Error
	buf [8]byte
}

func newEntropySource(r io.Reader) *entropySource {
	return &entropySource{r: r}
}

func (s *entropySource) Uint64() uint64 {
	if s.err.Load() != nil {
		return exhausted
	}

	if _, err := io.ReadFull(s.r, s.buf[:]); err != nil {
		s.err.Store(unavailable(err, "entropy read failed"))
		return exhausted
	}

	return binary.LittleEndian.Uint64(s.buf[:])
}

func (s *entropySource) Err() error {
	return s.err.Load()
}

func readKey(r io.Reader) ([32]byte, error) {
	var key [32]byte
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return key, errors.Wrap(err, "failed to read 32 bytes of entropy")
	}
	return key, nil
}

func seedBytes(seed int64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(seed))
	return b[:]
}

// SeedKey derives the ChaCha8 key used by seeded splittable generators.
func SeedKey(seed int64) [32]byte {
	return sha256.Sum256(seedBytes(seed))
}

func mixKey(key [32]byte, seed int64) [32]byte {
	h := sha256.New()
	_, _ = h.Write(key[:])
	_, _ = h.Write(seedBytes(seed))

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
