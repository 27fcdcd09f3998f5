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
	"strconv"
	"strings"

	"github.com/samber/mo"
	"github.com/twmb/murmur3"
)

// SeedRandom asks ParseSeed for a fresh seed drawn from the entropy source.
const SeedRandom = "random"

// ParseSeed turns a user supplied seed into an optional int64. The empty
// string means unseeded, "random" draws a seed from entropy (nil means
// crypto/rand) so the run can be repeated later, decimal integers are used
// as they are and any other text is hashed with murmur3.
func ParseSeed(value string, entropy io.Reader) (mo.Option[int64], error) {
	value = strings.TrimSpace(value)

	switch value {
	case "":
		return mo.None[int64](), nil
	case SeedRandom:
		if entropy == nil {
			entropy = crand.Reader
		}
		var buf [8]byte
		if _, err := io.ReadFull(entropy, buf[:]); err != nil {
			return mo.None[int64](), unavailable(err, "can not draw a random seed")
		}
		return mo.Some(int64(binary.LittleEndian.Uint64(buf[:]))), nil
	}

	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return mo.Some(n), nil
	}

	return mo.Some(int64(murmur3.StringSum64(value))), nil
}
