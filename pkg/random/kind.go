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
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Kind is the closed set of generator families the registry can build.
type Kind uint8

const (
	KindBasic Kind = iota
	KindSplittable
	KindThreadLocal
	KindSecure
)

var kindNames = [...]string{
	KindBasic:       "basic",
	KindSplittable:  "splittable",
	KindThreadLocal: "threadlocal",
	KindSecure:      "secure",
}

func AllKinds() []Kind {
	return []Kind{KindBasic, KindSplittable, KindThreadLocal, KindSecure}
}

func (k Kind) Valid() bool {
	return int(k) < len(kindNames)
}

func (k Kind) String() string {
	if k.Valid() {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Deterministic reports whether a seeded generator of this kind replays the
// same sequence.
func (k Kind) Deterministic() bool {
	return k == KindBasic || k == KindSplittable
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, errors.Wrapf(ErrUnknownGeneratorKind, "%d", uint8(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind accepts both the short names and the names of the classic JDK
// generators the benchmark was first written against.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "basic", "random":
		return KindBasic, nil
	case "splittable", "splittablerandom":
		return KindSplittable, nil
	case "threadlocal", "thread-local", "threadlocalrandom":
		return KindThreadLocal, nil
	case "secure", "securerandom":
		return KindSecure, nil
	default:
		return 0, errors.Wrapf(ErrUnknownGeneratorKind, "%q", name)
	}
}

func ParseKinds(names []string) ([]Kind, error) {
	out := make([]Kind, 0, len(names))
	for _, name := range names {
		kind, err := ParseKind(name)
		if err != nil {
			return nil, err
		}
		out = append(out, kind)
	}
	return out, nil
}
