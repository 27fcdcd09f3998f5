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
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

func TestParseKind(t *testing.T) {
	t.Parallel()

	expected := map[string]Kind{
		"basic":             KindBasic,
		"Random":            KindBasic,
		"SplittableRandom":  KindSplittable,
		" splittable ":      KindSplittable,
		"ThreadLocalRandom": KindThreadLocal,
		"thread-local":      KindThreadLocal,
		"SecureRandom":      KindSecure,
	}

	for name, kind := range expected {
		got, err := ParseKind(name)
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", name, err)
		}
		if got != kind {
			t.Errorf("ParseKind(%q) = %s, expected %s", name, got, kind)
		}
	}

	if _, err := ParseKind("xorshift"); !errors.Is(err, ErrUnknownGeneratorKind) {
		t.Errorf("expected ErrUnknownGeneratorKind, got %v", err)
	}
}

func TestKindTextEncoding(t *testing.T) {
	t.Parallel()

	type wrapper struct {
		Kinds []Kind `json:"kinds"`
	}

	data, err := json.Marshal(wrapper{Kinds: AllKinds()})
	if err != nil {
		t.Fatal(err)
	}

	expected := `{"kinds":["basic","splittable","threadlocal","secure"]}`
	if diff := cmp.Diff(expected, string(data)); diff != "" {
		t.Error(diff)
	}

	var decoded wrapper
	if err = json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(AllKinds(), decoded.Kinds); diff != "" {
		t.Error(diff)
	}

	if _, err = json.Marshal(Kind(9)); err == nil {
		t.Error("expected invalid kind to fail marshalling")
	}
}
