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
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// FrequencyTable counts how often each side in [0, sides) came up. It is not
// safe for concurrent use; concurrent checks give every worker its own table.
type FrequencyTable struct {
	counts []int64
}

func NewFrequencyTable(sides int) *FrequencyTable {
	return &FrequencyTable{counts: make([]int64, sides)}
}

func (t *FrequencyTable) Sides() int {
	return len(t.counts)
}

func (t *FrequencyTable) Inc(side int) {
	t.counts[side]++
}

func (t *FrequencyTable) Count(side int) int64 {
	return t.counts[side]
}

func (t *FrequencyTable) Counts() []int64 {
	out := make([]int64, len(t.counts))
	copy(out, t.counts)
	return out
}

func (t *FrequencyTable) Total() int64 {
	var total int64
	for _, c := range t.counts {
		total += c
	}
	return total
}

func (t *FrequencyTable) Merge(other *FrequencyTable) error {
	if other.Sides() != t.Sides() {
		return errors.Errorf("can not merge a %d-sided table into a %d-sided one", other.Sides(), t.Sides())
	}
	for i, c := range other.counts {
		t.counts[i] += c
	}
	return nil
}

func (t *FrequencyTable) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, c := range t.counts {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Itoa(i))
		sb.WriteByte('=')
		sb.WriteString(strconv.FormatInt(c, 10))
	}
	sb.WriteByte('}')
	return sb.String()
}

func (t *FrequencyTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.counts)
}
