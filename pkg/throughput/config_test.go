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

package throughput

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scylladb/rngbench/pkg/random"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		mutate func(*Config)
		err    error
	}{
		"defaults":            {mutate: func(*Config) {}},
		"no warmup":           {mutate: func(c *Config) { c.WarmupIterations = 0 }},
		"zero threads":        {mutate: func(c *Config) { c.Threads = 0 }, err: ErrInvalidConfig},
		"negative warmup":     {mutate: func(c *Config) { c.WarmupIterations = -1 }, err: ErrInvalidConfig},
		"no measurements":     {mutate: func(c *Config) { c.MeasuredIterations = 0 }, err: ErrInvalidConfig},
		"zero iteration time": {mutate: func(c *Config) { c.IterationTime = 0 }, err: ErrInvalidConfig},
		"negative forks":      {mutate: func(c *Config) { c.ForkCount = -1 }, err: ErrInvalidConfig},
		"unknown kind": {
			mutate: func(c *Config) { c.Kind = random.Kind(42) },
			err:    random.ErrUnknownGeneratorKind,
		},
		"seeded thread-local": {
			mutate: func(c *Config) {
				c.Kind = random.KindThreadLocal
				c.Seed = mo.Some[int64](1)
			},
			err: random.ErrUnsupportedOperation,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig(random.KindBasic)
			test.mutate(&cfg)

			err := cfg.Validate()
			if test.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, test.err)
		})
	}
}

func TestChildArgs(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig(random.KindSecure)
	cfg.Threads = 4
	cfg.IterationTime = 250 * time.Millisecond
	cfg.ForkCount = 3
	cfg.Seed = mo.Some[int64](-7)
	cfg.Strong = true

	expected := []string{
		"--kind", "secure",
		"--threads", "4",
		"--warmup", "3",
		"--iterations", "5",
		"--iteration-time", "250ms",
		"--forks", "0",
		"--seed", "-7",
		"--strong",
	}

	if diff := cmp.Diff(expected, ChildArgs(cfg)); diff != "" {
		t.Fatalf("unexpected child args (-want +got):\n%s", diff)
	}

	unseeded := ChildArgs(DefaultConfig(random.KindBasic))
	assert.NotContains(t, unseeded, "--seed")
	assert.NotContains(t, unseeded, "--strong")
}

func TestDecodeSuite(t *testing.T) {
	t.Parallel()

	base := DefaultConfig(random.KindBasic)
	base.Seed = mo.Some[int64](99)

	suite := `{
		"runs": [
			{"kind": "splittable", "threads": 2, "iteration_time": "200ms"},
			{"kind": "SecureRandom", "warmup_iterations": 0, "forks": 2, "strong": true},
			{}
		]
	}`

	configs, err := DecodeSuite(strings.NewReader(suite), base)
	require.NoError(t, err)
	require.Len(t, configs, 3)

	first := base
	first.Kind = random.KindSplittable
	first.Threads = 2
	first.IterationTime = 200 * time.Millisecond

	second := base
	second.Kind = random.KindSecure
	second.WarmupIterations = 0
	second.ForkCount = 2
	second.Strong = true

	expected := []Config{first, second, base}
	if diff := cmp.Diff(expected, configs, cmp.AllowUnexported(mo.Option[int64]{})); diff != "" {
		t.Fatalf("unexpected suite (-want +got):\n%s", diff)
	}
}

func TestDecodeSuiteErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"malformed":     `{"runs": [`,
		"empty":         `{"runs": []}`,
		"unknown field": `{"runs": [{"kind": "basic", "colour": "blue"}]}`,
		"unknown kind":  `{"runs": [{"kind": "mersenne"}]}`,
		"bad duration":  `{"runs": [{"iteration_time": "soon"}]}`,
		"invalid run":   `{"runs": [{"threads": 0}]}`,
	}

	for name, suite := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := DecodeSuite(strings.NewReader(suite), DefaultConfig(random.KindBasic))
			assert.Error(t, err)
		})
	}
}
