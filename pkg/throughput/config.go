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
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/samber/mo"

	"github.com/scylladb/rngbench/pkg/random"
)

const (
	DefaultThreads            = 10
	DefaultWarmupIterations   = 3
	DefaultMeasuredIterations = 5
	DefaultForkCount          = 1
	DefaultIterationTime      = time.Second
)

var ErrInvalidConfig = errors.New("invalid throughput config")

// Config describes one parameterisation of the throughput benchmark.
type Config struct {
	Seed               mo.Option[int64] `json:"-" mapstructure:"-"`
	Kind               random.Kind      `json:"kind" mapstructure:"kind"`
	Threads            int              `json:"threads" mapstructure:"threads"`
	WarmupIterations   int              `json:"warmup_iterations" mapstructure:"warmup_iterations"`
	MeasuredIterations int              `json:"measured_iterations" mapstructure:"measured_iterations"`
	IterationTime      time.Duration    `json:"iteration_time" mapstructure:"iteration_time"`
	ForkCount          int              `json:"forks" mapstructure:"forks"`
	Strong             bool             `json:"strong" mapstructure:"strong"`
}

func DefaultConfig(kind random.Kind) Config {
	return Config{
		Kind:               kind,
		Threads:            DefaultThreads,
		WarmupIterations:   DefaultWarmupIterations,
		MeasuredIterations: DefaultMeasuredIterations,
		IterationTime:      DefaultIterationTime,
		ForkCount:          DefaultForkCount,
		Seed:               mo.None[int64](),
	}
}

func (c Config) Validate() error {
	switch {
	case !c.Kind.Valid():
		return errors.Wrapf(random.ErrUnknownGeneratorKind, "%d", uint8(c.Kind))
	case c.Threads < 1:
		return errors.Wrapf(ErrInvalidConfig, "threads must be at least 1, got %d", c.Threads)
	case c.WarmupIterations < 0:
		return errors.Wrapf(ErrInvalidConfig, "warmup iterations must not be negative, got %d", c.WarmupIterations)
	case c.MeasuredIterations < 1:
		return errors.Wrapf(ErrInvalidConfig, "measured iterations must be at least 1, got %d", c.MeasuredIterations)
	case c.IterationTime <= 0:
		return errors.Wrapf(ErrInvalidConfig, "iteration time must be positive, got %s", c.IterationTime)
	case c.ForkCount < 0:
		return errors.Wrapf(ErrInvalidConfig, "fork count must not be negative, got %d", c.ForkCount)
	case c.Seed.IsPresent() && c.Kind == random.KindThreadLocal:
		return errors.Wrap(random.ErrUnsupportedOperation, "thread-local generators can not be seeded")
	}
	return nil
}

// ChildArgs renders cfg as the throughput command flags a forked child
// needs to rebuild it.
func ChildArgs(cfg Config) []string {
	args := []string{
		"--kind", cfg.Kind.String(),
		"--threads", strconv.Itoa(cfg.Threads),
		"--warmup", strconv.Itoa(cfg.WarmupIterations),
		"--iterations", strconv.Itoa(cfg.MeasuredIterations),
		"--iteration-time", cfg.IterationTime.String(),
		"--forks", "0",
	}
	if seed, ok := cfg.Seed.Get(); ok {
		args = append(args, "--seed", strconv.FormatInt(seed, 10))
	}
	if cfg.Strong {
		args = append(args, "--strong")
	}
	return args
}

type suiteFile struct {
	Runs []map[string]any `json:"runs"`
}

// DecodeSuite reads a JSON document of the form {"runs": [{...}, ...]}. Each
// run starts from base and overrides the fields it names; durations are
// written as strings such as "500ms".
func DecodeSuite(r io.Reader, base Config) ([]Config, error) {
	var suite suiteFile
	if err := json.NewDecoder(r).Decode(&suite); err != nil {
		return nil, errors.Wrap(err, "failed to parse suite")
	}

	if len(suite.Runs) == 0 {
		return nil, errors.Wrap(ErrInvalidConfig, "suite has no runs")
	}

	out := make([]Config, 0, len(suite.Runs))
	for i, raw := range suite.Runs {
		cfg := base

		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			ErrorUnused: true,
			Result:      &cfg,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create suite decoder")
		}

		if err = decoder.Decode(raw); err != nil {
			return nil, errors.Wrapf(err, "can't decode run %d, value=%+v", i, raw)
		}

		if err = cfg.Validate(); err != nil {
			return nil, errors.Wrapf(err, "run %d", i)
		}
		out = append(out, cfg)
	}

	return out, nil
}
