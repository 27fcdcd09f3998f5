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
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/scylladb/rngbench/pkg/random"
)

// ResultMarker prefixes the line a forked child reports its result on, so
// the parent can tell it apart from anything else written to stdout.
const ResultMarker = "rngbench-fork-result "

// CommandFunc builds the command that runs cfg in a child process.
type CommandFunc func(ctx context.Context, cfg Config) *exec.Cmd

func WriteChildResult(w io.Writer, r Result) error {
	data, err := json.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "failed to marshal fork result")
	}
	_, err = io.WriteString(w, ResultMarker+string(data)+"\n")
	return err
}

func ReadChildResult(r io.Reader) (Result, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		payload, ok := strings.CutPrefix(line, ResultMarker)
		if !ok {
			continue
		}

		var res Result
		if err := json.Unmarshal([]byte(payload), &res); err != nil {
			return Result{}, errors.Wrap(err, "failed to decode fork result")
		}
		return res, nil
	}

	if err := scanner.Err(); err != nil {
		return Result{}, errors.Wrap(err, "failed to read fork output")
	}
	return Result{}, errors.New("fork exited without reporting a result")
}

// RunForked runs cfg.ForkCount child processes one after another, each
// measuring cfg in isolation, and merges their samples.
func RunForked(ctx context.Context, cfg Config, command CommandFunc, logger *zap.Logger) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if cfg.ForkCount < 1 {
		return Result{}, errors.Wrap(ErrInvalidConfig, "forked run needs at least one fork")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	child := cfg
	child.ForkCount = 0

	results := make([]Result, 0, cfg.ForkCount)
	for i := range cfg.ForkCount {
		var stdout, stderr bytes.Buffer

		cmd := command(ctx, child)
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		logger.Debug("starting fork", zap.Int("fork", i+1), zap.Strings("args", cmd.Args))

		if err := cmd.Run(); err != nil {
			return Result{}, errors.Wrapf(err, "fork %d of %s failed: %s",
				i+1, cfg.Kind, strings.TrimSpace(stderr.String()))
		}

		res, err := ReadChildResult(&stdout)
		if err != nil {
			return Result{}, errors.Wrapf(err, "fork %d of %s", i+1, cfg.Kind)
		}

		logger.Info("fork finished", zap.Int("fork", i+1), zap.Float64("score", res.Score))
		results = append(results, res)
	}

	return Merge(results...)
}

// Execute picks in-process or forked execution depending on cfg.ForkCount.
func Execute(
	ctx context.Context,
	cfg Config,
	command CommandFunc,
	logger *zap.Logger,
	opts ...random.Option,
) (Result, error) {
	if cfg.ForkCount > 0 && command != nil {
		return RunForked(ctx, cfg, command, logger)
	}
	return Run(ctx, cfg, logger, opts...)
}
