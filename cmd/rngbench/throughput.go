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

package main

import (
	"context"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scylladb/rngbench/pkg/benchmarks"
	"github.com/scylladb/rngbench/pkg/random"
	"github.com/scylladb/rngbench/pkg/stop"
	"github.com/scylladb/rngbench/pkg/throughput"
	"github.com/scylladb/rngbench/pkg/utils"
)

var (
	tpKinds         []string
	tpThreads       int
	tpWarmup        int
	tpIterations    int
	tpIterationTime time.Duration
	tpForks         int
	tpSeed          string
	tpStrong        bool
	tpConfigFile    string
	tpHistoryFile   string
	tpTags          []string
	tpNotes         string
)

func Throughput() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "throughput",
		Short: "Measure Int32 draws per second of every generator kind",
		Long: `Runs the multi-threaded throughput benchmark. Every worker draws Int32 values
from its generator handle until the iteration time is up; warmup iterations
are discarded and the measured ones are reported as mean ± 99.9% error.
With --forks N each configuration runs in N fresh child processes.`,
		RunE: runThroughput,
	}

	cmd.Flags().
		StringSliceVarP(&tpKinds, "kind", "k", allKindNames(), "Generator kinds to measure")
	cmd.Flags().
		IntVarP(&tpThreads, "threads", "t", throughput.DefaultThreads, "Number of concurrent workers")
	cmd.Flags().
		IntVarP(&tpWarmup, "warmup", "", throughput.DefaultWarmupIterations, "Warmup iterations, discarded")
	cmd.Flags().
		IntVarP(&tpIterations, "iterations", "i", throughput.DefaultMeasuredIterations, "Measured iterations")
	cmd.Flags().
		DurationVarP(&tpIterationTime, "iteration-time", "", throughput.DefaultIterationTime, "Duration of a single iteration")
	cmd.Flags().
		IntVarP(&tpForks, "forks", "f", throughput.DefaultForkCount, "Child processes per configuration, 0 runs in-process")
	cmd.Flags().
		StringVarP(&tpSeed, "seed", "s", "", "Seed: an integer, 'random', or any text to hash. Empty leaves generators unseeded")
	cmd.Flags().
		BoolVarP(&tpStrong, "strong", "", false, "Secure generators read every draw from the entropy source")
	cmd.Flags().
		StringVarP(&tpConfigFile, "config", "c", "", "JSON suite file with a list of runs, overrides --kind")
	cmd.Flags().
		StringVarP(&tpHistoryFile, "history", "", "", "Append results to this history file (.json, .zst or .db)")
	cmd.Flags().
		StringSliceVarP(&tpTags, "tags", "", nil, "key=value tags stored with the history entry")
	cmd.Flags().
		StringVarP(&tpNotes, "notes", "", "", "Notes stored with the history entry")
	cmd.Flags().
		BoolVarP(&forkChild, "fork-child", "", false, "Run a single configuration and report it to the parent process")
	_ = cmd.Flags().MarkHidden("fork-child")

	return cmd
}

func runThroughput(cmd *cobra.Command, _ []string) error {
	logger := commandLogger()
	defer utils.IgnoreError(logger.Sync)

	seed, err := random.ParseSeed(tpSeed, nil)
	if err != nil {
		return errors.Wrap(err, "failed to parse --seed argument")
	}
	if s, ok := seed.Get(); ok {
		logger.Info("seeded run", zap.Int64("seed", s))
	}

	configs, err := throughputConfigs(seed, cmd.Flags().Changed("kind"))
	if err != nil {
		return err
	}

	if forkChild {
		stop.IgnoreOsSignals()
		return runForkChild(cmd.Context(), cmd.OutOrStdout(), configs, logger)
	}

	ctx, flag := runContext(cmd, logger)

	results := make([]throughput.Result, 0, len(configs))
	for _, cfg := range configs {
		if flag.IsHardOrSoft() {
			logger.Warn("stop requested, skipping remaining benchmarks", zap.Stringer("next", cfg.Kind))
			break
		}

		logger.Info("starting benchmark",
			zap.Stringer("kind", cfg.Kind),
			zap.Int("threads", cfg.Threads),
			zap.Int("forks", cfg.ForkCount),
		)

		res, err := throughput.Execute(ctx, cfg, forkCommand, logger)
		if err != nil {
			logger.Error("benchmark failed", zap.Stringer("kind", cfg.Kind), zap.NamedError("cause", utils.UnwrapErr(err)))
			return errors.Wrapf(err, "throughput benchmark of %s failed", cfg.Kind)
		}
		results = append(results, res)
	}

	if err = throughput.PrintResults(cmd.OutOrStdout(), results); err != nil {
		return err
	}

	if tpHistoryFile == "" || len(results) == 0 {
		return nil
	}
	return appendHistory(tpHistoryFile, benchmarks.FromThroughput(results), tpTags, tpNotes, logger)
}

func throughputConfigs(seed mo.Option[int64], kindsExplicit bool) ([]throughput.Config, error) {
	base := throughput.DefaultConfig(random.KindBasic)
	base.Threads = tpThreads
	base.WarmupIterations = tpWarmup
	base.MeasuredIterations = tpIterations
	base.IterationTime = tpIterationTime
	base.ForkCount = tpForks
	base.Strong = tpStrong
	base.Seed = seed

	if tpConfigFile != "" {
		f, err := os.Open(tpConfigFile)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open suite %s", tpConfigFile)
		}
		defer f.Close()

		return throughput.DecodeSuite(f, base)
	}

	kinds, err := selectKinds(tpKinds, kindsExplicit, seed.IsPresent())
	if err != nil {
		return nil, err
	}

	configs := make([]throughput.Config, 0, len(kinds))
	for _, kind := range kinds {
		cfg := base
		cfg.Kind = kind
		if err = cfg.Validate(); err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

func runForkChild(ctx context.Context, out io.Writer, configs []throughput.Config, logger *zap.Logger) error {
	if len(configs) != 1 {
		return errors.Errorf("a forked child runs exactly one configuration, got %d", len(configs))
	}

	res, err := throughput.Run(ctx, configs[0], logger)
	if err != nil {
		return err
	}
	return throughput.WriteChildResult(out, res)
}

// forkCommand re-executes this binary in child mode for cfg.
func forkCommand(ctx context.Context, cfg throughput.Config) *exec.Cmd {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}

	args := append([]string{"throughput", "--fork-child", "--level", level}, throughput.ChildArgs(cfg)...)
	return exec.CommandContext(ctx, exe, args...)
}

func appendHistory(path string, entries []benchmarks.Entry, tagPairs []string, notes string, logger *zap.Logger) error {
	tags, err := parseTags(tagPairs)
	if err != nil {
		return err
	}

	store, err := benchmarks.Open(path)
	if err != nil {
		return err
	}
	defer utils.IgnoreError(store.Close)

	run := benchmarks.NewRun(entries, tags, notes)
	if err = store.Append(run); err != nil {
		return errors.Wrapf(err, "failed to append run to %s", path)
	}

	logger.Info("results stored", zap.String("history", path), zap.String("run_id", run.ID))
	return nil
}
