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
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/scylladb/rngbench/pkg/benchmarks"
	"github.com/scylladb/rngbench/pkg/utils"
)

var (
	historyFile      string
	historyThreshold float64
	historyTags      []string
	historyNotes     string
)

var ErrRegression = errors.New("performance regressions detected")

func History() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and compare stored benchmark runs",
	}

	cmd.PersistentFlags().
		StringVarP(&historyFile, "history", "", "benchmark_history.json", "History file (.json, .zst or .db)")

	show := &cobra.Command{
		Use:   "show",
		Short: "List stored runs",
		Args:  cobra.NoArgs,
		RunE:  runHistoryShow,
	}

	compare := &cobra.Command{
		Use:   "compare [OLD [NEW]]",
		Short: "Compare two runs, by ID prefix or 'previous'/'latest' (the default)",
		Args:  cobra.MaximumNArgs(2),
		RunE:  runHistoryCompare,
	}
	compare.Flags().
		Float64VarP(&historyThreshold, "threshold", "", 10.0, "Regression threshold in percent")

	imp := &cobra.Command{
		Use:   "import [FILE]",
		Short: "Store the output of 'go test -bench' as a run, reads stdin without FILE",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHistoryImport,
	}
	imp.Flags().
		StringSliceVarP(&historyTags, "tags", "", nil, "key=value tags stored with the run")
	imp.Flags().
		StringVarP(&historyNotes, "notes", "", "", "Notes stored with the run")

	cmd.AddCommand(show, compare, imp)
	return cmd
}

func loadHistory() ([]benchmarks.Run, error) {
	store, err := benchmarks.Open(historyFile)
	if err != nil {
		return nil, err
	}
	defer utils.IgnoreError(store.Close)

	return store.Load()
}

func runHistoryShow(cmd *cobra.Command, _ []string) error {
	runs, err := loadHistory()
	if err != nil {
		return err
	}
	return benchmarks.PrintRuns(cmd.OutOrStdout(), runs)
}

func runHistoryCompare(cmd *cobra.Command, args []string) error {
	oldRef, newRef := "previous", "latest"
	if len(args) > 0 {
		oldRef = args[0]
	}
	if len(args) > 1 {
		newRef = args[1]
	}

	runs, err := loadHistory()
	if err != nil {
		return err
	}

	oldRun, ok := benchmarks.FindRun(runs, oldRef)
	if !ok {
		return errors.Errorf("run %q not found in %s", oldRef, historyFile)
	}
	newRun, ok := benchmarks.FindRun(runs, newRef)
	if !ok {
		return errors.Errorf("run %q not found in %s", newRef, historyFile)
	}

	regressed, err := benchmarks.PrintComparison(
		cmd.OutOrStdout(),
		benchmarks.CompareRuns(oldRun, newRun, historyThreshold),
	)
	if err != nil {
		return err
	}
	if regressed {
		return ErrRegression
	}
	return nil
}

func runHistoryImport(cmd *cobra.Command, args []string) error {
	logger := commandLogger()
	defer utils.IgnoreError(logger.Sync)

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return errors.Wrapf(err, "failed to open %s", args[0])
		}
		defer f.Close()
		in = f
	}

	entries, err := benchmarks.ParseBenchmarkOutput(in)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return errors.New("no benchmark results found")
	}

	return appendHistory(historyFile, entries, historyTags, historyNotes, logger)
}
