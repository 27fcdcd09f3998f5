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
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/scylladb/rngbench/pkg/dice"
	"github.com/scylladb/rngbench/pkg/random"
	"github.com/scylladb/rngbench/pkg/utils"
	"github.com/scylladb/rngbench/pkg/workpool"
)

var (
	diceKinds      []string
	diceSides      int
	diceThrows     int
	diceWorkers    int
	diceConcurrent bool
	diceTolerance  float64
	diceSeed       string
	diceStrong     bool
)

func Dice() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dice",
		Short: "Roll a dice with every generator kind and report the spread of the outcomes",
		Long: `Throws a dice --throws times per generator and prints the frequency of every
side with the mean absolute deviation from the mean count. With --concurrent
the check runs once per worker on a pool of --workers, each worker with its
own handle and table. A deviation above --tolerance of the expected count
fails the command.`,
		RunE: runDice,
	}

	cmd.Flags().
		StringSliceVarP(&diceKinds, "kind", "k", allKindNames(), "Generator kinds to check")
	cmd.Flags().
		IntVarP(&diceSides, "sides", "", dice.DefaultSides, "Number of sides of the dice")
	cmd.Flags().
		IntVarP(&diceThrows, "throws", "n", dice.DefaultThrows, "Throws per check")
	cmd.Flags().
		IntVarP(&diceWorkers, "workers", "w", dice.DefaultWorkers, "Workers used with --concurrent")
	cmd.Flags().
		BoolVarP(&diceConcurrent, "concurrent", "", false, "Run one check per worker concurrently")
	cmd.Flags().
		Float64VarP(&diceTolerance, "tolerance", "", dice.DefaultTolerance, "Largest accepted deviation as a fraction of the expected count, 0 disables the gate")
	cmd.Flags().
		StringVarP(&diceSeed, "seed", "s", "", "Seed: an integer, 'random', or any text to hash. Empty leaves generators unseeded")
	cmd.Flags().
		BoolVarP(&diceStrong, "strong", "", false, "Secure generators read every draw from the entropy source")

	return cmd
}

func runDice(cmd *cobra.Command, _ []string) error {
	logger := commandLogger()
	defer utils.IgnoreError(logger.Sync)

	if diceWorkers < 1 {
		return errors.Errorf("--workers must be at least 1, got %d", diceWorkers)
	}

	seed, err := random.ParseSeed(diceSeed, nil)
	if err != nil {
		return errors.Wrap(err, "failed to parse --seed argument")
	}

	kinds, err := selectKinds(diceKinds, cmd.Flags().Changed("kind"), seed.IsPresent())
	if err != nil {
		return err
	}

	ctx, flag := runContext(cmd, logger)

	opts := []random.Option{random.WithLogger(logger)}
	if diceStrong {
		opts = append(opts, random.WithStrong())
	}

	var pool *workpool.Pool
	if diceConcurrent {
		pool = workpool.New("dice", diceWorkers, logger)
		defer utils.IgnoreError(pool.Close)
	}

	var skewed error
	for _, kind := range kinds {
		if flag.IsHardOrSoft() {
			logger.Warn("stop requested, skipping remaining checks", zap.Stringer("next", kind))
			break
		}

		var result dice.Result
		if diceConcurrent {
			result, err = rollConcurrent(ctx, cmd.OutOrStdout(), pool, kind, seed, opts)
		} else {
			result, err = rollSingle(ctx, cmd.OutOrStdout(), kind, seed, opts)
		}
		if err != nil {
			return errors.Wrapf(err, "dice check of %s failed", kind)
		}

		if err = result.Verify(diceTolerance); err != nil {
			logger.Error("distribution check failed", zap.Stringer("kind", kind), zap.Error(err))
			skewed = multierr.Append(skewed, errors.Wrap(err, kind.String()))
		}
	}

	return skewed
}

func rollSingle(ctx context.Context, out io.Writer, kind random.Kind, seed mo.Option[int64], opts []random.Option) (dice.Result, error) {
	g, err := random.Resolve(kind, seed, opts...)
	if err != nil {
		return dice.Result{}, err
	}

	r, err := dice.Roll(ctx, g, diceSides, diceThrows)
	if err != nil {
		return dice.Result{}, err
	}

	return r, dice.Print(out, kind.String(), r)
}

func rollConcurrent(
	ctx context.Context,
	out io.Writer,
	pool *workpool.Pool,
	kind random.Kind,
	seed mo.Option[int64],
	opts []random.Option,
) (dice.Result, error) {
	handles, err := random.Handles(kind, seed, pool.Workers(), opts...)
	if err != nil {
		return dice.Result{}, err
	}

	results, err := dice.RollConcurrent(ctx, pool, handles, diceSides, diceThrows)
	if err != nil {
		return dice.Result{}, err
	}

	for i, r := range results {
		if err = dice.Print(out, fmt.Sprintf("%s worker %d", kind, i), r); err != nil {
			return dice.Result{}, err
		}
	}

	total, err := dice.Aggregate(results)
	if err != nil {
		return dice.Result{}, err
	}

	return total, dice.Print(out, kind.String()+" total", total)
}
