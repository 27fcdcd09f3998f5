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
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/scylladb/rngbench/pkg/metrics"
	"github.com/scylladb/rngbench/pkg/stop"
	"github.com/scylladb/rngbench/pkg/utils"
)

var rootCmd = NewRootCommand()

// NewRootCommand builds the command tree. Every call rebinds the package
// level flag variables to their defaults.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:              "rngbench",
		Short:            "rngbench measures and sanity checks pseudo-random number generators.",
		PersistentPreRun: preRun,
		SilenceUsage:     true,
	}

	setupFlags(cmd)
	cmd.AddCommand(Throughput(), Dice(), History(), Version())

	return cmd
}

func preRun(cmd *cobra.Command, _ []string) {
	if forkChild {
		return
	}
	metrics.StartMetricsServer(cmd.Context(), metricsBind)
}

// createLogger writes JSON logs to console and, unless fileName is empty,
// to fileName as well.
func createLogger(level, fileName string, console io.Writer) *zap.Logger {
	lvl := zap.NewAtomicLevel()
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl.SetLevel(zap.InfoLevel)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	encoderCfg.EncodeDuration = zapcore.StringDurationEncoder
	encoderCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	encoderCfg.EncodeCaller = nil

	syncers := []zapcore.WriteSyncer{zapcore.Lock(zapcore.AddSync(console))}

	if fileName != "" {
		file, err := utils.CreateFile(fileName, false)
		if err != nil {
			log.Fatalf("failed to create log file: %v", err)
		}
		syncers = append(syncers, zapcore.Lock(zapcore.AddSync(file)))
	}

	logger := zap.New(zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.NewMultiWriteSyncer(syncers...),
		lvl,
	))

	zap.ReplaceGlobals(logger)
	return logger
}

// commandLogger is the logger every subcommand starts with. Forked children
// keep stdout for their result and never touch the log file.
func commandLogger() *zap.Logger {
	if forkChild {
		return createLogger(level, "", os.Stderr)
	}
	return createLogger(level, logFile, os.Stdout)
}

// runContext returns a context that is cancelled on the second interrupt,
// along with the flag that reports the first one.
func runContext(cmd *cobra.Command, logger *zap.Logger) (context.Context, *stop.Flag) {
	flag := stop.NewFlag("main")
	flag.SetLogger(logger)
	stop.StartOsSignalsTransmitter(logger, flag)

	return flag.CancelContextOnSignal(cmd.Context(), stop.SignalHardStop), flag
}
