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

package stop_test

import (
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scylladb/rngbench/pkg/stop"
)

const signalHelperEnv = "RNGBENCH_WANT_SIGNAL_HELPER"

// TestSignalHelperProcess is the body of the child started by
// TestIgnoreOsSignals.
func TestSignalHelperProcess(t *testing.T) {
	if os.Getenv(signalHelperEnv) == "" {
		t.Skip("only runs as a child process")
	}

	stop.IgnoreOsSignals()

	self, err := os.FindProcess(os.Getpid())
	if err != nil {
		os.Exit(2)
	}
	_ = self.Signal(os.Interrupt)
	time.Sleep(100 * time.Millisecond)

	_, _ = fmt.Fprintln(os.Stdout, "still running")
	os.Exit(0)
}

func TestIgnoreOsSignals(t *testing.T) {
	t.Parallel()

	cmd := exec.CommandContext(t.Context(), os.Args[0], "-test.run=^TestSignalHelperProcess$")
	cmd.Env = append(os.Environ(), signalHelperEnv+"=1")

	out, err := cmd.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "still running")
}
