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
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scylladb/rngbench/pkg/stop"
)

func stateOf(flag *stop.Flag) string {
	switch {
	case flag.IsSoft():
		return "soft"
	case flag.IsHard():
		return "hard"
	default:
		return "no-signal"
	}
}

func TestSoftThenHard(t *testing.T) {
	t.Parallel()

	flag := stop.NewFlag("main")
	hardCtx := flag.CancelContextOnSignal(t.Context(), stop.SignalHardStop)
	anyCtx := flag.CancelContextOnSignal(t.Context(), stop.SignalNoop)

	require.True(t, flag.SetSoft(false))
	assert.False(t, flag.SetSoft(false), "repeated soft stop")
	assert.True(t, flag.IsSoft())
	assert.Error(t, anyCtx.Err())
	assert.NoError(t, hardCtx.Err())

	require.True(t, flag.SetHard(false))
	assert.True(t, flag.IsHard())
	assert.ErrorIs(t, hardCtx.Err(), context.Canceled)

	assert.False(t, flag.SetSoft(false), "hard can not be downgraded")
	assert.True(t, flag.IsHard())
}

func TestPropagation(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		signal   func(*stop.Flag, bool) bool
		target   string
		toParent bool
		expected map[string]string
	}{
		"parent-soft": {
			signal: (*stop.Flag).SetSoft, target: "parent",
			expected: map[string]string{"parent": "soft", "child1": "soft", "child11": "soft", "child2": "soft"},
		},
		"parent-hard": {
			signal: (*stop.Flag).SetHard, target: "parent",
			expected: map[string]string{"parent": "hard", "child1": "hard", "child11": "hard", "child2": "hard"},
		},
		"child1-soft-local": {
			signal: (*stop.Flag).SetSoft, target: "child1",
			expected: map[string]string{"parent": "no-signal", "child1": "soft", "child11": "soft", "child2": "no-signal"},
		},
		"child11-hard-up": {
			signal: (*stop.Flag).SetHard, target: "child11", toParent: true,
			expected: map[string]string{"parent": "hard", "child1": "hard", "child11": "hard", "child2": "hard"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			parent := stop.NewFlag("parent")
			child1 := parent.CreateChild("child1")
			flags := map[string]*stop.Flag{
				"parent":  parent,
				"child1":  child1,
				"child11": child1.CreateChild("child11"),
				"child2":  parent.CreateChild("child2"),
			}

			handled := make(map[string]uint32)
			var mu sync.Mutex
			for name, f := range flags {
				f.AddHandler(func(signal uint32) {
					mu.Lock()
					defer mu.Unlock()
					handled[name] = signal
				})
			}

			test.signal(flags[test.target], test.toParent)

			for name, want := range test.expected {
				assert.Equal(t, want, stateOf(flags[name]), name)

				mu.Lock()
				got, ok := handled[name]
				mu.Unlock()
				if want == "no-signal" {
					assert.False(t, ok, name)
				} else {
					assert.Equal(t, want, stop.GetStateName(got), name)
				}
			}
		})
	}
}

func TestLateChildAndHandler(t *testing.T) {
	t.Parallel()

	parent := stop.NewFlag("parent")
	parent.SetSoft(false)

	child := parent.CreateChild("late")
	assert.True(t, child.IsSoft())

	select {
	case <-child.Done():
	case <-time.After(time.Second):
		t.Fatal("late child was not signalled")
	}

	var got uint32
	child.AddHandler(func(signal uint32) { got = signal })
	assert.Equal(t, stop.SignalSoftStop, got)
}

func TestDone(t *testing.T) {
	t.Parallel()

	flag := stop.NewFlag("main")

	select {
	case <-flag.Done():
		t.Fatal("done before any signal")
	case <-time.After(20 * time.Millisecond):
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		flag.SetHard(false)
	}()

	select {
	case <-flag.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("done was never closed")
	}
}

func TestGetStateName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "soft", stop.GetStateName(stop.SignalSoftStop))
	assert.Equal(t, "hard", stop.GetStateName(stop.SignalHardStop))
	assert.Equal(t, "no-signal", stop.GetStateName(stop.SignalNoop))
	assert.Panics(t, func() { stop.GetStateName(42) })
}
