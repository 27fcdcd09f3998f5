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

package utils

import (
	"sync"
	"time"
)

// deadlines holds stopped timers with an empty channel, ready to be armed.
var deadlines = sync.Pool{
	New: func() any {
		t := time.NewTimer(time.Hour)
		t.Stop()
		return t
	},
}

// GetTimer returns a timer whose channel receives exactly once, d from now.
// Nothing left over from a previous use is ever delivered on it.
func GetTimer(d time.Duration) *time.Timer {
	t := deadlines.Get().(*time.Timer)
	t.Reset(d)
	return t
}

// PutTimer hands t back once the caller stopped waiting on it. The timer is
// stopped and a tick that fired but was never received is drained, whether
// or not the caller read from t.C.
func PutTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	deadlines.Put(t)
}
