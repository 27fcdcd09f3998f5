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
	"fmt"
	"io"
	"text/tabwriter"
)

// PrintResults renders one row per result with the score and its error.
func PrintResults(w io.Writer, results []Result) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', tabwriter.AlignRight)

	_, _ = fmt.Fprintln(tw, "Benchmark\tKind\tThreads\tMode\tCnt\tScore\t\tError\tUnits\t")
	for _, r := range results {
		_, _ = fmt.Fprintf(tw, "Int32\t%s\t%d\tthrpt\t%d\t%.3f\t±\t%.3f\tops/s\t\n",
			r.Kind, r.Threads, len(r.Samples), r.Score, r.ScoreError)
	}

	return tw.Flush()
}
