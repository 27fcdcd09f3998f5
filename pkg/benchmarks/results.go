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

package benchmarks

import (
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"

	"github.com/scylladb/rngbench/pkg/throughput"
)

const UnitOpsPerSecond = "ops/s"

// Entry is one scored benchmark inside a run. Higher scores are better.
type Entry struct {
	Name       string  `json:"name"`
	Kind       string  `json:"kind,omitempty"`
	Unit       string  `json:"unit"`
	Threads    int     `json:"threads"`
	Score      float64 `json:"score"`
	ScoreError float64 `json:"score_error"`
}

// Run is a complete benchmark run with the machine it ran on.
type Run struct {
	Timestamp time.Time         `json:"timestamp"`
	Tags      map[string]string `json:"tags,omitempty"`
	ID        string            `json:"id"`
	GoVersion string            `json:"go_version"`
	OS        string            `json:"os"`
	Arch      string            `json:"arch"`
	CPU       string            `json:"cpu"`
	Host      string            `json:"host"`
	Notes     string            `json:"notes,omitempty"`
	Results   []Entry           `json:"results"`
}

// NewRun stamps entries with a fresh ID and the current host description.
func NewRun(entries []Entry, tags map[string]string, notes string) Run {
	return Run{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		CPU:       cpuModel(),
		Host:      hostName(),
		Tags:      tags,
		Notes:     notes,
		Results:   entries,
	}
}

func cpuModel() string {
	infos, err := cpu.Info()
	if err != nil || len(infos) == 0 {
		return "unknown"
	}
	return fmt.Sprintf("%s (%d logical)", strings.TrimSpace(infos[0].ModelName), runtime.NumCPU())
}

func hostName() string {
	info, err := host.Info()
	if err == nil && info.Hostname != "" {
		return info.Hostname
	}

	if name, err := os.Hostname(); err == nil {
		return name
	}
	return "unknown"
}

func EntryName(kind fmt.Stringer, threads int) string {
	return fmt.Sprintf("Int32/%s/%d", kind, threads)
}

// FromThroughput converts harness results into history entries.
func FromThroughput(results []throughput.Result) []Entry {
	entries := make([]Entry, 0, len(results))
	for _, r := range results {
		entries = append(entries, Entry{
			Name:       EntryName(r.Kind, r.Threads),
			Kind:       r.Kind.String(),
			Threads:    r.Threads,
			Score:      r.Score,
			ScoreError: r.ScoreError,
			Unit:       UnitOpsPerSecond,
		})
	}
	return entries
}

type Comparison struct {
	Name          string  `json:"name"`
	OldScore      float64 `json:"old_score"`
	NewScore      float64 `json:"new_score"`
	ChangePercent float64 `json:"change_percent"` // positive means faster
	IsRegression  bool    `json:"is_regression"`
}

// CompareRuns pairs the entries of both runs by name. An entry regresses when
// its score dropped by more than thresholdPercent. Entries present in only
// one of the runs are skipped.
func CompareRuns(oldRun, newRun Run, thresholdPercent float64) []Comparison {
	oldEntries := make(map[string]Entry, len(oldRun.Results))
	for _, e := range oldRun.Results {
		oldEntries[e.Name] = e
	}

	comparisons := make([]Comparison, 0, len(newRun.Results))

	for _, newEntry := range newRun.Results {
		oldEntry, exists := oldEntries[newEntry.Name]
		if !exists {
			continue
		}

		c := Comparison{
			Name:     newEntry.Name,
			OldScore: oldEntry.Score,
			NewScore: newEntry.Score,
		}

		if oldEntry.Score > 0 {
			c.ChangePercent = (newEntry.Score - oldEntry.Score) / oldEntry.Score * 100
		}
		c.IsRegression = c.ChangePercent < -thresholdPercent

		comparisons = append(comparisons, c)
	}

	return comparisons
}

// PrintComparison writes a human-readable report and tells whether any
// entry regressed.
func PrintComparison(w io.Writer, comparisons []Comparison) (bool, error) {
	if len(comparisons) == 0 {
		_, err := fmt.Fprintln(w, "No comparable benchmarks found.")
		return false, err
	}

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "Benchmark\tOld\tNew\tChange\t")

	hasRegressions := false
	for _, c := range comparisons {
		marker := ""
		if c.IsRegression {
			marker = "REGRESSION"
			hasRegressions = true
		}
		_, _ = fmt.Fprintf(tw, "%s\t%.3f\t%.3f\t%.2f%% %s\t%s\n",
			c.Name, c.OldScore, c.NewScore, math.Abs(c.ChangePercent), speedLabel(c.ChangePercent), marker)
	}

	if err := tw.Flush(); err != nil {
		return hasRegressions, err
	}

	summary := "No regressions detected"
	if hasRegressions {
		summary = "WARNING: Performance regressions detected!"
	}
	_, err := fmt.Fprintln(w, summary)

	return hasRegressions, err
}

func speedLabel(changePercent float64) string {
	switch {
	case changePercent > 0:
		return "faster"
	case changePercent < 0:
		return "slower"
	default:
		return "same"
	}
}

// PrintRuns lists stored runs, newest last.
func PrintRuns(w io.Writer, runs []Run) error {
	for _, run := range runs {
		_, _ = fmt.Fprintf(w, "%s  %s  %s %s/%s  %s\n",
			run.ID, run.Timestamp.Format(time.RFC3339), run.GoVersion, run.OS, run.Arch, run.CPU)

		tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', tabwriter.AlignRight)
		for _, e := range run.Results {
			_, _ = fmt.Fprintf(tw, "\t%s\t%.3f\t±\t%.3f\t%s\t\n", e.Name, e.Score, e.ScoreError, e.Unit)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// FindRun returns the run with the given ID, or with a unique ID prefix.
// "latest" and "previous" address the last two runs.
func FindRun(runs []Run, ref string) (Run, bool) {
	switch ref {
	case "latest":
		if len(runs) > 0 {
			return runs[len(runs)-1], true
		}
		return Run{}, false
	case "previous":
		if len(runs) > 1 {
			return runs[len(runs)-2], true
		}
		return Run{}, false
	}

	var (
		found Run
		count int
	)
	for _, run := range runs {
		if run.ID == ref {
			return run, true
		}
		if ref != "" && strings.HasPrefix(run.ID, ref) {
			found = run
			count++
		}
	}
	return found, count == 1
}
