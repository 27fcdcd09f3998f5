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
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Go benchmark output format:
// BenchmarkName-8         1000000              1234 ns/op             456 B/op          78 allocs/op
var benchmarkRegex = regexp.MustCompile(`^(Benchmark\S+?)(?:-(\d+))?\s+(\d+)\s+([\d.]+)\s+ns/op`)

// ParseBenchmarkOutput imports `go test -bench` output. Every benchmark line
// becomes an entry scored in operations per second.
func ParseBenchmarkOutput(reader io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(reader)

	for scanner.Scan() {
		line := scanner.Text()

		if !strings.HasPrefix(line, "Benchmark") {
			continue
		}

		entry, err := parseBenchmarkLine(line)
		if err != nil {
			continue
		}

		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "error reading benchmark output")
	}

	return entries, nil
}

func parseBenchmarkLine(line string) (Entry, error) {
	matches := benchmarkRegex.FindStringSubmatch(line)
	if matches == nil {
		return Entry{}, errors.Errorf("line does not match benchmark format: %s", line)
	}

	entry := Entry{
		Name: matches[1],
		Unit: UnitOpsPerSecond,
	}

	// -8 is GOMAXPROCS
	if matches[2] != "" {
		if procs, err := strconv.Atoi(matches[2]); err == nil {
			entry.Threads = procs
		}
	}

	nsPerOp, err := strconv.ParseFloat(matches[4], 64)
	if err != nil {
		return Entry{}, errors.Wrapf(err, "invalid ns/op in %q", line)
	}
	if nsPerOp > 0 {
		entry.Score = 1_000_000_000 / nsPerOp
	}

	return entry, nil
}
