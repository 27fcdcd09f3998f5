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
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/scylladb/rngbench/pkg/random"
)

var (
	level       string
	logFile     string
	metricsBind string
	forkChild   bool
)

func setupFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(&level, "level", "", "info", "Log level: debug, info, warn or error")
	cmd.PersistentFlags().
		StringVarP(&logFile, "log-file", "", "rngbench.log", "File the log is copied to, empty disables it")
	cmd.PersistentFlags().
		StringVarP(&metricsBind, "bind", "b", "", "Interface and port to serve prometheus metrics on, for example ':2112'. Empty disables it")
}

func allKindNames() []string {
	kinds := random.AllKinds()
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, k.String())
	}
	return names
}

// selectKinds parses names. When the user left the kind flag alone and a
// seed is set, thread-local generators are skipped since they can not be
// seeded.
func selectKinds(names []string, explicit, seeded bool) ([]random.Kind, error) {
	kinds, err := random.ParseKinds(names)
	if err != nil {
		return nil, err
	}

	if explicit || !seeded {
		return kinds, nil
	}

	out := kinds[:0]
	for _, k := range kinds {
		if k != random.KindThreadLocal {
			out = append(out, k)
		}
	}
	return out, nil
}

// parseTags turns key=value pairs into a map.
func parseTags(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	tags := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.Errorf("invalid tag %q, expected key=value", pair)
		}
		tags[key] = strings.TrimSpace(value)
	}
	return tags, nil
}
