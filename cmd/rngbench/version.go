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
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type VersionInfo struct {
	Version    string `json:"version"`
	CommitDate string `json:"commit_date"`
	CommitSHA  string `json:"commit_sha"`
	GoVersion  string `json:"go_version"`
}

func (v VersionInfo) String() string {
	return fmt.Sprintf("rngbench %s (commit %s, %s) built with %s", v.Version, v.CommitSHA, v.CommitDate, v.GoVersion)
}

func NewVersionInfo() VersionInfo {
	ver := version
	if ver == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
			ver = info.Main.Version
		}
	}

	return VersionInfo{
		Version:    ver,
		CommitDate: date,
		CommitSHA:  commit,
		GoVersion:  runtime.Version(),
	}
}

func Version() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := NewVersionInfo()

			if !asJSON {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), info.String())
				return err
			}

			data, err := json.Marshal(info)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}

	cmd.Flags().BoolVarP(&asJSON, "json", "", false, "Print version information as JSON")
	return cmd
}
