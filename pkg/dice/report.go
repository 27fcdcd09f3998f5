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

package dice

import (
	"fmt"
	"io"
)

// Print writes a result the way the sanity check has always reported it:
// a header, the frequency table and the mean absolute deviation.
func Print(w io.Writer, header string, r Result) error {
	_, err := fmt.Fprintf(w, "%s\n%s\nMean absolute deviation: %d (%.3f%%)\n",
		header, r.Table, r.MeanAbsoluteDeviation, r.DeviationRatio()*100)
	return err
}
