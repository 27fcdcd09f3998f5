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

package random

import (
	"github.com/pkg/errors"
)

var (
	ErrUnknownGeneratorKind = errors.New("unknown generator kind")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrGeneratorUnavailable = errors.New("generator unavailable")
	ErrInvalidRange         = errors.New("invalid range")
)

// unavailable keeps ErrGeneratorUnavailable matchable with errors.Is while
// carrying the underlying cause in the message.
func unavailable(cause error, format string, args ...any) error {
	return errors.WithMessagef(ErrGeneratorUnavailable, format+": %v", append(args, cause)...)
}
