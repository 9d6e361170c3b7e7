// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package element

import (
	"context"
	"errors"

	"github.com/NVIDIA/osmet/pkg/measurement"
)

// ErrStopPolling is the sentinel a source returns from Poll to stop its own
// scheduling. It is not treated as a failure: the source's task flushes any
// buffered points and transitions to Stopped.
var ErrStopPolling = errors.New("source requested to stop polling")

// Source produces measurement points by polling a hardware or software
// counter.
//
// Poll appends zero or more points to the accumulator. It is invoked from a
// single goroutine, never concurrently with itself, and should not block
// beyond the source's poll interval: doing so delays this source's own
// schedule (but never other sources). The accumulator must not be retained
// past the call.
type Source interface {
	Poll(ctx context.Context, acc *measurement.Accumulator, ts measurement.Timestamp) error
}

// Transform mutates a buffer of points in place (filter, enrich, estimate).
//
// Apply is invoked synchronously inside the pipeline task that triggered the
// flush, with exclusive ownership of the buffer for the duration of the
// call. The buffer must not be retained past the call.
type Transform interface {
	Apply(ctx context.Context, buf *measurement.Buffer) error
}

// Output consumes a buffer of points for export or persistence.
//
// Write receives its own copy of the flushed buffer and must treat it as
// read-only. Outputs run concurrently with each other; a failure is local to
// the output and only skips that batch.
type Output interface {
	Write(ctx context.Context, buf *measurement.Buffer) error
}

// AutonomousSource is a source that schedules itself instead of being
// driven by the pipeline's poll timer.
//
// Run must block until the context is cancelled or the source is done,
// producing buffers and handing them downstream through emit. Ownership of
// an emitted buffer transfers on the call. Autonomous sources do not
// support pause, set-period or trigger-now.
type AutonomousSource interface {
	Run(ctx context.Context, emit func(*measurement.Buffer)) error
}

// Closer is the optional teardown hook an element can implement.
// Close runs exactly once when the element is stopped or the pipeline shuts
// down, even after a prior failure.
type Closer interface {
	Close() error
}
