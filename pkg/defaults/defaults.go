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

package defaults

import "time"

// Pipeline scheduling defaults.
const (
	// PollInterval is the poll period used when a source registers
	// without an explicit trigger configuration.
	PollInterval = 1 * time.Second

	// FlushChannelCapacity bounds the queue between source tasks and the
	// routing task. Sources block when it is full, which applies
	// backpressure instead of growing memory without bound.
	FlushChannelCapacity = 256

	// OutputChannelCapacity bounds each output's delivery queue. When an
	// output falls behind, batches addressed to it are dropped rather
	// than stalling the router or the other outputs.
	OutputChannelCapacity = 64

	// SourceCommandCapacity bounds the per-source control command queue.
	SourceCommandCapacity = 8
)

// Control socket defaults.
const (
	// ControlReadTimeout is the per-line read deadline on control
	// connections. Idle clients are disconnected after this long.
	ControlReadTimeout = 5 * time.Minute

	// ControlMaxLineBytes is the maximum accepted length of a single
	// control command line.
	ControlMaxLineBytes = 4096

	// ControlRateLimit is the sustained command rate allowed per
	// control connection, in commands per second.
	ControlRateLimit = 20

	// ControlRateBurst is the command burst allowed per control
	// connection.
	ControlRateBurst = 40
)

// HTTP server defaults.
const (
	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 10 * time.Second

	// WriteTimeout is the maximum duration before timing out response writes.
	WriteTimeout = 30 * time.Second

	// IdleTimeout is the maximum time to wait for the next request on
	// a keep-alive connection.
	IdleTimeout = 120 * time.Second

	// ReadHeaderTimeout is the maximum duration for reading request headers.
	ReadHeaderTimeout = 5 * time.Second

	// RequestRateLimit is the sustained request rate allowed per server,
	// in requests per second.
	RequestRateLimit = 100

	// RequestRateBurst is the request burst allowed per server.
	RequestRateBurst = 200
)

// Agent lifecycle defaults.
const (
	// ShutdownTimeout bounds the graceful drain on termination. Elements
	// that have not finished by then are abandoned.
	ShutdownTimeout = 30 * time.Second
)
