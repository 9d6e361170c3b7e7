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

// Package pipeline implements the measurement pipeline engine: element
// scheduling, buffering, routing and the runtime control plane.
//
// # Topology
//
// Each managed source runs in its own goroutine, driven by its own poll
// timer; sources are not synchronized with each other. At every flush
// boundary the source's accumulated points are handed to the routing task,
// which runs the buffer through every transform sequentially (in
// registration order) and then fans independent clones out to the outputs.
// Every output consumes its own channel in its own goroutine, so a slow or
// broken output never blocks the others or the transform chain.
//
//	source ──┐
//	source ──┼─> route ──> transform ──> transform ──┬─> output
//	source ──┘                                       └─> output
//
// # Isolation
//
// An error or panic inside Poll, Apply or Write is recovered at the task
// boundary, logged with the element's identity, and never propagates to
// sibling elements. The element continues on its next tick; a failed output
// merely skips that batch.
//
// # Control
//
// Elements are addressed by selectors ("kind/plugin/element" with
// wildcards). Supported operations are pause/resume (any kind), stop
// (sources and outputs), set-period and trigger-now (managed sources only).
// Commands matching several elements report success or failure per element.
//
// # Lifecycle
//
// Registration happens before Start; once started, the element set is fixed
// except for removal via stop. Shutdown stops sources (letting in-flight
// polls complete), performs a final flush so buffered points are not
// dropped, notifies shutdown listeners, then runs every element's teardown
// hook exactly once.
package pipeline
