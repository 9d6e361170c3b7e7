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

// Package measurement defines the value types that flow through the pipeline:
// points, accumulators and buffers, along with the resources and consumers
// that measurements are attached to.
//
// # Data model
//
// A Point is a single measurement: a metric id, a timestamp, a typed value
// (uint64 or float64, fixed per metric), the Resource that was measured, the
// Consumer the measurement is attributed to, and optional attributes.
//
//	p := measurement.NewPointF64(id, measurement.Now(), 12.5,
//	    measurement.CpuPackage(0), measurement.ConsumerProcess(1234)).
//	    WithAttr("domain", measurement.AttrStr("pkg"))
//
// Resource and Consumer are orthogonal: "energy of CPU package 0 attributed
// to process 1234" carries CpuPackage(0) as the resource and
// ConsumerProcess(1234) as the consumer.
//
// # Ownership
//
// Points move through the pipeline by transfer, never by sharing:
//
//   - An Accumulator is handed to a source for the duration of one poll.
//     The source appends points and cannot read them back.
//   - A Buffer is owned by the scheduler between flush and delivery. It is
//     handed to each transform in turn for in-place mutation, then cloned
//     for every output.
//
// Nothing in this package is safe for concurrent use; the pipeline
// guarantees exclusive ownership instead.
package measurement
