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

// Package element defines the capability contracts of pipeline elements and
// their shared vocabulary: kinds, names, selectors, lifecycle states and
// source trigger specs.
//
// An element is one of three kinds:
//
//   - Source: polled periodically, appends points to an accumulator.
//   - Transform: mutates a flushed buffer in place.
//   - Output: consumes a read-only buffer for export.
//
// Elements may additionally implement Closer for a teardown hook that runs
// exactly once at stop or shutdown.
//
// Elements are addressed by a structural Name ("kind/plugin/element") and
// matched by Selector patterns where each segment may be a literal, a
// "prefix*"/"*suffix" glob, or "*".
package element
