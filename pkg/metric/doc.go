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

// Package metric provides the metric registry: stable ids for named, typed,
// unit-tagged metrics.
//
// Plugins register metrics during start-up and receive an opaque
// measurement.MetricID that stays valid for the lifetime of the process.
// Registration of an identical definition is idempotent; a name clash with a
// different value type or unit is rejected. After start-up the registry is
// read-only and shared by every pipeline stage for descriptor lookups.
package metric
