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

// Package plugin defines the contract between the pipeline core and the
// statically linked components that feed it.
//
// A plugin contributes metrics and pipeline elements during the registration
// phase, before the scheduler starts. Registration goes through a Registrar,
// which scopes every element under the plugin's name and can be configured
// to tolerate individual element failures (skip-failed policy) or to apply
// host-provided trigger overrides.
//
// # Two-phase start-up
//
//	reg := plugin.NewRegistrar("rapl", pipe, events)
//	if err := p.Start(reg); err != nil { ... }   // phase 1: registration
//	pipe.Start(ctx)                              // phase 2: scheduling
//
// After the pipeline starts, plugins interact with it only through their
// registered elements and through events published on the bus, such as the
// end-of-measurement notification sent during the shutdown drain.
package plugin
