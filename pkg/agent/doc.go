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

// Package agent assembles the measurement pipeline into a runnable host
// process.
//
// An Agent owns one pipeline, the plugins that feed it, the control socket,
// and the HTTP introspection server. Start-up proceeds in two phases: every
// plugin registers its metrics and elements first, and only when all
// registrations have succeeded does the scheduler start. A plugin marked
// optional in the configuration may fail registration without aborting
// start-up.
//
// Shutdown is triggered by SIGINT/SIGTERM, by the "shutdown" control
// command, or by cancelling the context passed to Run. The agent then
// drains the pipeline (final flush, end-of-measurement event, element
// teardown), stops the servers, and stops the plugins in reverse
// registration order. When running under systemd, readiness and stopping
// are reported via sd_notify.
package agent
