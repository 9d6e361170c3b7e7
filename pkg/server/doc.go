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

// Package server provides the agent's HTTP introspection surface.
//
// Endpoints:
//
//   - GET /health - liveness probe, always healthy while the process runs
//   - GET /ready - readiness probe, ready once the pipeline has started
//   - GET /metrics - prometheus metrics, including the pipeline self-metrics
//   - GET /v1/elements - state of every registered pipeline element
//
// The /v1 endpoints go through the standard middleware chain: request id
// propagation, panic recovery, rate limiting, and request logging. Probe
// and metrics endpoints are served without rate limiting so orchestration
// probes cannot be starved by API traffic.
package server
