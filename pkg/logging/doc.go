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

// Package logging provides structured logging utilities for osmet.
//
// It wraps the standard library slog package with project defaults:
// structured JSON to stderr, module/version context on every record,
// LOG_LEVEL environment configuration, and source location tracking for
// debug logs.
//
// Supported log levels (case-insensitive): DEBUG, INFO (default),
// WARN/WARNING, ERROR.
//
// Usage:
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("osmet", version.GetInfo().Version)
//
//	    slog.Info("agent starting", "config", path)
//	}
//
// The LOG_LEVEL environment variable controls verbosity:
//
//	LOG_LEVEL=debug osmet run
//
// Output format:
//
//	{
//	    "time": "2025-01-15T10:30:00.123Z",
//	    "level": "INFO",
//	    "msg": "pipeline started",
//	    "module": "osmet",
//	    "version": "v1.0.0",
//	    "sources": 3
//	}
package logging
