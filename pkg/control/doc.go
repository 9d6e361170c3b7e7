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

// Package control serves a line-oriented command protocol on a unix socket.
//
// One command per line. The grammar:
//
//	shutdown
//	stop
//	control <selector> <operation> [argument]
//
// "shutdown" and "stop" are synonyms; both drain and stop the whole
// pipeline. "control" applies an operation to every element matched by the
// selector (kind[/plugin[/element]], with * wildcards):
//
//	control source/rapl pause
//	control source/*/energy set-period 500ms
//	control output stop
//
// Operations: pause (disable), resume (enable), stop, set-period
// (set-poll-interval) with a duration argument, trigger-now.
//
// The server replies one line per matched element, "ok <element>" or
// "error <element>: <message>", so a wildcard command reports partial
// failures per element. A selector that matches nothing is a no-op and
// replies a bare "ok". A request-level failure (bad syntax, rejected
// command) replies a single "error: <message>" line.
//
// Connections are rate limited and disconnected after a long idle period.
package control
