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

// Package unit defines the measurement units attached to metrics.
//
// The package provides a closed set of common units (Watt, Joule, Second, ...)
// plus custom units identified by UCUM-style names. Units are small value
// types and can be compared with ==.
//
// Unique names follow the UCUM case-sensitive convention (e.g. "W" for Watt,
// "Cel" for degree Celsius), display names are what a human-facing output
// should print (e.g. "°C").
package unit
