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

package unit

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		uniqueName string
		want       Unit
		predefined bool
	}{
		{"unity", "1", Unity, true},
		{"second", "s", Second, true},
		{"watt", "W", Watt, true},
		{"joule", "J", Joule, true},
		{"celsius", "Cel", DegreeCelsius, true},
		{"fahrenheit", "[degF]", DegreeFahrenheit, true},
		{"watt hour", "W.h", WattHour, true},
		{"custom", "By", Custom("By", "By"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.uniqueName)
			if ok != tt.predefined {
				t.Errorf("Parse(%q) predefined = %v, want %v", tt.uniqueName, ok, tt.predefined)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.uniqueName, got, tt.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		name string
		unit Unit
		want string
	}{
		{"unity renders empty", Unity, ""},
		{"celsius uses display name", DegreeCelsius, "°C"},
		{"watt hour uses display name", WattHour, "Wh"},
		{"custom without display falls back", Custom("nW", ""), "nW"},
		{"custom with display", Custom("By", "B"), "B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.unit.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestComparable(t *testing.T) {
	a, _ := Parse("W")
	if a != Watt {
		t.Error("parsed watt should equal the predefined watt")
	}
	if Custom("W", "watts") == Watt {
		t.Error("units with different display names must not compare equal")
	}
}
