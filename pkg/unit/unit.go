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

// Unit identifies the unit of measurement of a metric.
//
// Units are comparable: two units are the same if and only if their unique
// names are equal. Use Unity for dimensionless metrics, not the zero value.
type Unit struct {
	// UniqueName is the UCUM case-sensitive name of the unit.
	UniqueName string `json:"unique_name" yaml:"unique_name"`

	// DisplayName is the human-readable name of the unit.
	DisplayName string `json:"display_name,omitempty" yaml:"display_name,omitempty"`
}

// The closed set of predefined units.
var (
	// Unity is the dimensionless unit, for counts and ratios.
	Unity = Unit{UniqueName: "1", DisplayName: ""}
	// Second is the SI unit of time.
	Second = Unit{UniqueName: "s", DisplayName: "s"}
	// Watt is the SI unit of power.
	Watt = Unit{UniqueName: "W", DisplayName: "W"}
	// Joule is the SI unit of energy.
	Joule = Unit{UniqueName: "J", DisplayName: "J"}
	// Volt is the SI unit of electric potential.
	Volt = Unit{UniqueName: "V", DisplayName: "V"}
	// Ampere is the SI unit of electric current.
	Ampere = Unit{UniqueName: "A", DisplayName: "A"}
	// Hertz is the SI unit of frequency.
	Hertz = Unit{UniqueName: "Hz", DisplayName: "Hz"}
	// DegreeCelsius is a unit of temperature.
	DegreeCelsius = Unit{UniqueName: "Cel", DisplayName: "°C"}
	// DegreeFahrenheit is a unit of temperature.
	DegreeFahrenheit = Unit{UniqueName: "[degF]", DisplayName: "°F"}
	// WattHour is a non-SI unit of energy.
	WattHour = Unit{UniqueName: "W.h", DisplayName: "Wh"}
)

// predefined is the list of all built-in units, used by Parse.
var predefined = []Unit{
	Unity,
	Second,
	Watt,
	Joule,
	Volt,
	Ampere,
	Hertz,
	DegreeCelsius,
	DegreeFahrenheit,
	WattHour,
}

// Custom creates a unit that is not part of the predefined set.
// The uniqueName should follow the UCUM convention; the displayName
// is what outputs print and may be empty.
func Custom(uniqueName, displayName string) Unit {
	return Unit{UniqueName: uniqueName, DisplayName: displayName}
}

// Parse resolves a UCUM unique name into a Unit.
// Returns the Unit and true if the name matches a predefined unit,
// or a Custom unit with the given name and false otherwise.
func Parse(uniqueName string) (Unit, bool) {
	for _, u := range predefined {
		if u.UniqueName == uniqueName {
			return u, true
		}
	}
	return Custom(uniqueName, uniqueName), false
}

// String returns the display name of the unit, falling back to the unique
// name when no display name is set. Unity renders as an empty string so that
// formatted metric names like "{name}_{unit}" degrade gracefully.
func (u Unit) String() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.UniqueName == Unity.UniqueName {
		return ""
	}
	return u.UniqueName
}
