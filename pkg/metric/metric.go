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

package metric

import (
	"fmt"
	"strings"

	"github.com/NVIDIA/osmet/pkg/measurement"
	"github.com/NVIDIA/osmet/pkg/unit"
)

// Metric describes a registered metric: a named, typed, unit-tagged
// measurement kind. Descriptors are immutable after registration.
type Metric struct {
	// Name uniquely identifies the metric within the registry.
	Name string `json:"name" yaml:"name"`

	// ValueType is the declared type of the metric's values, fixed forever.
	ValueType measurement.ValueType `json:"value_type" yaml:"value_type"`

	// Unit is the unit of measurement.
	Unit unit.Unit `json:"unit" yaml:"unit"`

	// Description is a free-text description for display purposes.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// sameDefinition reports whether two descriptors are interchangeable:
// same name, same value type, same unit. Descriptions do not participate.
func (m Metric) sameDefinition(other Metric) bool {
	return m.Name == other.Name &&
		m.ValueType == other.ValueType &&
		m.Unit.UniqueName == other.Unit.UniqueName
}

// FormattedName returns the display name of the metric suffixed with its
// unit, e.g. "cpu_energy_J". Metrics with the dimensionless unit keep
// their bare name.
func (m Metric) FormattedName() string {
	u := m.Unit.String()
	if u == "" {
		return m.Name
	}
	// Sanitize unit display names that contain characters unsuitable for
	// identifier-style names (e.g. "°C").
	u = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return -1
		}
	}, u)
	if u == "" {
		return m.Name
	}
	return fmt.Sprintf("%s_%s", m.Name, u)
}
