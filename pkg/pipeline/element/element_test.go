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

package element

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"source", KindSource, true},
		{"sources", KindSource, true},
		{"src", KindSource, true},
		{"transform", KindTransform, true},
		{"transforms", KindTransform, true},
		{"output", KindOutput, true},
		{"outputs", KindOutput, true},
		{"out", KindOutput, true},
		{"sink", "", false},
		{"", "", false},
		{"Source", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseKind(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNameString(t *testing.T) {
	n := SourceName("rapl", "pkg-energy")
	assert.Equal(t, "source/rapl/pkg-energy", n.String())
	assert.Equal(t, "transform/calc/ratio", TransformName("calc", "ratio").String())
	assert.Equal(t, "output/csv/points", OutputName("csv", "points").String())
}
