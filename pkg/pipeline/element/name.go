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

// Kind is the stage an element belongs to.
type Kind string

const (
	KindSource    Kind = "source"
	KindTransform Kind = "transform"
	KindOutput    Kind = "output"
)

// Kinds is the list of all element kinds.
var Kinds = []Kind{KindSource, KindTransform, KindOutput}

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// ParseKind parses a string into a Kind.
// Accepts the plural forms as well ("sources", "transforms", "outputs").
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "source", "sources", "src":
		return KindSource, true
	case "transform", "transforms", "tf":
		return KindTransform, true
	case "output", "outputs", "out":
		return KindOutput, true
	}
	return "", false
}

// Name uniquely identifies a pipeline element: the kind of stage it runs in,
// the plugin that registered it, and the element's own name within that
// plugin.
type Name struct {
	Kind    Kind
	Plugin  string
	Element string
}

// String returns "kind/plugin/element".
func (n Name) String() string {
	return string(n.Kind) + "/" + n.Plugin + "/" + n.Element
}

// SourceName builds the name of a source element.
func SourceName(plugin, element string) Name {
	return Name{Kind: KindSource, Plugin: plugin, Element: element}
}

// TransformName builds the name of a transform element.
func TransformName(plugin, element string) Name {
	return Name{Kind: KindTransform, Plugin: plugin, Element: element}
}

// OutputName builds the name of an output element.
func OutputName(plugin, element string) Name {
	return Name{Kind: KindOutput, Plugin: plugin, Element: element}
}
