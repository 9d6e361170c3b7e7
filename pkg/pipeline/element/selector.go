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
	"strings"

	"github.com/NVIDIA/osmet/pkg/errors"
)

// Pattern matches an element or plugin name. Patterns are a deliberately
// small subset of globbing: exact, "prefix*", "*suffix", or "*".
type Pattern struct {
	kind    patternKind
	literal string
}

type patternKind uint8

const (
	patternExact patternKind = iota
	patternPrefix
	patternSuffix
	patternAny
)

// Any returns the pattern that matches every name.
func Any() Pattern {
	return Pattern{kind: patternAny}
}

// Exact returns the pattern that matches only the given name.
func Exact(name string) Pattern {
	return Pattern{kind: patternExact, literal: name}
}

// ParsePattern parses "name", "prefix*", "*suffix" or "*".
// A "*" anywhere else is rejected.
func ParsePattern(s string) (Pattern, error) {
	switch {
	case s == "":
		return Pattern{}, errors.New(errors.ErrCodeInvalidSelector, "empty name pattern")
	case s == "*":
		return Any(), nil
	case strings.HasSuffix(s, "*"):
		prefix := strings.TrimSuffix(s, "*")
		if strings.Contains(prefix, "*") {
			return Pattern{}, errors.Newf(errors.ErrCodeInvalidSelector, "invalid name pattern %q", s)
		}
		return Pattern{kind: patternPrefix, literal: prefix}, nil
	case strings.HasPrefix(s, "*"):
		suffix := strings.TrimPrefix(s, "*")
		if strings.Contains(suffix, "*") {
			return Pattern{}, errors.Newf(errors.ErrCodeInvalidSelector, "invalid name pattern %q", s)
		}
		return Pattern{kind: patternSuffix, literal: suffix}, nil
	case strings.Contains(s, "*"):
		return Pattern{}, errors.Newf(errors.ErrCodeInvalidSelector, "invalid name pattern %q", s)
	default:
		return Exact(s), nil
	}
}

// Matches reports whether the pattern accepts the given name.
func (p Pattern) Matches(name string) bool {
	switch p.kind {
	case patternAny:
		return true
	case patternPrefix:
		return strings.HasPrefix(name, p.literal)
	case patternSuffix:
		return strings.HasSuffix(name, p.literal)
	default:
		return p.literal == name
	}
}

// String returns the textual form of the pattern.
func (p Pattern) String() string {
	switch p.kind {
	case patternAny:
		return "*"
	case patternPrefix:
		return p.literal + "*"
	case patternSuffix:
		return "*" + p.literal
	default:
		return p.literal
	}
}

// Selector matches pipeline elements by kind, plugin and element name.
// A nil Kind matches every kind.
type Selector struct {
	// Kind restricts the match to one element kind; nil matches all kinds.
	Kind *Kind

	// Plugin matches the name of the plugin that registered the element.
	Plugin Pattern

	// Element matches the element's own name.
	Element Pattern
}

// SelectKind returns a selector matching every element of one kind.
func SelectKind(k Kind) Selector {
	return Selector{Kind: &k, Plugin: Any(), Element: Any()}
}

// ParseSelector parses a textual selector of the form "kind/plugin/element".
//
// Each name segment may be a literal, "prefix*", "*suffix" or "*"; the kind
// segment is a literal kind or "*". Trailing segments may be omitted and
// default to "*": "source" is equivalent to "source/*/*".
func ParseSelector(s string) (Selector, error) {
	if s == "" {
		return Selector{}, errors.New(errors.ErrCodeInvalidSelector, "empty selector")
	}
	parts := strings.SplitN(s, "/", 3)

	var sel Selector
	if parts[0] != "*" {
		k, ok := ParseKind(parts[0])
		if !ok {
			return Selector{}, errors.Newf(errors.ErrCodeInvalidSelector, "unknown element kind %q", parts[0])
		}
		sel.Kind = &k
	}

	sel.Plugin = Any()
	sel.Element = Any()
	var err error
	if len(parts) >= 2 {
		if sel.Plugin, err = ParsePattern(parts[1]); err != nil {
			return Selector{}, err
		}
	}
	if len(parts) == 3 {
		if sel.Element, err = ParsePattern(parts[2]); err != nil {
			return Selector{}, err
		}
	}
	return sel, nil
}

// Matches reports whether the selector accepts the given element name.
func (s Selector) Matches(n Name) bool {
	if s.Kind != nil && *s.Kind != n.Kind {
		return false
	}
	return s.Plugin.Matches(n.Plugin) && s.Element.Matches(n.Element)
}

// String returns the textual form of the selector.
func (s Selector) String() string {
	kind := "*"
	if s.Kind != nil {
		kind = s.Kind.String()
	}
	return kind + "/" + s.Plugin.String() + "/" + s.Element.String()
}
