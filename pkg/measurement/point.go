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

package measurement

// Point is a single measurement.
//
// A point is mutable while a source assembles it and must be treated as
// immutable once pushed into an accumulator or buffer; transforms are the
// only downstream stage allowed to mutate points, and they do so while
// holding exclusive ownership of the buffer.
type Point struct {
	// Metric is the registered metric this point belongs to.
	Metric MetricID

	// Timestamp is when the measurement was taken.
	Timestamp Timestamp

	// Value is the measured value, tagged with the metric's declared type.
	Value Value

	// Resource is what was measured.
	Resource Resource

	// Consumer is what the measurement is attributed to.
	Consumer Consumer

	// attrs holds optional attributes, keyed by unique names.
	// Lazily allocated: most points carry no attributes.
	attrs map[string]AttrValue
}

// NewPointU64 creates a point with an unsigned integer value.
// The metric must have been registered with TypeU64.
func NewPointU64(m MetricID, ts Timestamp, value uint64, res Resource, cons Consumer) Point {
	return Point{Metric: m, Timestamp: ts, Value: U64(value), Resource: res, Consumer: cons}
}

// NewPointF64 creates a point with a float value.
// The metric must have been registered with TypeF64.
func NewPointF64(m MetricID, ts Timestamp, value float64, res Resource, cons Consumer) Point {
	return Point{Metric: m, Timestamp: ts, Value: F64(value), Resource: res, Consumer: cons}
}

// SetAttr sets an attribute on the point, replacing any previous value for
// the same key. Insertion order is irrelevant.
func (p *Point) SetAttr(key string, value AttrValue) {
	if p.attrs == nil {
		p.attrs = make(map[string]AttrValue, 4)
	}
	p.attrs[key] = value
}

// WithAttr sets an attribute and returns the point, for chained construction.
func (p Point) WithAttr(key string, value AttrValue) Point {
	p.SetAttr(key, value)
	return p
}

// Attr returns the attribute for the given key, or nil if not set.
func (p *Point) Attr(key string) AttrValue {
	return p.attrs[key]
}

// AttrLen returns the number of attributes on the point.
func (p *Point) AttrLen() int {
	return len(p.attrs)
}

// Attrs calls fn for every attribute of the point, in unspecified order.
func (p *Point) Attrs(fn func(key string, value AttrValue)) {
	for k, v := range p.attrs {
		fn(k, v)
	}
}

// clone returns a copy of the point whose attribute map does not alias p's.
func (p *Point) clone() Point {
	out := *p
	if p.attrs != nil {
		out.attrs = make(map[string]AttrValue, len(p.attrs))
		for k, v := range p.attrs {
			out.attrs[k] = v
		}
	}
	return out
}
