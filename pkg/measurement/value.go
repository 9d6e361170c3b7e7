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

import (
	"fmt"
	"strconv"
	"time"
)

// MetricID is an opaque handle to a registered metric.
// IDs are assigned by the metric registry at start-up and remain valid for
// the lifetime of the process.
type MetricID uint64

// ValueType is the declared type of a metric's values.
// A metric's value type is fixed at registration and never varies across points.
type ValueType string

const (
	// TypeU64 marks metrics whose values are unsigned 64-bit integers.
	TypeU64 ValueType = "u64"
	// TypeF64 marks metrics whose values are 64-bit floats.
	TypeF64 ValueType = "f64"
)

// String returns the string representation of the value type.
func (vt ValueType) String() string {
	return string(vt)
}

// ParseValueType parses a string into a ValueType.
// Returns the type and true on success, or empty type and false otherwise.
func ParseValueType(s string) (ValueType, bool) {
	switch ValueType(s) {
	case TypeU64:
		return TypeU64, true
	case TypeF64:
		return TypeF64, true
	}
	return "", false
}

// Value is a measurement value tagged with its type.
// The tag must match the declared type of the metric the value belongs to;
// the pipeline drops mismatched points before they reach transforms or
// outputs rather than reinterpreting them.
type Value struct {
	vt ValueType
	u  uint64
	f  float64
}

// U64 creates an unsigned integer value.
func U64(v uint64) Value {
	return Value{vt: TypeU64, u: v}
}

// F64 creates a float value.
func F64(v float64) Value {
	return Value{vt: TypeF64, f: v}
}

// Type returns the tag of the value.
func (v Value) Type() ValueType {
	return v.vt
}

// AsU64 returns the unsigned integer value and true if the value is tagged
// TypeU64, zero and false otherwise.
func (v Value) AsU64() (uint64, bool) {
	return v.u, v.vt == TypeU64
}

// AsF64 returns the float value and true if the value is tagged TypeF64,
// zero and false otherwise.
func (v Value) AsF64() (float64, bool) {
	return v.f, v.vt == TypeF64
}

// Any returns the value as an untyped any.
func (v Value) Any() any {
	if v.vt == TypeU64 {
		return v.u
	}
	return v.f
}

// String returns the string representation of the value.
func (v Value) String() string {
	if v.vt == TypeU64 {
		return strconv.FormatUint(v.u, 10)
	}
	return strconv.FormatFloat(v.f, 'g', -1, 64)
}

// Timestamp is the time at which a measurement was taken.
//
// Monotonic ordering is only meaningful within a single source's stream;
// timestamps of different sources are not synchronized.
type Timestamp struct {
	t time.Time
}

// Now returns the current time as a Timestamp.
func Now() Timestamp {
	return Timestamp{t: time.Now()}
}

// TimestampOf wraps a time.Time into a Timestamp.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp{t: t}
}

// Time returns the timestamp as a time.Time.
func (ts Timestamp) Time() time.Time {
	return ts.t
}

// Unix returns the timestamp as seconds and nanoseconds since the Unix epoch.
func (ts Timestamp) Unix() (sec int64, nsec int64) {
	return ts.t.Unix(), int64(ts.t.Nanosecond())
}

// Before reports whether ts is before other.
func (ts Timestamp) Before(other Timestamp) bool {
	return ts.t.Before(other.t)
}

// String returns the RFC 3339 representation of the timestamp.
func (ts Timestamp) String() string {
	return ts.t.Format(time.RFC3339Nano)
}

// AttrValue is an attribute value attached to a point.
// The closed set of implementations is AttrU64, AttrF64, AttrBool and AttrStr.
type AttrValue interface {
	isAttr()

	// Any returns the underlying value.
	Any() any

	// String returns the string representation of the value.
	String() string
}

type attrScalar[T uint64 | float64 | bool | string] struct {
	v T
}

func (attrScalar[T]) isAttr() {}

func (a attrScalar[T]) Any() any { return a.v }

func (a attrScalar[T]) String() string { return fmt.Sprintf("%v", a.v) }

// AttrU64 creates an unsigned integer attribute value.
func AttrU64(v uint64) AttrValue { return attrScalar[uint64]{v: v} }

// AttrF64 creates a float attribute value.
func AttrF64(v float64) AttrValue { return attrScalar[float64]{v: v} }

// AttrBool creates a boolean attribute value.
func AttrBool(v bool) AttrValue { return attrScalar[bool]{v: v} }

// AttrStr creates a string attribute value.
func AttrStr(v string) AttrValue { return attrScalar[string]{v: v} }
