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

// Buffer is an ordered collection of points flowing through the pipeline.
//
// A buffer is exclusively owned by one pipeline stage at a time: the
// scheduler builds it at flush, each transform mutates it in turn, and every
// output receives its own clone. Point order is preserved through the
// transform chain unless a transform explicitly reorders.
type Buffer struct {
	points []Point
}

// NewBuffer creates an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// NewBufferWithCapacity creates an empty buffer with preallocated capacity.
func NewBufferWithCapacity(capacity int) *Buffer {
	return &Buffer{points: make([]Point, 0, capacity)}
}

// Len returns the number of points in the buffer.
func (b *Buffer) Len() int {
	return len(b.points)
}

// Empty reports whether the buffer holds no points.
func (b *Buffer) Empty() bool {
	return len(b.points) == 0
}

// Reserve grows the buffer capacity by at least additional points.
func (b *Buffer) Reserve(additional int) {
	if cap(b.points)-len(b.points) < additional {
		grown := make([]Point, len(b.points), len(b.points)+additional)
		copy(grown, b.points)
		b.points = grown
	}
}

// Push appends a point to the buffer. Ownership of the point transfers to
// the buffer; the caller must not touch it afterwards.
func (b *Buffer) Push(p Point) {
	b.points = append(b.points, p)
}

// Points returns the underlying point slice for in-place iteration and
// mutation by transforms. The slice is valid until the next Push.
func (b *Buffer) Points() []Point {
	return b.points
}

// Retain keeps only the points for which keep returns true,
// preserving order.
func (b *Buffer) Retain(keep func(*Point) bool) {
	kept := b.points[:0]
	for i := range b.points {
		if keep(&b.points[i]) {
			kept = append(kept, b.points[i])
		}
	}
	// Zero the tail so dropped attribute maps can be collected.
	for i := len(kept); i < len(b.points); i++ {
		b.points[i] = Point{}
	}
	b.points = kept
}

// Merge moves all points from other into b, leaving other empty.
func (b *Buffer) Merge(other *Buffer) {
	b.points = append(b.points, other.points...)
	other.Clear()
}

// Clear removes all points, keeping the allocated capacity.
func (b *Buffer) Clear() {
	for i := range b.points {
		b.points[i] = Point{}
	}
	b.points = b.points[:0]
}

// Clone returns a deep copy of the buffer. Mutating the clone (including
// point attributes) does not affect the original, so clones can be handed to
// concurrent consumers.
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{points: make([]Point, len(b.points))}
	for i := range b.points {
		out.points[i] = b.points[i].clone()
	}
	return out
}

// Accumulator collects the points produced by a source during one poll.
//
// It is append-only: a source pushes points and cannot read them back.
// The pipeline hands an accumulator to a source for the duration of a single
// Poll call; retaining it past the call is a bug.
type Accumulator struct {
	buf *Buffer
}

// NewAccumulator creates an accumulator that appends into buf.
func NewAccumulator(buf *Buffer) *Accumulator {
	return &Accumulator{buf: buf}
}

// Push appends a point. Ownership of the point transfers on push.
func (a *Accumulator) Push(p Point) {
	a.buf.Push(p)
}

// Len returns the number of points pushed since the accumulator was created,
// plus any points already buffered from earlier polls of the same cycle.
func (a *Accumulator) Len() int {
	return a.buf.Len()
}
