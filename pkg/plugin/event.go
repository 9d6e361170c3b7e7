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

package plugin

import (
	"sync"
	"time"
)

// EventKind classifies pipeline events.
type EventKind string

const (
	// EndOfMeasurement is published once during shutdown, after the final
	// flush has been delivered downstream and before element teardown. A
	// plugin may use it for a last cross-cutting action, such as tagging
	// outstanding consumer-level data.
	EndOfMeasurement EventKind = "end_of_measurement"
)

// Event is one pipeline notification.
type Event struct {
	Kind EventKind
	Time time.Time
}

// EventBus delivers events to subscribers synchronously, in subscription
// order. Safe for concurrent use.
type EventBus[E any] struct {
	mu   sync.RWMutex
	subs []func(E)
}

// NewEventBus creates an empty bus.
func NewEventBus[E any]() *EventBus[E] {
	return &EventBus[E]{}
}

// Subscribe registers a callback. Callbacks run on the publisher's
// goroutine and must not block.
func (b *EventBus[E]) Subscribe(fn func(E)) {
	b.mu.Lock()
	b.subs = append(b.subs, fn)
	b.mu.Unlock()
}

// Publish delivers the event to every subscriber.
func (b *EventBus[E]) Publish(e E) {
	b.mu.RLock()
	subs := b.subs
	b.mu.RUnlock()
	for _, fn := range subs {
		fn(e)
	}
}
