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

import "github.com/NVIDIA/osmet/pkg/errors"

// State is the lifecycle state of a pipeline element.
//
// The state machine is Created -> Running <-> Paused -> Stopped, with
// Stopped terminal. The element's stage function (Poll, Apply, Write) is
// only ever invoked in the Running state.
type State string

const (
	// StateCreated is the initial state, before the pipeline starts.
	StateCreated State = "created"
	// StateRunning means the element is scheduled.
	StateRunning State = "running"
	// StatePaused means scheduling is suspended; the element's own instance
	// data is retained.
	StatePaused State = "paused"
	// StateStopped is terminal.
	StateStopped State = "stopped"
)

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// CanTransition reports whether the transition from s to next is allowed.
//
//   - resume: only Paused -> Running
//   - pause: only Running -> Paused
//   - stop: from any state; idempotent once Stopped
//   - start: Created -> Running or Created -> Paused
func (s State) CanTransition(next State) bool {
	switch next {
	case StateRunning:
		return s == StateCreated || s == StatePaused
	case StatePaused:
		return s == StateCreated || s == StateRunning
	case StateStopped:
		return true
	default:
		return false
	}
}

// Transition validates the transition from s to next and returns next,
// or an ErrCodeUnsupportedOperation error if the transition is not allowed.
// Stop on an already-stopped element is allowed (idempotent).
func (s State) Transition(next State) (State, error) {
	if s == StateStopped && next == StateStopped {
		return StateStopped, nil
	}
	if s == StateStopped || !s.CanTransition(next) {
		return s, errors.Newf(errors.ErrCodeUnsupportedOperation,
			"invalid state transition %s -> %s", s, next)
	}
	return next, nil
}
