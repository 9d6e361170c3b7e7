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

package pipeline

import (
	"log/slog"
	"sync"
	"time"

	"github.com/NVIDIA/osmet/pkg/errors"
	"github.com/NVIDIA/osmet/pkg/measurement"
	"github.com/NVIDIA/osmet/pkg/pipeline/element"
)

// commandOp is an operation sent to a running source task.
type commandOp uint8

const (
	opPause commandOp = iota
	opResume
	opStop
	opSetPeriod
	opTriggerNow
)

type sourceCommand struct {
	op     commandOp
	period time.Duration
}

// sourceHandle tracks one registered source and its scheduling state.
// Exactly one of src (managed) or autonomous is set.
type sourceHandle struct {
	name       element.Name
	src        element.Source
	autonomous element.AutonomousSource

	mu      sync.Mutex
	state   element.State
	trigger element.TriggerSpec

	startPaused bool
	commands    chan sourceCommand
	closeOnce   sync.Once
}

func (h *sourceHandle) managed() bool {
	return h.src != nil
}

// State returns the current lifecycle state.
func (h *sourceHandle) State() element.State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *sourceHandle) setState(s element.State) {
	h.mu.Lock()
	h.state = s
	h.mu.Unlock()
}

// transition validates and applies the lifecycle transition.
func (h *sourceHandle) transition(next element.State) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, err := h.state.Transition(next)
	if err != nil {
		return err
	}
	h.state = s
	return nil
}

func (h *sourceHandle) triggerSpec() element.TriggerSpec {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.trigger
}

func (h *sourceHandle) setTrigger(spec element.TriggerSpec) {
	h.mu.Lock()
	h.trigger = spec
	h.mu.Unlock()
}

// close runs the source's teardown hook, at most once.
func (h *sourceHandle) close() {
	h.closeOnce.Do(func() {
		var target any = h.src
		if h.autonomous != nil {
			target = h.autonomous
		}
		closeElement(h.name, target)
	})
}

// transformHandle tracks one registered transform.
type transformHandle struct {
	name element.Name
	tf   element.Transform

	mu        sync.Mutex
	state     element.State
	closeOnce sync.Once
}

func (h *transformHandle) State() element.State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *transformHandle) setState(s element.State) {
	h.mu.Lock()
	h.state = s
	h.mu.Unlock()
}

func (h *transformHandle) transition(next element.State) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, err := h.state.Transition(next)
	if err != nil {
		return err
	}
	h.state = s
	return nil
}

func (h *transformHandle) close() {
	h.closeOnce.Do(func() { closeElement(h.name, h.tf) })
}

// outputHandle tracks one registered output and its delivery queue.
type outputHandle struct {
	name element.Name
	out  element.Output

	mu        sync.Mutex
	state     element.State
	ch        chan *measurement.Buffer
	stop      chan struct{}
	stopOnce  sync.Once
	closeOnce sync.Once
}

func (h *outputHandle) State() element.State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *outputHandle) setState(s element.State) {
	h.mu.Lock()
	h.state = s
	h.mu.Unlock()
}

func (h *outputHandle) transition(next element.State) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, err := h.state.Transition(next)
	if err != nil {
		return err
	}
	h.state = s
	return nil
}

// requestStop signals the output task to drain its queue and exit.
func (h *outputHandle) requestStop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

func (h *outputHandle) close() {
	h.closeOnce.Do(func() { closeElement(h.name, h.out) })
}

// closeElement runs the optional Closer hook of an element, recovering
// panics so a broken teardown cannot take down shutdown.
func closeElement(name element.Name, v any) {
	c, ok := v.(element.Closer)
	if !ok {
		return
	}
	err := protect(name, func() error { return c.Close() })
	if err != nil {
		slog.Error("element teardown failed",
			slog.String("element", name.String()),
			slog.String("error", err.Error()))
	}
}

// protect invokes fn, converting a panic into an error so element failures
// stay contained to their own task.
func protect(name element.Name, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf(errors.ErrCodeInternal, "panic in %s: %v", name, r)
		}
	}()
	return fn()
}
