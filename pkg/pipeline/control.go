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
	"time"

	"github.com/NVIDIA/osmet/pkg/errors"
	"github.com/NVIDIA/osmet/pkg/pipeline/element"
)

// ControlOp is a runtime operation applied to pipeline elements.
type ControlOp string

const (
	// OpPause suspends scheduling of an element; its instance data is kept.
	OpPause ControlOp = "pause"
	// OpResume restarts scheduling of a paused element.
	OpResume ControlOp = "resume"
	// OpStop permanently stops a source or output. Stopping a source
	// flushes its remaining buffered points first.
	OpStop ControlOp = "stop"
	// OpSetPeriod changes the poll interval of a managed source.
	OpSetPeriod ControlOp = "set-period"
	// OpTriggerNow polls a managed source out of cycle. The source must
	// have opted in via TriggerSpec.ManualTrigger.
	OpTriggerNow ControlOp = "trigger-now"
)

// ParseControlOp parses an operation name, accepting the accepted synonyms
// "disable" for pause, "enable" for resume, and "set-poll-interval" for
// set-period.
func ParseControlOp(s string) (ControlOp, error) {
	switch s {
	case "pause", "disable":
		return OpPause, nil
	case "resume", "enable":
		return OpResume, nil
	case "stop":
		return OpStop, nil
	case "set-period", "set-poll-interval":
		return OpSetPeriod, nil
	case "trigger-now":
		return OpTriggerNow, nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidRequest, "unknown control operation %q", s)
	}
}

// Command is one control operation, with its argument where the operation
// takes one.
type Command struct {
	Op ControlOp

	// Period is the new poll interval for OpSetPeriod; ignored otherwise.
	Period time.Duration
}

// ControlResult is the outcome of a command for one matched element.
type ControlResult struct {
	Element element.Name
	Err     error
}

// Control applies the command to every element matched by the selector.
//
// The command is applied independently per element: a failure on one
// element (an unsupported operation, an invalid state transition) is
// reported in its ControlResult and does not affect the others. The
// returned error is non-nil only when the command itself cannot be
// dispatched: the pipeline is shutting down or the command is malformed.
// A selector that matches no element is a no-op and returns no results.
func (p *Pipeline) Control(sel element.Selector, cmd Command) ([]ControlResult, error) {
	if p.shuttingDown.Load() {
		return nil, errors.New(errors.ErrCodeUnavailable, "pipeline is shutting down")
	}
	if cmd.Op == OpSetPeriod && cmd.Period <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "set-period requires a positive duration")
	}

	p.mu.Lock()
	sources := append([]*sourceHandle{}, p.sources...)
	transforms := append([]*transformHandle{}, p.transforms...)
	outputs := append([]*outputHandle{}, p.outputs...)
	p.mu.Unlock()

	var results []ControlResult
	for _, h := range sources {
		if !sel.Matches(h.name) {
			continue
		}
		results = append(results, ControlResult{Element: h.name, Err: p.controlSource(h, cmd)})
	}
	for _, h := range transforms {
		if !sel.Matches(h.name) {
			continue
		}
		results = append(results, ControlResult{Element: h.name, Err: controlTransform(h, cmd)})
	}
	for _, h := range outputs {
		if !sel.Matches(h.name) {
			continue
		}
		results = append(results, ControlResult{Element: h.name, Err: controlOutput(h, cmd)})
	}

	for _, r := range results {
		status := "success"
		if r.Err != nil {
			status = "error"
		}
		controlCommands.WithLabelValues(string(cmd.Op), status).Inc()
	}
	return results, nil
}

// controlSource validates and applies one command to a source. The state
// change is applied here so it is visible immediately; the command is then
// sent to the source task to wake it up and adjust its timer.
func (p *Pipeline) controlSource(h *sourceHandle, cmd Command) error {
	switch cmd.Op {
	case OpPause:
		if !h.managed() {
			return errors.Newf(errors.ErrCodeUnsupportedOperation, "autonomous source %s cannot be paused", h.name)
		}
		if err := h.transition(element.StatePaused); err != nil {
			return err
		}
		return sendCommand(h, sourceCommand{op: opPause})

	case OpResume:
		if !h.managed() {
			return errors.Newf(errors.ErrCodeUnsupportedOperation, "autonomous source %s cannot be resumed", h.name)
		}
		if err := h.transition(element.StateRunning); err != nil {
			return err
		}
		return sendCommand(h, sourceCommand{op: opResume})

	case OpStop:
		if h.State() == element.StateStopped {
			return nil
		}
		if err := h.transition(element.StateStopped); err != nil {
			return err
		}
		return sendCommand(h, sourceCommand{op: opStop})

	case OpSetPeriod:
		if !h.managed() {
			return errors.Newf(errors.ErrCodeUnsupportedOperation, "autonomous source %s has no poll interval", h.name)
		}
		if h.State() == element.StateStopped {
			return errors.Newf(errors.ErrCodeUnsupportedOperation, "source %s is stopped", h.name)
		}
		return sendCommand(h, sourceCommand{op: opSetPeriod, period: cmd.Period})

	case OpTriggerNow:
		if !h.managed() {
			return errors.Newf(errors.ErrCodeUnsupportedOperation, "autonomous source %s cannot be triggered", h.name)
		}
		if !h.triggerSpec().ManualTrigger {
			return errors.Newf(errors.ErrCodeUnsupportedOperation, "source %s does not accept manual triggers", h.name)
		}
		if h.State() != element.StateRunning {
			return errors.Newf(errors.ErrCodeUnsupportedOperation, "source %s is not running", h.name)
		}
		return sendCommand(h, sourceCommand{op: opTriggerNow})

	default:
		return errors.Newf(errors.ErrCodeInvalidRequest, "unknown control operation %q", cmd.Op)
	}
}

func controlTransform(h *transformHandle, cmd Command) error {
	switch cmd.Op {
	case OpPause:
		return h.transition(element.StatePaused)
	case OpResume:
		return h.transition(element.StateRunning)
	case OpStop:
		return errors.Newf(errors.ErrCodeUnsupportedOperation, "transform %s cannot be stopped individually", h.name)
	default:
		return errors.Newf(errors.ErrCodeUnsupportedOperation, "operation %s does not apply to transform %s", cmd.Op, h.name)
	}
}

func controlOutput(h *outputHandle, cmd Command) error {
	switch cmd.Op {
	case OpPause:
		return h.transition(element.StatePaused)
	case OpResume:
		return h.transition(element.StateRunning)
	case OpStop:
		if h.State() == element.StateStopped {
			return nil
		}
		if err := h.transition(element.StateStopped); err != nil {
			return err
		}
		h.requestStop()
		return nil
	default:
		return errors.Newf(errors.ErrCodeUnsupportedOperation, "operation %s does not apply to output %s", cmd.Op, h.name)
	}
}

// sendCommand forwards a command to the source task without blocking. The
// task drains its queue on every loop iteration, so a full queue means the
// caller is flooding commands faster than they can possibly take effect.
func sendCommand(h *sourceHandle, cmd sourceCommand) error {
	select {
	case h.commands <- cmd:
		return nil
	default:
		return errors.Newf(errors.ErrCodeRateLimitExceeded, "command queue of source %s is full", h.name)
	}
}
