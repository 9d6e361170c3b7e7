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
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/NVIDIA/osmet/pkg/measurement"
	"github.com/NVIDIA/osmet/pkg/pipeline/element"
)

// runSource is the scheduling task of one source. It owns the source's
// accumulation buffer, polls on the trigger's cadence, flushes every
// FlushRounds polls, and applies control commands between polls.
//
// Exits: pipeline shutdown (srcCtx cancelled), a stop command, or the
// source returning element.ErrStopPolling. On every exit path the remaining
// buffered points are flushed so they are not silently dropped.
func (p *Pipeline) runSource(h *sourceHandle) {
	defer p.wgSources.Done()

	if h.autonomous != nil {
		p.runAutonomousSource(h)
		return
	}

	trig := h.triggerSpec()
	buf := measurement.NewBufferWithCapacity(trig.FlushRounds())
	rounds := 0

	flush := func() {
		if buf.Empty() {
			return
		}
		n := buf.Len()
		p.flushes <- batch{source: h.name, buf: buf}
		sourceFlushes.WithLabelValues(h.name.String()).Inc()
		sourceFlushedPoints.WithLabelValues(h.name.String()).Add(float64(n))
		buf = measurement.NewBufferWithCapacity(n)
		rounds = 0
	}

	stoppedByCommand := false
	defer func() {
		flush()
		h.setState(element.StateStopped)
		if stoppedByCommand {
			// Individual removal: the element's teardown runs now.
			// At pipeline shutdown, teardown is deferred to Shutdown so it
			// runs after the end-of-measurement notification.
			h.close()
		}
	}()

	ticker := time.NewTicker(trig.PollInterval)
	defer ticker.Stop()

	for {
		// A paused source parks here: the timer keeps running but no poll
		// happens until resume, stop or shutdown.
		if h.State() == element.StatePaused {
			select {
			case <-p.srcCtx.Done():
				return
			case cmd := <-h.commands:
				if stop, resumed := h.applyCommand(p, cmd, &trig, ticker, buf, &rounds); stop {
					stoppedByCommand = true
					return
				} else if resumed {
					ticker.Reset(trig.PollInterval)
				}
			}
			continue
		}

		select {
		case <-p.srcCtx.Done():
			return

		case cmd := <-h.commands:
			if stop, _ := h.applyCommand(p, cmd, &trig, ticker, buf, &rounds); stop {
				stoppedByCommand = true
				return
			}

		case <-ticker.C:
			// A pause may have landed between ticks.
			if h.State() != element.StateRunning {
				continue
			}
			err := p.pollOnce(h, buf)
			if stderrors.Is(err, element.ErrStopPolling) {
				slog.Info("source stopped itself", slog.String("source", h.name.String()))
				stoppedByCommand = true
				return
			}
			rounds++
			if rounds >= trig.FlushRounds() {
				flush()
			}
		}
	}
}

// applyCommand handles one control command inside the source task.
// It returns whether the task must stop, and whether the source resumed.
func (h *sourceHandle) applyCommand(p *Pipeline, cmd sourceCommand, trig *element.TriggerSpec, ticker *time.Ticker, buf *measurement.Buffer, rounds *int) (stop, resumed bool) {
	switch cmd.op {
	case opStop:
		return true, false

	case opPause, opResume:
		// State was already validated and applied by the control plane; the
		// command only wakes the task so the change takes effect at once.
		return false, cmd.op == opResume

	case opSetPeriod:
		// Atomic swap of the timer interval, effective from the next tick.
		// Already-buffered points are kept; the flush-round boundary is
		// recomputed against the new cadence.
		*trig = trig.WithPollInterval(cmd.period)
		h.setTrigger(*trig)
		ticker.Reset(cmd.period)
		if *rounds >= trig.FlushRounds() {
			*rounds = trig.FlushRounds() - 1
		}
		slog.Debug("source period changed",
			slog.String("source", h.name.String()),
			slog.Duration("poll_interval", cmd.period))

	case opTriggerNow:
		// Out-of-cycle poll; the next scheduled tick is not reset.
		if h.State() == element.StateRunning {
			err := p.pollOnce(h, buf)
			if stderrors.Is(err, element.ErrStopPolling) {
				return true, false
			}
		}
	}
	return false, false
}

// pollOnce runs a single poll with panic isolation. Errors are logged with
// the source's identity and do not propagate; element.ErrStopPolling is
// passed through to the caller.
func (p *Pipeline) pollOnce(h *sourceHandle, buf *measurement.Buffer) error {
	ts := measurement.Now()
	acc := measurement.NewAccumulator(buf)

	start := time.Now()
	err := protect(h.name, func() error {
		return h.src.Poll(p.srcCtx, acc, ts)
	})
	sourcePollDuration.WithLabelValues(h.name.String()).Observe(time.Since(start).Seconds())
	sourcePolls.WithLabelValues(h.name.String()).Inc()

	if err != nil && !stderrors.Is(err, element.ErrStopPolling) {
		sourcePollErrors.WithLabelValues(h.name.String()).Inc()
		slog.Error("source poll failed",
			slog.String("source", h.name.String()),
			slog.String("error", err.Error()))
		return nil
	}
	return err
}

// runAutonomousSource supervises a self-scheduling source. Emitted buffers
// enter the pipeline like managed flushes; ownership transfers on emit.
func (p *Pipeline) runAutonomousSource(h *sourceHandle) {
	stoppedByCommand := false
	defer func() {
		h.setState(element.StateStopped)
		if stoppedByCommand {
			h.close()
		}
	}()

	emit := func(buf *measurement.Buffer) {
		if buf == nil || buf.Empty() {
			return
		}
		n := buf.Len()
		p.flushes <- batch{source: h.name, buf: buf}
		sourceFlushes.WithLabelValues(h.name.String()).Inc()
		sourceFlushedPoints.WithLabelValues(h.name.String()).Add(float64(n))
	}

	// An autonomous source owns its own loop; a stop command cancels its
	// context rather than interrupting it mid-run.
	ctx, cancel := contextWithStop(p.srcCtx, h.commands, &stoppedByCommand)
	defer cancel()

	err := protect(h.name, func() error {
		return h.autonomous.Run(ctx, emit)
	})
	if err != nil && !stderrors.Is(err, element.ErrStopPolling) && ctx.Err() == nil {
		slog.Error("autonomous source failed",
			slog.String("source", h.name.String()),
			slog.String("error", err.Error()))
	}
}

// contextWithStop derives a context that is cancelled when the parent ends
// or when a stop command arrives on the source's command channel.
func contextWithStop(parent context.Context, commands <-chan sourceCommand, stopped *bool) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case cmd := <-commands:
				if cmd.op == opStop {
					*stopped = true
					cancel()
					return
				}
			}
		}
	}()
	return ctx, cancel
}
