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
	"time"

	"github.com/NVIDIA/osmet/pkg/measurement"
	"github.com/NVIDIA/osmet/pkg/pipeline/element"
)

// route is the single routing task: it consumes flushed batches, runs each
// through the transform chain, and fans clones out to the output queues.
//
// Transforms run synchronously here, so no buffer is ever mutated by two
// goroutines. A batch's points keep their flush order through the chain,
// and batches of one source are delivered downstream in flush order.
func (p *Pipeline) route() {
	defer close(p.routerDone)
	for b := range p.flushes {
		p.deliver(b)
	}
}

func (p *Pipeline) deliver(b batch) {
	p.checkBatch(b)
	if b.buf.Empty() {
		return
	}

	p.mu.Lock()
	transforms := p.transforms
	outputs := p.outputs
	p.mu.Unlock()

	for _, h := range transforms {
		if h.State() != element.StateRunning {
			continue
		}
		start := time.Now()
		err := protect(h.name, func() error {
			return h.tf.Apply(p.outCtx, b.buf)
		})
		transformDuration.WithLabelValues(h.name.String()).Observe(time.Since(start).Seconds())
		if err != nil {
			// The transform is skipped for this batch; the buffer continues
			// down the chain and the next flush will reach this transform
			// again.
			transformErrors.WithLabelValues(h.name.String()).Inc()
			slog.Error("transform failed",
				slog.String("transform", h.name.String()),
				slog.String("source", b.source.String()),
				slog.String("error", err.Error()))
		}
	}

	if b.buf.Empty() {
		return
	}

	for _, h := range outputs {
		if h.State() != element.StateRunning {
			continue
		}
		// Each output gets an independent clone; a full queue means the
		// output is too slow and this batch is skipped for it rather than
		// blocking the chain or the other outputs.
		select {
		case h.ch <- b.buf.Clone():
		default:
			outputDroppedBatches.WithLabelValues(h.name.String()).Inc()
			slog.Warn("output queue full, dropping batch",
				slog.String("output", h.name.String()),
				slog.String("source", b.source.String()),
				slog.Int("points", b.buf.Len()))
		}
	}
}

// checkBatch drops every point whose value tag does not match the declared
// type of its metric. A mismatch can only come from a source that builds
// points against the wrong registration, so the drop is logged with the
// source's identity and counted; the rest of the batch is unaffected.
func (p *Pipeline) checkBatch(b batch) {
	b.buf.Retain(func(pt *measurement.Point) bool {
		err := p.registry.CheckValue(pt.Metric, pt.Value)
		if err == nil {
			return true
		}
		sourceRejectedPoints.WithLabelValues(b.source.String()).Inc()
		slog.Warn("dropping mismatched point",
			slog.String("source", b.source.String()),
			slog.String("error", err.Error()))
		return false
	})
}

// runOutput is the delivery task of one output. It consumes the output's
// own queue; failures are logged and local to the output.
func (p *Pipeline) runOutput(h *outputHandle) {
	defer p.wgOutputs.Done()

	write := func(buf *measurement.Buffer) {
		start := time.Now()
		err := protect(h.name, func() error {
			return h.out.Write(p.outCtx, buf)
		})
		outputWriteDuration.WithLabelValues(h.name.String()).Observe(time.Since(start).Seconds())
		if err != nil {
			outputWrites.WithLabelValues(h.name.String(), "error").Inc()
			slog.Error("output write failed",
				slog.String("output", h.name.String()),
				slog.String("error", err.Error()))
			return
		}
		outputWrites.WithLabelValues(h.name.String(), "success").Inc()
	}

	for {
		select {
		case <-h.stop:
			// Individual stop: drain what is already queued, then tear down.
			for {
				select {
				case buf, ok := <-h.ch:
					if !ok {
						h.setState(element.StateStopped)
						h.close()
						return
					}
					write(buf)
				default:
					h.setState(element.StateStopped)
					h.close()
					return
				}
			}
		case buf, ok := <-h.ch:
			if !ok {
				// Pipeline shutdown closed the queue; teardown is run by
				// Shutdown after the end-of-measurement notification.
				return
			}
			write(buf)
		}
	}
}
