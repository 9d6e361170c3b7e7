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
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/NVIDIA/osmet/pkg/defaults"
	"github.com/NVIDIA/osmet/pkg/errors"
	"github.com/NVIDIA/osmet/pkg/measurement"
	"github.com/NVIDIA/osmet/pkg/metric"
	"github.com/NVIDIA/osmet/pkg/pipeline/element"
)

// batch is one flushed buffer, tagged with the source that produced it.
type batch struct {
	source element.Name
	buf    *measurement.Buffer
}

// Pipeline owns the registered elements and their scheduling tasks.
//
// The zero value is not usable; create pipelines with New. Registration
// (AddSource and friends) must complete before Start; after Start the
// element set only shrinks, via stop commands or Shutdown.
type Pipeline struct {
	registry *metric.Registry

	mu         sync.Mutex
	sources    []*sourceHandle
	transforms []*transformHandle
	outputs    []*outputHandle
	names      map[element.Name]struct{}
	started    bool

	// onDrained callbacks run during Shutdown, after the final flush has
	// been delivered downstream and before teardown hooks.
	onDrained []func()

	shuttingDown atomic.Bool
	shutdownOnce sync.Once
	done         chan struct{}

	flushes    chan batch
	routerDone chan struct{}

	srcCtx    context.Context
	srcCancel context.CancelFunc
	outCtx    context.Context
	outCancel context.CancelFunc

	wgSources sync.WaitGroup
	wgOutputs sync.WaitGroup
}

// New creates an empty pipeline that resolves metrics against the given
// registry.
func New(registry *metric.Registry) *Pipeline {
	return &Pipeline{
		registry:   registry,
		names:      make(map[element.Name]struct{}),
		done:       make(chan struct{}),
		flushes:    make(chan batch, defaults.FlushChannelCapacity),
		routerDone: make(chan struct{}),
	}
}

// Registry returns the metric registry shared by the pipeline.
func (p *Pipeline) Registry() *metric.Registry {
	return p.registry
}

// SourceOption configures a source at registration time.
type SourceOption func(*sourceHandle)

// WithStartPaused registers the source in the Paused state; it will not be
// polled until an explicit resume command.
func WithStartPaused() SourceOption {
	return func(h *sourceHandle) {
		h.startPaused = true
	}
}

// AddSource registers a managed source polled according to the trigger spec.
// The name must be unique within the plugin's sources.
func (p *Pipeline) AddSource(plugin, name string, src element.Source, spec element.TriggerSpec, opts ...SourceOption) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	h := &sourceHandle{
		name:     element.SourceName(plugin, name),
		src:      src,
		trigger:  spec,
		state:    element.StateCreated,
		commands: make(chan sourceCommand, defaults.SourceCommandCapacity),
	}
	for _, opt := range opts {
		opt(h)
	}
	return p.register(h.name, func() { p.sources = append(p.sources, h) })
}

// AddAutonomousSource registers a source that schedules itself. The pipeline
// only provides it a context and an emit function; set-period, trigger-now
// and pause are rejected for such sources.
func (p *Pipeline) AddAutonomousSource(plugin, name string, src element.AutonomousSource) error {
	h := &sourceHandle{
		name:       element.SourceName(plugin, name),
		autonomous: src,
		state:      element.StateCreated,
		commands:   make(chan sourceCommand, defaults.SourceCommandCapacity),
	}
	return p.register(h.name, func() { p.sources = append(p.sources, h) })
}

// AddTransform registers a transform. Transforms are applied to every
// flushed buffer in registration order.
func (p *Pipeline) AddTransform(plugin, name string, tf element.Transform) error {
	h := &transformHandle{
		name:  element.TransformName(plugin, name),
		tf:    tf,
		state: element.StateCreated,
	}
	return p.register(h.name, func() { p.transforms = append(p.transforms, h) })
}

// AddOutput registers an output. Every output receives its own clone of each
// flushed buffer on its own queue.
func (p *Pipeline) AddOutput(plugin, name string, out element.Output) error {
	h := &outputHandle{
		name:  element.OutputName(plugin, name),
		out:   out,
		state: element.StateCreated,
		ch:    make(chan *measurement.Buffer, defaults.OutputChannelCapacity),
		stop:  make(chan struct{}),
	}
	return p.register(h.name, func() { p.outputs = append(p.outputs, h) })
}

// register validates uniqueness and phase, then commits the handle.
func (p *Pipeline) register(name element.Name, commit func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return errors.Newf(errors.ErrCodeUnavailable, "cannot register %s: pipeline already started", name)
	}
	if _, exists := p.names[name]; exists {
		return errors.Newf(errors.ErrCodeDuplicateElement, "element %s is already registered", name)
	}
	p.names[name] = struct{}{}
	commit()
	return nil
}

// OnDrained registers a callback invoked during Shutdown after the final
// flush has been delivered downstream and before element teardown. Used by
// the plugin layer to publish the end-of-measurement event.
func (p *Pipeline) OnDrained(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onDrained = append(p.onDrained, fn)
}

// Start launches the scheduling tasks. Elements start Running unless they
// were registered paused. The provided context is the parent of every task
// context; cancelling it triggers a full Shutdown in the background.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return errors.New(errors.ErrCodeInvalidRequest, "pipeline already started")
	}
	p.started = true

	p.srcCtx, p.srcCancel = context.WithCancel(context.WithoutCancel(ctx))
	p.outCtx, p.outCancel = context.WithCancel(context.WithoutCancel(ctx))

	for _, h := range p.transforms {
		h.setState(element.StateRunning)
	}
	for _, h := range p.outputs {
		h.setState(element.StateRunning)
		p.wgOutputs.Add(1)
		go p.runOutput(h)
	}
	go p.route()
	for _, h := range p.sources {
		if h.startPaused {
			h.setState(element.StatePaused)
		} else {
			h.setState(element.StateRunning)
		}
		p.wgSources.Add(1)
		go p.runSource(h)
	}
	sources, transforms, outputs := len(p.sources), len(p.transforms), len(p.outputs)
	p.mu.Unlock()

	slog.Info("pipeline started",
		slog.Int("sources", sources),
		slog.Int("transforms", transforms),
		slog.Int("outputs", outputs))

	// Propagate host cancellation.
	go func() {
		select {
		case <-ctx.Done():
			p.Shutdown()
		case <-p.done:
		}
	}()
	return nil
}

// ShuttingDown reports whether Shutdown has begun.
func (p *Pipeline) ShuttingDown() bool {
	return p.shuttingDown.Load()
}

// Done returns a channel closed when Shutdown has completed.
func (p *Pipeline) Done() <-chan struct{} {
	return p.done
}

// Shutdown stops the pipeline and blocks until it has fully drained:
//
//  1. New control commands are rejected.
//  2. Source tasks are signalled to stop; an in-flight poll completes and
//     each task performs a final flush, so buffered points are delivered.
//  3. The routing task drains remaining batches through transforms and
//     output queues.
//  4. OnDrained callbacks run (end-of-measurement notification).
//  5. Output queues are closed and drained, then every element's teardown
//     hook runs exactly once.
//
// Shutdown is idempotent and safe to call from any goroutine.
func (p *Pipeline) Shutdown() {
	p.shutdownOnce.Do(func() {
		p.shuttingDown.Store(true)
		slog.Info("pipeline shutting down")

		p.mu.Lock()
		started := p.started
		drained := append([]func(){}, p.onDrained...)
		sources := append([]*sourceHandle{}, p.sources...)
		transforms := append([]*transformHandle{}, p.transforms...)
		outputs := append([]*outputHandle{}, p.outputs...)
		p.mu.Unlock()

		if started {
			p.srcCancel()
			p.wgSources.Wait()
			close(p.flushes)
			<-p.routerDone
		}

		for _, fn := range drained {
			fn()
		}

		if started {
			for _, h := range outputs {
				close(h.ch)
			}
			p.wgOutputs.Wait()
			p.outCancel()
		}

		for _, h := range sources {
			h.setState(element.StateStopped)
			h.close()
		}
		for _, h := range transforms {
			h.setState(element.StateStopped)
			h.close()
		}
		for _, h := range outputs {
			h.setState(element.StateStopped)
			h.close()
		}

		slog.Info("pipeline stopped")
		close(p.done)
	})
}

// ElementStatus describes one element for introspection surfaces.
type ElementStatus struct {
	Name  string        `json:"name" yaml:"name"`
	Kind  string        `json:"kind" yaml:"kind"`
	State element.State `json:"state" yaml:"state"`
}

// Elements returns the status of every registered element, sources first,
// then transforms in registration order, then outputs.
func (p *Pipeline) Elements() []ElementStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ElementStatus, 0, len(p.sources)+len(p.transforms)+len(p.outputs))
	for _, h := range p.sources {
		out = append(out, ElementStatus{Name: h.name.String(), Kind: h.name.Kind.String(), State: h.State()})
	}
	for _, h := range p.transforms {
		out = append(out, ElementStatus{Name: h.name.String(), Kind: h.name.Kind.String(), State: h.State()})
	}
	for _, h := range p.outputs {
		out = append(out, ElementStatus{Name: h.name.String(), Kind: h.name.Kind.String(), State: h.State()})
	}
	return out
}
