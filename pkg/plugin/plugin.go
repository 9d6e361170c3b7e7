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
	"log/slog"

	"github.com/NVIDIA/osmet/pkg/measurement"
	"github.com/NVIDIA/osmet/pkg/metric"
	"github.com/NVIDIA/osmet/pkg/pipeline"
	"github.com/NVIDIA/osmet/pkg/pipeline/element"
	"github.com/NVIDIA/osmet/pkg/unit"
)

// Plugin is a component that contributes metrics and pipeline elements.
//
// Start is called exactly once, during the registration phase, before the
// scheduler runs. Stop is called exactly once during shutdown, after every
// element's teardown hook has run.
type Plugin interface {
	// Name identifies the plugin; it scopes the names of every element it
	// registers.
	Name() string

	// Start registers the plugin's metrics and elements.
	Start(reg *Registrar) error

	// Stop releases plugin-global resources.
	Stop() error
}

// RegistrarOption configures a Registrar.
type RegistrarOption func(*Registrar)

// WithSkipFailedUnits makes element registration failures non-fatal: the
// failing element is logged and skipped, and registration of the remaining
// elements continues. Metric registration failures stay fatal.
func WithSkipFailedUnits() RegistrarOption {
	return func(r *Registrar) {
		r.skipFailed = true
	}
}

// WithTriggerOverrides supplies host configuration for source cadences,
// keyed by source name. An override replaces the trigger spec the plugin
// passes to AddSource.
func WithTriggerOverrides(overrides map[string]element.TriggerSpec) RegistrarOption {
	return func(r *Registrar) {
		r.overrides = overrides
	}
}

// Registrar is a plugin's registration surface, scoped to one plugin name.
// It is only valid during the registration phase; registrations after the
// pipeline starts are rejected by the pipeline itself.
type Registrar struct {
	plugin string
	pipe   *pipeline.Pipeline
	events *EventBus[Event]

	skipFailed bool
	overrides  map[string]element.TriggerSpec
	skipped    []string
}

// NewRegistrar creates the registration surface for one plugin.
func NewRegistrar(pluginName string, pipe *pipeline.Pipeline, events *EventBus[Event], opts ...RegistrarOption) *Registrar {
	r := &Registrar{
		plugin: pluginName,
		pipe:   pipe,
		events: events,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// PluginName returns the name of the plugin this registrar is scoped to.
func (r *Registrar) PluginName() string {
	return r.plugin
}

// Registry returns the shared metric registry, for elements that need to
// resolve metric descriptors when formatting points.
func (r *Registrar) Registry() *metric.Registry {
	return r.pipe.Registry()
}

// CreateMetric registers a metric and returns its id. Registering the same
// name with the same type and unit again returns the existing id.
func (r *Registrar) CreateMetric(name string, vt measurement.ValueType, u unit.Unit, description string) (measurement.MetricID, error) {
	return r.pipe.Registry().Register(metric.Metric{
		Name:        name,
		ValueType:   vt,
		Unit:        u,
		Description: description,
	})
}

// AddSource registers a managed source under the plugin's name. Host
// trigger overrides, when present for this source name, replace spec.
func (r *Registrar) AddSource(name string, src element.Source, spec element.TriggerSpec, opts ...pipeline.SourceOption) error {
	if override, ok := r.overrides[name]; ok {
		spec = override
	}
	return r.unit(name, r.pipe.AddSource(r.plugin, name, src, spec, opts...))
}

// AddAutonomousSource registers a self-scheduling source under the
// plugin's name.
func (r *Registrar) AddAutonomousSource(name string, src element.AutonomousSource) error {
	return r.unit(name, r.pipe.AddAutonomousSource(r.plugin, name, src))
}

// AddTransform registers a transform under the plugin's name.
func (r *Registrar) AddTransform(name string, tf element.Transform) error {
	return r.unit(name, r.pipe.AddTransform(r.plugin, name, tf))
}

// AddOutput registers an output under the plugin's name.
func (r *Registrar) AddOutput(name string, out element.Output) error {
	return r.unit(name, r.pipe.AddOutput(r.plugin, name, out))
}

// Subscribe registers a callback for pipeline events. Callbacks run on the
// publisher's goroutine and must not block.
func (r *Registrar) Subscribe(fn func(Event)) {
	r.events.Subscribe(fn)
}

// Skipped returns the names of elements dropped under the skip-failed
// policy, in registration order.
func (r *Registrar) Skipped() []string {
	return append([]string{}, r.skipped...)
}

// unit applies the skip-failed policy to one element registration result.
func (r *Registrar) unit(name string, err error) error {
	if err == nil {
		return nil
	}
	if !r.skipFailed {
		return err
	}
	r.skipped = append(r.skipped, name)
	slog.Warn("skipping failed element",
		slog.String("plugin", r.plugin),
		slog.String("element", name),
		slog.String("error", err.Error()))
	return nil
}
