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

package metric

import (
	"sync"

	"github.com/NVIDIA/osmet/pkg/errors"
	"github.com/NVIDIA/osmet/pkg/measurement"
)

// Registry assigns process-lifetime-unique ids to metrics.
//
// Writes only happen during the plugin registration phase, before the
// scheduler starts; after that the registry is read-only and read-heavy,
// so a single RWMutex over an append-only table is enough.
type Registry struct {
	mu      sync.RWMutex
	metrics []Metric // indexed by id
	byName  map[string]measurement.MetricID
}

// NewRegistry creates an empty metric registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]measurement.MetricID),
	}
}

// Register registers a metric and returns its id.
//
// Registration is idempotent for identical definitions: registering the same
// name with the same value type and unit returns the existing id. A name
// clash with a different type or unit fails with ErrCodeDuplicateMetric.
func (r *Registry) Register(m Metric) (measurement.MetricID, error) {
	if m.Name == "" {
		return 0, errors.New(errors.ErrCodeInvalidRequest, "metric name cannot be empty")
	}
	if m.ValueType != measurement.TypeU64 && m.ValueType != measurement.TypeF64 {
		return 0, errors.Newf(errors.ErrCodeInvalidRequest, "metric %q has invalid value type %q", m.Name, m.ValueType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byName[m.Name]; ok {
		existing := r.metrics[id]
		if existing.sameDefinition(m) {
			return id, nil
		}
		return 0, errors.NewWithContext(errors.ErrCodeDuplicateMetric,
			"metric already registered with a different definition",
			map[string]any{
				"name":            m.Name,
				"registered_type": existing.ValueType.String(),
				"registered_unit": existing.Unit.UniqueName,
				"requested_type":  m.ValueType.String(),
				"requested_unit":  m.Unit.UniqueName,
			})
	}

	id := measurement.MetricID(len(r.metrics))
	r.metrics = append(r.metrics, m)
	r.byName[m.Name] = id
	return id, nil
}

// Resolve returns the descriptor for the given id.
// The second return value is false if the id was never issued by this registry.
func (r *Registry) Resolve(id measurement.MetricID) (Metric, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id) >= len(r.metrics) {
		return Metric{}, false
	}
	return r.metrics[id], true
}

// ByName returns the id and descriptor of the metric with the given name.
func (r *Registry) ByName(name string) (measurement.MetricID, Metric, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[name]
	if !ok {
		return 0, Metric{}, false
	}
	return id, r.metrics[id], true
}

// Len returns the number of registered metrics.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.metrics)
}

// Each calls fn for every registered metric in id order.
func (r *Registry) Each(fn func(id measurement.MetricID, m Metric)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i, m := range r.metrics {
		fn(measurement.MetricID(i), m)
	}
}

// CheckValue verifies that a value's type tag matches the declared type of
// the metric it is recorded under. The pipeline calls it on every flushed
// point and drops the ones that fail.
func (r *Registry) CheckValue(id measurement.MetricID, v measurement.Value) error {
	m, ok := r.Resolve(id)
	if !ok {
		return errors.Newf(errors.ErrCodeNotFound, "unknown metric id %d", id)
	}
	if v.Type() != m.ValueType {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"value type does not match metric declaration",
			map[string]any{
				"metric":        m.Name,
				"declared_type": m.ValueType.String(),
				"value_type":    v.Type().String(),
			})
	}
	return nil
}
