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

// Package console provides a built-in output plugin that writes measurement
// points to stdout or a file, in any format the serializer supports.
package console

import (
	"context"
	"time"

	"github.com/NVIDIA/osmet/pkg/measurement"
	"github.com/NVIDIA/osmet/pkg/metric"
	"github.com/NVIDIA/osmet/pkg/plugin"
	"github.com/NVIDIA/osmet/pkg/serializer"
)

// PluginName is the name the console plugin registers under.
const PluginName = "console"

// Plugin writes every delivered batch through a serializer.Serializer.
type Plugin struct {
	// Format is the serialization format; defaults to JSON.
	Format serializer.Format

	// Path is the output file; empty means stdout.
	Path string

	out *output
}

// Name implements plugin.Plugin.
func (p *Plugin) Name() string {
	return PluginName
}

// Start registers the output element.
func (p *Plugin) Start(reg *plugin.Registrar) error {
	format := p.Format
	if format == "" {
		format = serializer.FormatJSON
	}
	p.out = &output{
		registry: reg.Registry(),
		writer:   serializer.NewFileWriterOrStdout(format, p.Path),
	}
	return reg.AddOutput("points", p.out)
}

// Stop implements plugin.Plugin.
func (p *Plugin) Stop() error {
	return nil
}

// record is the serialized form of one measurement point.
type record struct {
	Metric       string         `json:"metric" yaml:"metric"`
	Timestamp    time.Time      `json:"timestamp" yaml:"timestamp"`
	Value        any            `json:"value" yaml:"value"`
	Unit         string         `json:"unit,omitempty" yaml:"unit,omitempty"`
	ResourceKind string         `json:"resourceKind" yaml:"resourceKind"`
	ResourceID   string         `json:"resourceId,omitempty" yaml:"resourceId,omitempty"`
	ConsumerKind string         `json:"consumerKind" yaml:"consumerKind"`
	ConsumerID   string         `json:"consumerId,omitempty" yaml:"consumerId,omitempty"`
	Attributes   map[string]any `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

type output struct {
	registry *metric.Registry
	writer   serializer.Serializer
}

// Write implements element.Output.
func (o *output) Write(ctx context.Context, buf *measurement.Buffer) error {
	records := make([]record, 0, buf.Len())
	for _, p := range buf.Points() {
		rec := record{
			Timestamp:    p.Timestamp.Time(),
			Value:        p.Value.Any(),
			ResourceKind: p.Resource.Kind(),
			ResourceID:   p.Resource.ID(),
			ConsumerKind: p.Consumer.Kind(),
			ConsumerID:   p.Consumer.ID(),
		}
		if m, ok := o.registry.Resolve(p.Metric); ok {
			rec.Metric = m.Name
			rec.Unit = m.Unit.String()
		}
		if p.AttrLen() > 0 {
			rec.Attributes = make(map[string]any, p.AttrLen())
			p.Attrs(func(key string, value measurement.AttrValue) {
				rec.Attributes[key] = value.Any()
			})
		}
		records = append(records, rec)
	}
	return o.writer.Serialize(ctx, records)
}

// Close releases the underlying file handle, if any.
func (o *output) Close() error {
	if c, ok := o.writer.(serializer.Closer); ok {
		return c.Close()
	}
	return nil
}
