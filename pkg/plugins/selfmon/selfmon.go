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

// Package selfmon provides a built-in source plugin that measures the agent
// process itself: cumulative CPU time, resident memory, and open file
// descriptors. It doubles as a liveness signal for the pipeline and as a
// reference implementation of a managed source.
package selfmon

import (
	"context"

	"github.com/prometheus/procfs"

	"github.com/NVIDIA/osmet/pkg/defaults"
	"github.com/NVIDIA/osmet/pkg/measurement"
	"github.com/NVIDIA/osmet/pkg/pipeline/element"
	"github.com/NVIDIA/osmet/pkg/plugin"
	"github.com/NVIDIA/osmet/pkg/unit"
)

// PluginName is the name the selfmon plugin registers under.
const PluginName = "selfmon"

// Plugin registers the self-monitoring source.
type Plugin struct {
	// Trigger overrides the default 1s poll/flush cadence when set.
	Trigger element.TriggerSpec
}

// Name implements plugin.Plugin.
func (p *Plugin) Name() string {
	return PluginName
}

// Start registers the metrics and the source element.
func (p *Plugin) Start(reg *plugin.Registrar) error {
	cpuID, err := reg.CreateMetric("self_cpu_time", measurement.TypeF64, unit.Second,
		"Cumulative CPU time consumed by the agent process")
	if err != nil {
		return err
	}
	memID, err := reg.CreateMetric("self_resident_memory", measurement.TypeU64, unit.Custom("By", "B"),
		"Resident memory of the agent process")
	if err != nil {
		return err
	}
	fdsID, err := reg.CreateMetric("self_open_fds", measurement.TypeU64, unit.Unity,
		"Open file descriptors of the agent process")
	if err != nil {
		return err
	}

	proc, err := procfs.Self()
	if err != nil {
		return err
	}

	trig := p.Trigger
	if trig.PollInterval == 0 {
		trig = element.TriggerAtInterval(defaults.PollInterval)
	}

	src := &source{
		proc:  proc,
		cpuID: cpuID,
		memID: memID,
		fdsID: fdsID,
	}
	return reg.AddSource("process", src, trig)
}

// Stop implements plugin.Plugin.
func (p *Plugin) Stop() error {
	return nil
}

type source struct {
	proc  procfs.Proc
	cpuID measurement.MetricID
	memID measurement.MetricID
	fdsID measurement.MetricID
}

// Poll implements element.Source.
func (s *source) Poll(ctx context.Context, acc *measurement.Accumulator, ts measurement.Timestamp) error {
	res := measurement.LocalMachine()
	cons := measurement.ConsumerProcess(uint32(s.proc.PID))

	stat, err := s.proc.Stat()
	if err != nil {
		return err
	}
	acc.Push(measurement.NewPointF64(s.cpuID, ts, stat.CPUTime(), res, cons))
	acc.Push(measurement.NewPointU64(s.memID, ts, uint64(stat.ResidentMemory()), res, cons))

	if fds, err := s.proc.FileDescriptorsLen(); err == nil {
		acc.Push(measurement.NewPointU64(s.fdsID, ts, uint64(fds), res, cons))
	}
	return nil
}
