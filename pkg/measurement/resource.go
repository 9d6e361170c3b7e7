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

package measurement

import (
	"fmt"
	"strconv"
)

// Canonical resource kind names, as used in serialized output and in the
// (kind, id) parse path.
const (
	KindLocalMachine = "local_machine"
	KindProcess      = "process"
	KindControlGroup = "cgroup"
	KindCpuPackage   = "cpu_package"
	KindCpuCore      = "cpu_core"
	KindDram         = "dram"
	KindGpu          = "gpu"
)

// Resource identifies the thing a measurement is about: the whole machine,
// a CPU package, a GPU, a process, etc.
//
// Resources are comparable value types; use the constructors below rather
// than building the struct directly.
type Resource struct {
	kind string
	id   string
}

// LocalMachine returns the resource for the whole machine.
func LocalMachine() Resource {
	return Resource{kind: KindLocalMachine}
}

// Process returns the resource for an operating system process.
func Process(pid uint32) Resource {
	return Resource{kind: KindProcess, id: strconv.FormatUint(uint64(pid), 10)}
}

// ControlGroup returns the resource for a control group.
func ControlGroup(path string) Resource {
	return Resource{kind: KindControlGroup, id: path}
}

// CpuPackage returns the resource for a physical CPU package.
func CpuPackage(id uint32) Resource {
	return Resource{kind: KindCpuPackage, id: strconv.FormatUint(uint64(id), 10)}
}

// CpuCore returns the resource for a CPU core.
func CpuCore(id uint32) Resource {
	return Resource{kind: KindCpuCore, id: strconv.FormatUint(uint64(id), 10)}
}

// Dram returns the resource for the DRAM attached to a CPU package.
func Dram(pkgID uint32) Resource {
	return Resource{kind: KindDram, id: strconv.FormatUint(uint64(pkgID), 10)}
}

// Gpu returns the resource for a GPU, identified by its bus id.
func Gpu(busID string) Resource {
	return Resource{kind: KindGpu, id: busID}
}

// CustomResource returns a resource of a kind not covered by the closed set.
func CustomResource(kind, id string) Resource {
	return Resource{kind: kind, id: id}
}

// ParseResource builds a Resource from a (kind, id) pair, normalizing known
// kinds. Numeric kinds reject non-numeric ids.
func ParseResource(kind, id string) (Resource, error) {
	switch kind {
	case KindLocalMachine:
		if id != "" {
			return Resource{}, fmt.Errorf("resource kind %q does not take an id, got %q", kind, id)
		}
		return LocalMachine(), nil
	case KindProcess, KindCpuPackage, KindCpuCore, KindDram:
		n, err := strconv.ParseUint(id, 10, 32)
		if err != nil {
			return Resource{}, fmt.Errorf("invalid id %q for resource kind %q: %w", id, kind, err)
		}
		return Resource{kind: kind, id: strconv.FormatUint(n, 10)}, nil
	case KindControlGroup:
		return ControlGroup(id), nil
	case KindGpu:
		return Gpu(id), nil
	default:
		return CustomResource(kind, id), nil
	}
}

// Kind returns the kind of the resource, e.g. "cpu_package".
func (r Resource) Kind() string {
	if r.kind == "" {
		return KindLocalMachine
	}
	return r.kind
}

// ID returns the identifier of the resource within its kind.
// Empty for LocalMachine.
func (r Resource) ID() string {
	return r.id
}

// String returns "kind" or "kind/id".
func (r Resource) String() string {
	if r.id == "" {
		return r.Kind()
	}
	return r.Kind() + "/" + r.id
}

// Consumer identifies the entity a measurement is attributed to.
// It is orthogonal to Resource: the energy of a CPU package (resource) can be
// attributed to a process (consumer).
type Consumer struct {
	kind string
	id   string
}

// ConsumerLocalMachine attributes a measurement to the machine as a whole.
func ConsumerLocalMachine() Consumer {
	return Consumer{kind: KindLocalMachine}
}

// ConsumerProcess attributes a measurement to an operating system process.
func ConsumerProcess(pid uint32) Consumer {
	return Consumer{kind: KindProcess, id: strconv.FormatUint(uint64(pid), 10)}
}

// ConsumerControlGroup attributes a measurement to a control group.
func ConsumerControlGroup(path string) Consumer {
	return Consumer{kind: KindControlGroup, id: path}
}

// CustomConsumer attributes a measurement to an entity of a kind not covered
// by the closed set.
func CustomConsumer(kind, id string) Consumer {
	return Consumer{kind: kind, id: id}
}

// Kind returns the kind of the consumer.
func (c Consumer) Kind() string {
	if c.kind == "" {
		return KindLocalMachine
	}
	return c.kind
}

// ID returns the identifier of the consumer within its kind.
func (c Consumer) ID() string {
	return c.id
}

// String returns "kind" or "kind/id".
func (c Consumer) String() string {
	if c.id == "" {
		return c.Kind()
	}
	return c.Kind() + "/" + c.id
}
