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

import "testing"

func TestParseResource(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		id      string
		want    Resource
		wantErr bool
	}{
		{"local machine", "local_machine", "", LocalMachine(), false},
		{"local machine rejects id", "local_machine", "0", Resource{}, true},
		{"process", "process", "1234", Process(1234), false},
		{"process non-numeric", "process", "init", Resource{}, true},
		{"cpu package", "cpu_package", "0", CpuPackage(0), false},
		{"cpu core", "cpu_core", "15", CpuCore(15), false},
		{"dram", "dram", "1", Dram(1), false},
		{"dram non-numeric", "dram", "one", Resource{}, true},
		{"cgroup keeps path", "cgroup", "/sys/fs/cgroup/system.slice", ControlGroup("/sys/fs/cgroup/system.slice"), false},
		{"gpu keeps bus id", "gpu", "0000:3b:00.0", Gpu("0000:3b:00.0"), false},
		{"custom kind", "fpga", "7", CustomResource("fpga", "7"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResource(tt.kind, tt.id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseResource(%q, %q) error = %v, wantErr %v", tt.kind, tt.id, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseResource(%q, %q) = %v, want %v", tt.kind, tt.id, got, tt.want)
			}
		})
	}
}

func TestResourceZeroValueIsLocalMachine(t *testing.T) {
	var r Resource
	if r.Kind() != KindLocalMachine {
		t.Errorf("zero resource kind = %q, want %q", r.Kind(), KindLocalMachine)
	}

	var c Consumer
	if c.Kind() != KindLocalMachine {
		t.Errorf("zero consumer kind = %q, want %q", c.Kind(), KindLocalMachine)
	}
}

func TestConsumers(t *testing.T) {
	p := ConsumerProcess(42)
	if p.Kind() != KindProcess || p.ID() != "42" {
		t.Errorf("ConsumerProcess(42) = %s/%s", p.Kind(), p.ID())
	}
	cg := ConsumerControlGroup("/user.slice")
	if cg.Kind() != KindControlGroup || cg.ID() != "/user.slice" {
		t.Errorf("ConsumerControlGroup = %s/%s", cg.Kind(), cg.ID())
	}
}
