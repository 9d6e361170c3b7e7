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

package agent

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/osmet/pkg/measurement"
	"github.com/NVIDIA/osmet/pkg/pipeline/element"
	"github.com/NVIDIA/osmet/pkg/plugin"
	"github.com/NVIDIA/osmet/pkg/unit"
)

// fakePlugin registers one constant source and one collecting output.
type fakePlugin struct {
	name      string
	startErr  error
	events    []plugin.Event
	eventsMu  sync.Mutex
	stops     atomic.Int64
	collected atomic.Int64
}

func (p *fakePlugin) Name() string { return p.name }

func (p *fakePlugin) Start(reg *plugin.Registrar) error {
	if p.startErr != nil {
		return p.startErr
	}
	id, err := reg.CreateMetric(p.name+"_ticks", measurement.TypeU64, unit.Unity, "")
	if err != nil {
		return err
	}
	if err := reg.AddSource("ticks", constSource{metric: id}, element.TriggerAtInterval(10*time.Millisecond)); err != nil {
		return err
	}
	if err := reg.AddOutput("sink", countingOutput{n: &p.collected}); err != nil {
		return err
	}
	reg.Subscribe(func(e plugin.Event) {
		p.eventsMu.Lock()
		p.events = append(p.events, e)
		p.eventsMu.Unlock()
	})
	return nil
}

func (p *fakePlugin) Stop() error {
	p.stops.Add(1)
	return nil
}

func (p *fakePlugin) receivedEvents() []plugin.Event {
	p.eventsMu.Lock()
	defer p.eventsMu.Unlock()
	return append([]plugin.Event{}, p.events...)
}

type constSource struct {
	metric measurement.MetricID
}

func (s constSource) Poll(_ context.Context, acc *measurement.Accumulator, ts measurement.Timestamp) error {
	acc.Push(measurement.NewPointU64(s.metric, ts, 1, measurement.LocalMachine(), measurement.ConsumerLocalMachine()))
	return nil
}

type countingOutput struct {
	n *atomic.Int64
}

func (o countingOutput) Write(_ context.Context, buf *measurement.Buffer) error {
	o.n.Add(int64(buf.Len()))
	return nil
}

// testConfig disables the HTTP and control servers so tests do not bind
// real ports or sockets unless they mean to.
func testConfig() *Config {
	return &Config{}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}

func sendControlLine(socketPath, line string) error {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return err
	}
	defer conn.Close()
	_, err = conn.Write([]byte(line + "\n"))
	return err
}

func TestAgentRunAndShutdown(t *testing.T) {
	p := &fakePlugin{name: "fake"}
	a := New(testConfig())
	a.AddPlugin(p)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	// Let the pipeline produce a few flushes, then shut down.
	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("agent did not shut down")
	}

	assert.Greater(t, p.collected.Load(), int64(0), "the plugin's output must have received points")
	assert.Equal(t, int64(1), p.stops.Load(), "plugin Stop runs exactly once")

	events := p.receivedEvents()
	require.Len(t, events, 1, "end of measurement is published exactly once")
	assert.Equal(t, plugin.EndOfMeasurement, events[0].Kind)
}

func TestAgentRequiredPluginFailureAborts(t *testing.T) {
	bad := &fakePlugin{name: "bad", startErr: fmt.Errorf("no such hardware")}
	a := New(testConfig())
	a.AddPlugin(bad)

	err := a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
	assert.Equal(t, int64(0), bad.stops.Load(), "a plugin that never started is not stopped")
}

func TestAgentOptionalPluginFailureSkipped(t *testing.T) {
	cfg := testConfig()
	cfg.Plugins = map[string]PluginConfig{
		"flaky": {Optional: true},
	}

	flaky := &fakePlugin{name: "flaky", startErr: fmt.Errorf("no such hardware")}
	good := &fakePlugin{name: "good"}
	a := New(cfg)
	a.AddPlugin(flaky)
	a.AddPlugin(good)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("agent did not shut down")
	}

	assert.Equal(t, int64(0), flaky.stops.Load())
	assert.Equal(t, int64(1), good.stops.Load())
}

func TestAgentControlSocketShutdown(t *testing.T) {
	cfg := testConfig()
	cfg.ControlSocket = filepath.Join(t.TempDir(), "control.sock")

	p := &fakePlugin{name: "fake"}
	a := New(cfg)
	a.AddPlugin(p)

	done := make(chan error, 1)
	go func() { done <- a.Run(context.Background()) }()

	require.Eventually(t, func() bool {
		return sendControlLine(cfg.ControlSocket, "shutdown") == nil
	}, 5*time.Second, 20*time.Millisecond)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown command did not stop the agent")
	}
	assert.Equal(t, int64(1), p.stops.Load())
}

func TestConfigLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
control_socket: /tmp/osmet-test.sock
http:
  port: 9099
plugins:
  rapl:
    optional: true
    skip_failed_units: true
    sources:
      pkg:
        poll_interval: 250ms
        flush_interval: 1s
`
	require.NoError(t, writeFile(path, content))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/osmet-test.sock", cfg.ControlSocket)
	require.NotNil(t, cfg.HTTP)
	assert.Equal(t, 9099, cfg.HTTP.Port)

	pc, ok := cfg.Plugins["rapl"]
	require.True(t, ok)
	assert.True(t, pc.Optional)
	assert.True(t, pc.SkipFailedUnits)
	spec, ok := pc.Sources["pkg"]
	require.True(t, ok)
	assert.Equal(t, 250*time.Millisecond, spec.PollInterval)
	assert.Equal(t, time.Second, spec.FlushInterval)
}

func TestConfigLoadInvalid(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, writeFile(path, "control_socket: [oops"))
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("invalid source spec", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, writeFile(path, `
plugins:
  rapl:
    sources:
      pkg:
        poll_interval: -1s
`))
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}
