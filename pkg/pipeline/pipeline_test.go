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
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/osmet/pkg/errors"
	"github.com/NVIDIA/osmet/pkg/measurement"
	"github.com/NVIDIA/osmet/pkg/metric"
	"github.com/NVIDIA/osmet/pkg/pipeline/element"
	"github.com/NVIDIA/osmet/pkg/unit"
)

// tickSource emits one constant point per poll.
type tickSource struct {
	metric measurement.MetricID
	polls  atomic.Int64
}

func (s *tickSource) Poll(_ context.Context, acc *measurement.Accumulator, ts measurement.Timestamp) error {
	s.polls.Add(1)
	acc.Push(measurement.NewPointF64(s.metric, ts, 1.0, measurement.LocalMachine(), measurement.ConsumerLocalMachine()))
	return nil
}

// memOutput collects every written buffer in memory.
type memOutput struct {
	mu     sync.Mutex
	bufs   []*measurement.Buffer
	closed atomic.Int64
}

func (o *memOutput) Write(_ context.Context, buf *measurement.Buffer) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.bufs = append(o.bufs, buf)
	return nil
}

func (o *memOutput) Close() error {
	o.closed.Add(1)
	return nil
}

func (o *memOutput) batches() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.bufs)
}

func (o *memOutput) points() []measurement.Point {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []measurement.Point
	for _, b := range o.bufs {
		out = append(out, b.Points()...)
	}
	return out
}

// tagTransform marks every point it sees.
type tagTransform struct {
	applied atomic.Int64
}

func (t *tagTransform) Apply(_ context.Context, buf *measurement.Buffer) error {
	t.applied.Add(1)
	pts := buf.Points()
	for i := range pts {
		pts[i].SetAttr("tagged", measurement.AttrBool(true))
	}
	return nil
}

// panicTransform always panics.
type panicTransform struct {
	calls atomic.Int64
}

func (t *panicTransform) Apply(_ context.Context, _ *measurement.Buffer) error {
	t.calls.Add(1)
	panic("transform exploded")
}

func newTestPipeline(t *testing.T) (*Pipeline, measurement.MetricID) {
	t.Helper()
	reg := metric.NewRegistry()
	id, err := reg.Register(metric.Metric{Name: "power_watts", ValueType: measurement.TypeF64, Unit: unit.Watt})
	require.NoError(t, err)
	return New(reg), id
}

func TestRegistration(t *testing.T) {
	p, id := newTestPipeline(t)
	src := &tickSource{metric: id}
	spec := element.TriggerAtInterval(time.Hour)

	require.NoError(t, p.AddSource("test", "ticker", src, spec))

	t.Run("duplicate name rejected", func(t *testing.T) {
		err := p.AddSource("test", "ticker", src, spec)
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeDuplicateElement))
	})

	t.Run("same name different kind allowed", func(t *testing.T) {
		assert.NoError(t, p.AddOutput("test", "ticker", &memOutput{}))
	})

	t.Run("invalid trigger rejected", func(t *testing.T) {
		err := p.AddSource("test", "other", src, element.TriggerSpec{})
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))
	})

	t.Run("registration after start rejected", func(t *testing.T) {
		require.NoError(t, p.Start(context.Background()))
		defer p.Shutdown()

		err := p.AddSource("late", "src", src, spec)
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeUnavailable))
		err = p.AddOutput("late", "out", &memOutput{})
		assert.True(t, errors.HasCode(err, errors.ErrCodeUnavailable))
	})
}

func TestPipelineEndToEnd(t *testing.T) {
	p, id := newTestPipeline(t)
	src := &tickSource{metric: id}
	tf := &tagTransform{}
	out := &memOutput{}

	// Ten polls per flush.
	spec := element.TriggerSpec{PollInterval: 10 * time.Millisecond, FlushInterval: 100 * time.Millisecond}
	require.NoError(t, p.AddSource("meter", "ticker", src, spec))
	require.NoError(t, p.AddTransform("calc", "tag", tf))
	require.NoError(t, p.AddOutput("mem", "points", out))

	start := time.Now()
	require.NoError(t, p.Start(context.Background()))
	time.Sleep(350 * time.Millisecond)
	p.Shutdown()
	elapsed := time.Since(start)

	// Timer jitter makes exact counts unreliable; bound the rate from both
	// sides instead. One poll emits one point, so the count can never
	// exceed elapsed time over the poll interval.
	assert.GreaterOrEqual(t, out.batches(), 2, "expected at least two flushes")
	pts := out.points()
	require.NotEmpty(t, pts)
	assert.GreaterOrEqual(t, len(pts), 15)
	assert.LessOrEqual(t, len(pts), int(elapsed/(10*time.Millisecond))+2,
		"source polled more often than its interval allows")
	for _, pt := range pts {
		assert.Equal(t, id, pt.Metric)
		v, ok := pt.Value.AsF64()
		require.True(t, ok)
		assert.Equal(t, 1.0, v)
		assert.Equal(t, "local_machine", pt.Resource.Kind())
		tagged := pt.Attr("tagged")
		require.NotNil(t, tagged, "transform must have run on every point")
		assert.Equal(t, true, tagged.Any())
	}
	assert.Greater(t, tf.applied.Load(), int64(0))
}

func TestShutdownFlushesBufferedPoints(t *testing.T) {
	p, id := newTestPipeline(t)
	src := &tickSource{metric: id}
	out := &memOutput{}

	// The flush interval is far away; only the shutdown flush can deliver.
	spec := element.TriggerSpec{PollInterval: 10 * time.Millisecond, FlushInterval: time.Hour}
	require.NoError(t, p.AddSource("meter", "ticker", src, spec))
	require.NoError(t, p.AddOutput("mem", "points", out))

	require.NoError(t, p.Start(context.Background()))
	time.Sleep(100 * time.Millisecond)
	require.Greater(t, src.polls.Load(), int64(0))
	p.Shutdown()

	assert.NotEmpty(t, out.points(), "buffered points must be flushed on shutdown")
	assert.Equal(t, int64(1), out.closed.Load(), "teardown must run exactly once")

	// Shutdown is idempotent.
	p.Shutdown()
	assert.Equal(t, int64(1), out.closed.Load())
}

func TestPauseAndResume(t *testing.T) {
	p, id := newTestPipeline(t)
	src := &tickSource{metric: id}
	out := &memOutput{}
	spec := element.TriggerAtInterval(10 * time.Millisecond)
	require.NoError(t, p.AddSource("meter", "ticker", src, spec))
	require.NoError(t, p.AddOutput("mem", "points", out))
	require.NoError(t, p.Start(context.Background()))
	defer p.Shutdown()

	time.Sleep(100 * time.Millisecond)
	require.Greater(t, src.polls.Load(), int64(0))

	sel, err := element.ParseSelector("source/meter/ticker")
	require.NoError(t, err)
	results, err := p.Control(sel, Command{Op: OpPause})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)

	// Let any in-flight poll finish before sampling the counter.
	time.Sleep(50 * time.Millisecond)
	paused := src.polls.Load()
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, paused, src.polls.Load(), "a paused source must not be polled")

	statuses := p.Elements()
	require.NotEmpty(t, statuses)
	assert.Equal(t, element.StatePaused, statuses[0].State)

	results, err = p.Control(sel, Command{Op: OpResume})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)

	time.Sleep(150 * time.Millisecond)
	assert.Greater(t, src.polls.Load(), paused, "a resumed source must be polled again")

	// Resuming a running source is an invalid transition, reported
	// per element rather than as a dispatch error.
	results, err = p.Control(sel, Command{Op: OpResume})
	require.NoError(t, err)
	require.Error(t, results[0].Err)
	assert.True(t, errors.HasCode(results[0].Err, errors.ErrCodeUnsupportedOperation))
}

func TestPanickingTransformIsIsolated(t *testing.T) {
	p, id := newTestPipeline(t)
	src := &tickSource{metric: id}
	bad := &panicTransform{}
	good := &tagTransform{}
	out := &memOutput{}

	spec := element.TriggerAtInterval(10 * time.Millisecond)
	require.NoError(t, p.AddSource("meter", "ticker", src, spec))
	require.NoError(t, p.AddTransform("bad", "boom", bad))
	require.NoError(t, p.AddTransform("calc", "tag", good))
	require.NoError(t, p.AddOutput("mem", "points", out))

	require.NoError(t, p.Start(context.Background()))
	time.Sleep(200 * time.Millisecond)
	p.Shutdown()

	assert.Greater(t, bad.calls.Load(), int64(1), "the panicking transform must keep being scheduled")
	assert.NotEmpty(t, out.points(), "outputs must still receive batches")
	for _, pt := range out.points() {
		require.NotNil(t, pt.Attr("tagged"), "the transform after the panicking one must still run")
	}
}

// mistypedSource pushes a u64 point under an f64 metric alongside a valid
// point on every poll.
type mistypedSource struct {
	metric measurement.MetricID
}

func (s *mistypedSource) Poll(_ context.Context, acc *measurement.Accumulator, ts measurement.Timestamp) error {
	acc.Push(measurement.NewPointU64(s.metric, ts, 42, measurement.LocalMachine(), measurement.ConsumerLocalMachine()))
	acc.Push(measurement.NewPointF64(s.metric, ts, 1.0, measurement.LocalMachine(), measurement.ConsumerLocalMachine()))
	return nil
}

func TestMismatchedValueTypeIsDropped(t *testing.T) {
	p, id := newTestPipeline(t)
	src := &mistypedSource{metric: id}
	out := &memOutput{}

	spec := element.TriggerAtInterval(10 * time.Millisecond)
	require.NoError(t, p.AddSource("meter", "ticker", src, spec))
	require.NoError(t, p.AddOutput("mem", "points", out))

	require.NoError(t, p.Start(context.Background()))
	time.Sleep(150 * time.Millisecond)
	p.Shutdown()

	pts := out.points()
	require.NotEmpty(t, pts, "correctly typed points must still flow")
	for _, pt := range pts {
		v, ok := pt.Value.AsF64()
		require.True(t, ok, "a point tagged %s must not reach outputs under an f64 metric", pt.Value.Type())
		assert.Equal(t, 1.0, v)
	}
}

func TestControlWildcard(t *testing.T) {
	p, id := newTestPipeline(t)
	spec := element.TriggerAtInterval(time.Hour)
	require.NoError(t, p.AddSource("meter", "a", &tickSource{metric: id}, spec))
	require.NoError(t, p.AddSource("meter", "b", &tickSource{metric: id}, spec))
	require.NoError(t, p.AddTransform("calc", "tag", &tagTransform{}))
	require.NoError(t, p.AddOutput("mem", "points", &memOutput{}))
	require.NoError(t, p.Start(context.Background()))
	defer p.Shutdown()

	t.Run("pause everything", func(t *testing.T) {
		sel, err := element.ParseSelector("*")
		require.NoError(t, err)
		results, err := p.Control(sel, Command{Op: OpPause})
		require.NoError(t, err)
		require.Len(t, results, 4)
		for _, r := range results {
			assert.NoError(t, r.Err, "pause should apply to %s", r.Element)
		}
		for _, st := range p.Elements() {
			assert.Equal(t, element.StatePaused, st.State, st.Name)
		}

		results, err = p.Control(sel, Command{Op: OpResume})
		require.NoError(t, err)
		for _, r := range results {
			assert.NoError(t, r.Err)
		}
	})

	t.Run("partial failure reported per element", func(t *testing.T) {
		// Stop applies to sources and outputs but not to transforms: the
		// transform's failure must not prevent the others from stopping.
		sel, err := element.ParseSelector("*")
		require.NoError(t, err)
		results, err := p.Control(sel, Command{Op: OpStop})
		require.NoError(t, err)
		require.Len(t, results, 4)

		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
				assert.Equal(t, element.KindTransform, r.Element.Kind)
				assert.True(t, errors.HasCode(r.Err, errors.ErrCodeUnsupportedOperation))
			}
		}
		assert.Equal(t, 1, failed)
	})

	t.Run("no match is a no-op", func(t *testing.T) {
		sel, err := element.ParseSelector("source/nope")
		require.NoError(t, err)
		results, err := p.Control(sel, Command{Op: OpPause})
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestSetPeriod(t *testing.T) {
	p, id := newTestPipeline(t)
	src := &tickSource{metric: id}
	out := &memOutput{}

	// Effectively never polls until the period is lowered.
	require.NoError(t, p.AddSource("meter", "ticker", src, element.TriggerAtInterval(time.Hour)))
	require.NoError(t, p.AddOutput("mem", "points", out))
	require.NoError(t, p.Start(context.Background()))
	defer p.Shutdown()

	sel, err := element.ParseSelector("source/meter/ticker")
	require.NoError(t, err)

	t.Run("requires positive duration", func(t *testing.T) {
		_, err := p.Control(sel, Command{Op: OpSetPeriod})
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))
	})

	results, err := p.Control(sel, Command{Op: OpSetPeriod, Period: 10 * time.Millisecond})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)

	time.Sleep(200 * time.Millisecond)
	assert.Greater(t, src.polls.Load(), int64(2), "the new period must take effect")
}

func TestTriggerNow(t *testing.T) {
	p, id := newTestPipeline(t)
	src := &tickSource{metric: id}
	out := &memOutput{}
	spec := element.TriggerSpec{PollInterval: time.Hour, FlushInterval: time.Hour, ManualTrigger: true}
	require.NoError(t, p.AddSource("meter", "ticker", src, spec))
	require.NoError(t, p.AddSource("meter", "plain", &tickSource{metric: id}, element.TriggerAtInterval(time.Hour)))
	require.NoError(t, p.AddOutput("mem", "points", out))
	require.NoError(t, p.Start(context.Background()))

	t.Run("requires opt-in", func(t *testing.T) {
		sel, err := element.ParseSelector("source/meter/plain")
		require.NoError(t, err)
		results, err := p.Control(sel, Command{Op: OpTriggerNow})
		require.NoError(t, err)
		require.Error(t, results[0].Err)
		assert.True(t, errors.HasCode(results[0].Err, errors.ErrCodeUnsupportedOperation))
	})

	sel, err := element.ParseSelector("source/meter/ticker")
	require.NoError(t, err)
	results, err := p.Control(sel, Command{Op: OpTriggerNow})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(1), src.polls.Load(), "trigger-now must poll out of cycle")

	// The point sits in the accumulation buffer; shutdown delivers it.
	p.Shutdown()
	assert.Len(t, out.points(), 1)
}

func TestStopSingleSource(t *testing.T) {
	p, id := newTestPipeline(t)
	stopped := &tickSource{metric: id}
	kept := &tickSource{metric: id}
	out := &memOutput{}
	spec := element.TriggerAtInterval(10 * time.Millisecond)
	require.NoError(t, p.AddSource("meter", "doomed", stopped, spec))
	require.NoError(t, p.AddSource("meter", "kept", kept, spec))
	require.NoError(t, p.AddOutput("mem", "points", out))
	require.NoError(t, p.Start(context.Background()))
	defer p.Shutdown()

	time.Sleep(100 * time.Millisecond)

	sel, err := element.ParseSelector("source/meter/doomed")
	require.NoError(t, err)
	results, err := p.Control(sel, Command{Op: OpStop})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)

	time.Sleep(50 * time.Millisecond)
	after := stopped.polls.Load()
	keptBefore := kept.polls.Load()
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, after, stopped.polls.Load(), "a stopped source must not be polled")
	assert.Greater(t, kept.polls.Load(), keptBefore, "other sources keep running")

	// Stop is idempotent.
	results, err = p.Control(sel, Command{Op: OpStop})
	require.NoError(t, err)
	assert.NoError(t, results[0].Err)
}

func TestAutonomousSource(t *testing.T) {
	p, _ := newTestPipeline(t)
	id, err := p.Registry().Register(metric.Metric{Name: "event_count", ValueType: measurement.TypeU64, Unit: unit.Unity})
	require.NoError(t, err)
	out := &memOutput{}

	emitted := make(chan struct{})
	auto := autonomousFunc(func(ctx context.Context, emit func(*measurement.Buffer)) error {
		buf := measurement.NewBuffer()
		buf.Push(measurement.NewPointU64(id, measurement.Now(), 42, measurement.LocalMachine(), measurement.ConsumerLocalMachine()))
		emit(buf)
		close(emitted)
		<-ctx.Done()
		return nil
	})
	require.NoError(t, p.AddAutonomousSource("auto", "feed", auto))
	require.NoError(t, p.AddOutput("mem", "points", out))
	require.NoError(t, p.Start(context.Background()))

	select {
	case <-emitted:
	case <-time.After(2 * time.Second):
		t.Fatal("autonomous source never emitted")
	}

	t.Run("pause rejected", func(t *testing.T) {
		sel, err := element.ParseSelector("source/auto/feed")
		require.NoError(t, err)
		results, err := p.Control(sel, Command{Op: OpPause})
		require.NoError(t, err)
		require.Error(t, results[0].Err)
		assert.True(t, errors.HasCode(results[0].Err, errors.ErrCodeUnsupportedOperation))
	})

	p.Shutdown()
	require.Len(t, out.points(), 1)
	v, ok := out.points()[0].Value.AsU64()
	require.True(t, ok)
	assert.Equal(t, uint64(42), v)
}

type autonomousFunc func(ctx context.Context, emit func(*measurement.Buffer)) error

func (f autonomousFunc) Run(ctx context.Context, emit func(*measurement.Buffer)) error {
	return f(ctx, emit)
}

func TestSourceStopsItself(t *testing.T) {
	p, _ := newTestPipeline(t)
	id, err := p.Registry().Register(metric.Metric{Name: "poll_seq", ValueType: measurement.TypeU64, Unit: unit.Unity})
	require.NoError(t, err)
	out := &memOutput{}
	src := &selfStoppingSource{metric: id, after: 3}
	require.NoError(t, p.AddSource("meter", "finite", src, element.TriggerAtInterval(10*time.Millisecond)))
	require.NoError(t, p.AddOutput("mem", "points", out))
	require.NoError(t, p.Start(context.Background()))

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int64(3), src.polls.Load())

	statuses := p.Elements()
	assert.Equal(t, element.StateStopped, statuses[0].State)

	p.Shutdown()
	assert.Len(t, out.points(), 3, "points produced before the stop must be flushed")
}

// selfStoppingSource returns ErrStopPolling after a fixed number of polls.
type selfStoppingSource struct {
	metric measurement.MetricID
	after  int64
	polls  atomic.Int64
}

func (s *selfStoppingSource) Poll(_ context.Context, acc *measurement.Accumulator, ts measurement.Timestamp) error {
	n := s.polls.Add(1)
	acc.Push(measurement.NewPointU64(s.metric, ts, uint64(n), measurement.LocalMachine(), measurement.ConsumerLocalMachine()))
	if n >= s.after {
		return element.ErrStopPolling
	}
	return nil
}

func TestControlRejectedDuringShutdown(t *testing.T) {
	p, id := newTestPipeline(t)
	require.NoError(t, p.AddSource("meter", "ticker", &tickSource{metric: id}, element.TriggerAtInterval(time.Hour)))
	require.NoError(t, p.Start(context.Background()))
	p.Shutdown()

	sel, err := element.ParseSelector("*")
	require.NoError(t, err)
	_, err = p.Control(sel, Command{Op: OpPause})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnavailable))
}

func TestOnDrainedRunsBeforeTeardown(t *testing.T) {
	p, id := newTestPipeline(t)
	out := &memOutput{}
	require.NoError(t, p.AddSource("meter", "ticker", &tickSource{metric: id}, element.TriggerAtInterval(10*time.Millisecond)))
	require.NoError(t, p.AddOutput("mem", "points", out))

	var drained atomic.Int64
	p.OnDrained(func() {
		drained.Add(1)
		assert.Equal(t, int64(0), out.closed.Load(), "drain callbacks run before element teardown")
	})

	require.NoError(t, p.Start(context.Background()))
	time.Sleep(100 * time.Millisecond)
	p.Shutdown()

	assert.Equal(t, int64(1), drained.Load())
	assert.Equal(t, int64(1), out.closed.Load())
}

func TestStartPaused(t *testing.T) {
	p, id := newTestPipeline(t)
	src := &tickSource{metric: id}
	require.NoError(t, p.AddSource("meter", "ticker", src, element.TriggerAtInterval(10*time.Millisecond), WithStartPaused()))
	require.NoError(t, p.Start(context.Background()))
	defer p.Shutdown()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(0), src.polls.Load(), "a source registered paused must not poll before resume")

	sel, err := element.ParseSelector("source/meter/ticker")
	require.NoError(t, err)
	results, err := p.Control(sel, Command{Op: OpResume})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)

	time.Sleep(150 * time.Millisecond)
	assert.Greater(t, src.polls.Load(), int64(0))
}

func TestParseControlOp(t *testing.T) {
	tests := []struct {
		in      string
		want    ControlOp
		wantErr bool
	}{
		{in: "pause", want: OpPause},
		{in: "disable", want: OpPause},
		{in: "resume", want: OpResume},
		{in: "enable", want: OpResume},
		{in: "stop", want: OpStop},
		{in: "set-period", want: OpSetPeriod},
		{in: "set-poll-interval", want: OpSetPeriod},
		{in: "trigger-now", want: OpTriggerNow},
		{in: "restart", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseControlOp(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
