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
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/osmet/pkg/control"
	"github.com/NVIDIA/osmet/pkg/errors"
	"github.com/NVIDIA/osmet/pkg/metric"
	"github.com/NVIDIA/osmet/pkg/pipeline"
	"github.com/NVIDIA/osmet/pkg/plugin"
	"github.com/NVIDIA/osmet/pkg/server"
)

// Agent assembles the pipeline, its plugins, and the host-facing servers.
type Agent struct {
	cfg     *Config
	pipe    *pipeline.Pipeline
	events  *plugin.EventBus[plugin.Event]
	plugins []plugin.Plugin
	started []plugin.Plugin
}

// New creates an agent with the given configuration. A nil config uses
// defaults.
func New(cfg *Config) *Agent {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Agent{
		cfg:    cfg,
		pipe:   pipeline.New(metric.NewRegistry()),
		events: plugin.NewEventBus[plugin.Event](),
	}
}

// Pipeline returns the agent's pipeline, for tests and embedding hosts.
func (a *Agent) Pipeline() *pipeline.Pipeline {
	return a.pipe
}

// AddPlugin queues a plugin for registration. Must be called before Run.
func (a *Agent) AddPlugin(p plugin.Plugin) {
	a.plugins = append(a.plugins, p)
}

// Run starts the agent and blocks until shutdown completes. Shutdown is
// triggered by SIGINT/SIGTERM, the shutdown control command, or
// cancellation of ctx.
func (a *Agent) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.registerPlugins(); err != nil {
		return err
	}

	// The drain notification must reach plugins before their elements are
	// torn down.
	a.pipe.OnDrained(func() {
		a.events.Publish(plugin.Event{Kind: plugin.EndOfMeasurement, Time: time.Now()})
	})

	// runCtx ends when shutdown is requested from any path.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.pipe.Start(runCtx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(runCtx)

	if a.cfg.ControlSocket != "" {
		ctl := control.NewServer(a.cfg.ControlSocket, a.pipe, cancel)
		g.Go(func() error { return ctl.Run(gctx) })
	}
	if a.cfg.HTTP != nil {
		srv := server.NewServer(a.cfg.HTTP, a.pipe)
		srv.SetReady(true)
		g.Go(func() error { return srv.Run(gctx) })
	}

	// The pipeline shuts itself down when runCtx ends; once it has fully
	// drained, stop the servers as well.
	g.Go(func() error {
		select {
		case <-a.pipe.Done():
		case <-gctx.Done():
			notifyStopping()
			<-a.pipe.Done()
		}
		cancel()
		return nil
	})

	notifyReady()
	slog.Info("agent running", slog.Int("plugins", len(a.started)))

	err := g.Wait()
	a.stopPlugins()
	slog.Info("agent stopped")
	return err
}

// registerPlugins runs phase 1: every plugin registers its metrics and
// elements. A failing plugin aborts start-up unless marked optional.
func (a *Agent) registerPlugins() error {
	for _, p := range a.plugins {
		pc := a.cfg.Plugins[p.Name()]

		var opts []plugin.RegistrarOption
		if pc.SkipFailedUnits {
			opts = append(opts, plugin.WithSkipFailedUnits())
		}
		if len(pc.Sources) > 0 {
			opts = append(opts, plugin.WithTriggerOverrides(pc.Sources))
		}

		reg := plugin.NewRegistrar(p.Name(), a.pipe, a.events, opts...)
		if err := p.Start(reg); err != nil {
			if pc.Optional {
				slog.Warn("skipping optional plugin",
					slog.String("plugin", p.Name()),
					slog.String("error", err.Error()))
				continue
			}
			return errors.Wrap(errors.ErrCodeInternal, "plugin "+p.Name()+" failed to start", err)
		}
		a.started = append(a.started, p)
		slog.Info("plugin registered",
			slog.String("plugin", p.Name()),
			slog.Int("skipped_elements", len(reg.Skipped())))
	}
	return nil
}

// stopPlugins stops started plugins in reverse registration order.
func (a *Agent) stopPlugins() {
	for i := len(a.started) - 1; i >= 0; i-- {
		p := a.started[i]
		if err := p.Stop(); err != nil {
			slog.Error("plugin stop failed",
				slog.String("plugin", p.Name()),
				slog.String("error", err.Error()))
		}
	}
}

func notifyReady() {
	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		slog.Debug("sd_notify failed", slog.String("error", err.Error()))
	} else if ok {
		slog.Debug("notified systemd: ready")
	}
}

func notifyStopping() {
	if ok, err := daemon.SdNotify(false, daemon.SdNotifyStopping); err != nil {
		slog.Debug("sd_notify failed", slog.String("error", err.Error()))
	} else if ok {
		slog.Debug("notified systemd: stopping")
	}
}
