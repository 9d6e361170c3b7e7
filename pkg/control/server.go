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

package control

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/NVIDIA/osmet/pkg/defaults"
	"github.com/NVIDIA/osmet/pkg/errors"
	"github.com/NVIDIA/osmet/pkg/pipeline"
)

// Server accepts control connections on a unix socket and applies parsed
// commands to the pipeline.
type Server struct {
	path       string
	pipe       *pipeline.Pipeline
	onShutdown func()

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

// NewServer creates a control server for the given socket path. onShutdown
// is invoked once when a client issues the shutdown command; the host is
// expected to stop the pipeline and the servers in response.
func NewServer(socketPath string, pipe *pipeline.Pipeline, onShutdown func()) *Server {
	return &Server{
		path:       socketPath,
		pipe:       pipe,
		onShutdown: onShutdown,
		conns:      make(map[net.Conn]struct{}),
	}
}

// Run listens on the socket and serves connections until the context is
// cancelled. The socket file is removed on exit.
func (s *Server) Run(ctx context.Context) error {
	// A previous unclean exit may have left the socket file behind.
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeInternal, "removing stale control socket", err)
	}

	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "listening on control socket", err)
	}
	slog.Info("control socket ready", slog.String("path", s.path))

	go func() {
		<-ctx.Done()
		ln.Close()
		s.mu.Lock()
		for c := range s.conns {
			c.Close()
		}
		s.mu.Unlock()
	}()

	defer os.Remove(s.path)

	var wg sync.WaitGroup
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				wg.Wait()
				return nil
			}
			slog.Error("control accept failed", slog.String("error", err.Error()))
			continue
		}
		s.track(conn, true)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer s.track(conn, false)
			s.serve(ctx, conn)
		}()
	}
}

func (s *Server) track(conn net.Conn, add bool) {
	s.mu.Lock()
	if add {
		s.conns[conn] = struct{}{}
	} else {
		delete(s.conns, conn)
	}
	s.mu.Unlock()
}

// serve handles one connection: one command per line, replies written back
// on the same connection.
func (s *Server) serve(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	connID := uuid.NewString()
	slog.Debug("control connection opened", slog.String("conn", connID))
	defer slog.Debug("control connection closed", slog.String("conn", connID))

	limiter := rate.NewLimiter(rate.Limit(defaults.ControlRateLimit), defaults.ControlRateBurst)

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 1024), defaults.ControlMaxLineBytes)

	for {
		if err := conn.SetReadDeadline(time.Now().Add(defaults.ControlReadTimeout)); err != nil {
			return
		}
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()

		if !limiter.Allow() {
			writeLine(conn, "error: rate limit exceeded")
			continue
		}

		req, err := ParseLine(line)
		if err != nil {
			writeLine(conn, "error: %s", err.Error())
			continue
		}
		if req.empty() {
			continue
		}

		if req.Shutdown {
			slog.Info("shutdown requested over control socket", slog.String("conn", connID))
			writeLine(conn, "ok")
			s.onShutdown()
			return
		}

		results, err := s.pipe.Control(req.Selector, req.Command)
		if err != nil {
			slog.Warn("control command rejected",
				slog.String("conn", connID),
				slog.String("selector", req.Selector.String()),
				slog.String("op", string(req.Command.Op)),
				slog.String("error", err.Error()))
			writeLine(conn, "error: %s", err.Error())
			continue
		}
		if len(results) == 0 {
			// Matching nothing is fine, there is just nothing to do.
			writeLine(conn, "ok")
		}
		for _, r := range results {
			if r.Err != nil {
				writeLine(conn, "error %s: %s", r.Element, r.Err.Error())
			} else {
				writeLine(conn, "ok %s", r.Element)
			}
		}
		slog.Info("control command applied",
			slog.String("conn", connID),
			slog.String("selector", req.Selector.String()),
			slog.String("op", string(req.Command.Op)),
			slog.Int("matched", len(results)))
	}
}

func writeLine(conn net.Conn, format string, args ...any) {
	fmt.Fprintf(conn, format+"\n", args...)
}
