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

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/NVIDIA/osmet/pkg/measurement"
	"github.com/NVIDIA/osmet/pkg/metric"
	"github.com/NVIDIA/osmet/pkg/pipeline"
	"github.com/NVIDIA/osmet/pkg/pipeline/element"
	"github.com/NVIDIA/osmet/pkg/unit"
)

type noopSource struct{}

func (noopSource) Poll(context.Context, *measurement.Accumulator, measurement.Timestamp) error {
	return nil
}

func newTestServer(t *testing.T) (*Server, *pipeline.Pipeline) {
	t.Helper()

	reg := metric.NewRegistry()
	_, err := reg.Register(metric.Metric{Name: "probe_metric", ValueType: measurement.TypeU64, Unit: unit.Unity})
	require.NoError(t, err)

	pipe := pipeline.New(reg)
	require.NoError(t, pipe.AddSource("probe", "noop", noopSource{}, element.TriggerAtInterval(time.Hour)))

	return NewServer(DefaultConfig(), pipe), pipe
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.handleHealth(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.False(t, resp.Timestamp.IsZero())

	t.Run("method not allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s.handleHealth(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestHandleReady(t *testing.T) {
	s, pipe := newTestServer(t)

	t.Run("not ready before start", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "not_ready", resp.Status)
		assert.NotEmpty(t, resp.Reason)
	})

	require.NoError(t, pipe.Start(context.Background()))
	s.SetReady(true)

	t.Run("ready while running", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	pipe.Shutdown()

	t.Run("not ready after shutdown", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestHandleElements(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleElements(rec, httptest.NewRequest(http.MethodGet, "/v1/elements", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp ElementsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "source/probe/noop", resp.Elements[0].Name)
	assert.Equal(t, "source", resp.Elements[0].Kind)
	assert.Equal(t, element.StateCreated, resp.Elements[0].State)
}

func TestRequestIDMiddleware(t *testing.T) {
	s, _ := newTestServer(t)

	handler := s.requestIDMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("generates id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/v1/elements", nil))
		assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	})

	t.Run("keeps valid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/elements", nil)
		req.Header.Set("X-Request-Id", "7be1a8d6-6d62-4f42-9a13-8a96d6e03d32")
		rec := httptest.NewRecorder()
		handler(rec, req)
		assert.Equal(t, "7be1a8d6-6d62-4f42-9a13-8a96d6e03d32", rec.Header().Get("X-Request-Id"))
	})

	t.Run("replaces invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/elements", nil)
		req.Header.Set("X-Request-Id", "not-a-uuid")
		rec := httptest.NewRecorder()
		handler(rec, req)
		assert.NotEqual(t, "not-a-uuid", rec.Header().Get("X-Request-Id"))
		assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimit = rate.Limit(1)
	cfg.RateLimitBurst = 2

	reg := metric.NewRegistry()
	pipe := pipeline.New(reg)
	s := NewServer(cfg, pipe)

	handler := s.rateLimitMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	allowed, limited := 0, 0
	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/v1/elements", nil))
		switch rec.Code {
		case http.StatusOK:
			allowed++
		case http.StatusTooManyRequests:
			limited++
			assert.Equal(t, "1", rec.Header().Get("Retry-After"))
		}
	}
	assert.LessOrEqual(t, allowed, 3)
	assert.GreaterOrEqual(t, limited, 7)
}

func TestPanicRecoveryMiddleware(t *testing.T) {
	s, _ := newTestServer(t)

	handler := s.panicRecoveryMiddleware(func(w http.ResponseWriter, r *http.Request) {
		panic("handler exploded")
	})

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler(rec, httptest.NewRequest(http.MethodGet, "/v1/elements", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Internal server error", resp.Message)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Port = -1
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Port = 70000
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.RateLimit = 0
	assert.Error(t, cfg.Validate())
}
