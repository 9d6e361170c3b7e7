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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Source scheduling metrics
	sourcePolls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmet_pipeline_source_polls_total",
			Help: "Total number of polls per source",
		},
		[]string{"source"},
	)

	sourcePollErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmet_pipeline_source_poll_errors_total",
			Help: "Total number of failed polls per source",
		},
		[]string{"source"},
	)

	sourcePollDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "osmet_pipeline_source_poll_duration_seconds",
			Help:    "Time taken by a single poll",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1, 10},
		},
		[]string{"source"},
	)

	sourceFlushes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmet_pipeline_source_flushes_total",
			Help: "Total number of flushed batches per source",
		},
		[]string{"source"},
	)

	sourceFlushedPoints = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmet_pipeline_source_flushed_points_total",
			Help: "Total number of measurement points flushed per source",
		},
		[]string{"source"},
	)

	sourceRejectedPoints = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmet_pipeline_source_rejected_points_total",
			Help: "Total number of points dropped because their value type does not match the metric declaration",
		},
		[]string{"source"},
	)

	// Transform chain metrics
	transformDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "osmet_pipeline_transform_duration_seconds",
			Help:    "Time taken by a transform to process one batch",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1},
		},
		[]string{"transform"},
	)

	transformErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmet_pipeline_transform_errors_total",
			Help: "Total number of failed transform applications",
		},
		[]string{"transform"},
	)

	// Output delivery metrics
	outputWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmet_pipeline_output_writes_total",
			Help: "Total number of batch writes per output",
		},
		[]string{"output", "status"}, // status: success or error
	)

	outputWriteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "osmet_pipeline_output_write_duration_seconds",
			Help:    "Time taken by an output to write one batch",
			Buckets: []float64{0.001, 0.01, 0.1, 1, 10, 60},
		},
		[]string{"output"},
	)

	outputDroppedBatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmet_pipeline_output_dropped_batches_total",
			Help: "Total number of batches dropped because an output queue was full",
		},
		[]string{"output"},
	)

	// Control plane metrics
	controlCommands = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmet_pipeline_control_commands_total",
			Help: "Total number of control operations applied to elements",
		},
		[]string{"op", "status"},
	)
)
