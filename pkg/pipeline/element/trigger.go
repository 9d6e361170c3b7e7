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

package element

import (
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/osmet/pkg/errors"
)

// TriggerSpec controls when a managed source is polled and how its
// accumulated points are batched.
//
// The source is polled every PollInterval; accumulated points are flushed
// downstream every FlushInterval, batching multiple polls. FlushInterval is
// the upper bound on the latency from "point produced" to "point handed
// downstream".
type TriggerSpec struct {
	// PollInterval is the period between two polls of the source.
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`

	// FlushInterval is the period between two flushes. It must be at least
	// PollInterval; zero defaults to PollInterval (flush on every poll).
	FlushInterval time.Duration `json:"flush_interval,omitempty" yaml:"flush_interval,omitempty"`

	// ManualTrigger opts the source into out-of-band polling via the
	// trigger-now control command.
	ManualTrigger bool `json:"manual_trigger,omitempty" yaml:"manual_trigger,omitempty"`
}

// TriggerAtInterval returns a spec that polls and flushes at the same interval.
func TriggerAtInterval(pollInterval time.Duration) TriggerSpec {
	return TriggerSpec{PollInterval: pollInterval, FlushInterval: pollInterval}
}

// Validate checks the spec and normalizes a zero FlushInterval to
// PollInterval.
func (t *TriggerSpec) Validate() error {
	if t.PollInterval <= 0 {
		return errors.Newf(errors.ErrCodeInvalidRequest, "poll interval must be positive, got %s", t.PollInterval)
	}
	if t.FlushInterval == 0 {
		t.FlushInterval = t.PollInterval
	}
	if t.FlushInterval < t.PollInterval {
		return errors.Newf(errors.ErrCodeInvalidRequest,
			"flush interval %s must not be shorter than poll interval %s", t.FlushInterval, t.PollInterval)
	}
	return nil
}

// FlushRounds returns the number of polls per flush, at least 1.
// The rounding bias is downward so that FlushInterval stays an upper bound
// on batching latency.
func (t TriggerSpec) FlushRounds() int {
	if t.PollInterval <= 0 {
		return 1
	}
	rounds := int(t.FlushInterval / t.PollInterval)
	if rounds < 1 {
		return 1
	}
	return rounds
}

// UnmarshalYAML accepts durations in Go syntax ("250ms", "1s") as well as
// plain integer nanoseconds, so config files stay human-readable.
func (t *TriggerSpec) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		PollInterval  string `yaml:"poll_interval"`
		FlushInterval string `yaml:"flush_interval"`
		ManualTrigger bool   `yaml:"manual_trigger"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	poll, err := parseDuration(raw.PollInterval)
	if err != nil {
		return err
	}
	flush, err := parseDuration(raw.FlushInterval)
	if err != nil {
		return err
	}
	t.PollInterval = poll
	t.FlushInterval = flush
	t.ManualTrigger = raw.ManualTrigger
	return nil
}

// MarshalYAML emits durations in Go syntax, matching what UnmarshalYAML
// accepts.
func (t TriggerSpec) MarshalYAML() (any, error) {
	out := map[string]any{"poll_interval": t.PollInterval.String()}
	if t.FlushInterval != 0 {
		out["flush_interval"] = t.FlushInterval.String()
	}
	if t.ManualTrigger {
		out["manual_trigger"] = true
	}
	return out, nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(n), nil
	}
	return 0, errors.Newf(errors.ErrCodeInvalidRequest, "invalid duration %q", s)
}

// WithPollInterval returns a copy of the spec with a new poll interval,
// preserving the poll-to-flush ratio. Used by the set-period control
// command.
func (t TriggerSpec) WithPollInterval(pollInterval time.Duration) TriggerSpec {
	rounds := t.FlushRounds()
	out := t
	out.PollInterval = pollInterval
	out.FlushInterval = time.Duration(rounds) * pollInterval
	return out
}
