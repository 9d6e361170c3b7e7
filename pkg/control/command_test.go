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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/osmet/pkg/errors"
	"github.com/NVIDIA/osmet/pkg/pipeline"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		shutdown bool
		selector string
		op       pipeline.ControlOp
		period   time.Duration
		ignored  bool
		wantErr  bool
	}{
		{name: "empty line", line: "", ignored: true},
		{name: "whitespace only", line: "   \t ", ignored: true},
		{name: "comment", line: "# pause the rapl sources", ignored: true},

		{name: "shutdown", line: "shutdown", shutdown: true},
		{name: "stop alias", line: "stop", shutdown: true},
		{name: "shutdown with args", line: "shutdown now", wantErr: true},

		{name: "pause all", line: "control * pause", selector: "*/*/*", op: pipeline.OpPause},
		{name: "pause synonym", line: "control sources/rapl disable", selector: "source/rapl/*", op: pipeline.OpPause},
		{name: "resume", line: "control source/rapl/pkg resume", selector: "source/rapl/pkg", op: pipeline.OpResume},
		{name: "resume synonym", line: "control output/csv enable", selector: "output/csv/*", op: pipeline.OpResume},
		{name: "stop element", line: "control source/rapl stop", selector: "source/rapl/*", op: pipeline.OpStop},
		{name: "trigger now", line: "control source/rapl/pkg trigger-now", selector: "source/rapl/pkg", op: pipeline.OpTriggerNow},

		{name: "set period", line: "control source/rapl set-period 500ms", selector: "source/rapl/*", op: pipeline.OpSetPeriod, period: 500 * time.Millisecond},
		{name: "set period synonym", line: "control source/rapl set-poll-interval 2s", selector: "source/rapl/*", op: pipeline.OpSetPeriod, period: 2 * time.Second},
		{name: "set period missing arg", line: "control source/rapl set-period", wantErr: true},
		{name: "set period extra arg", line: "control source/rapl set-period 1s 2s", wantErr: true},
		{name: "set period bad duration", line: "control source/rapl set-period soon", wantErr: true},
		{name: "set period negative", line: "control source/rapl set-period -1s", wantErr: true},
		{name: "set period zero", line: "control source/rapl set-period 0s", wantErr: true},

		{name: "pause with arg", line: "control * pause 1s", wantErr: true},
		{name: "missing operation", line: "control source/rapl", wantErr: true},
		{name: "bad selector", line: "control widget/rapl pause", wantErr: true},
		{name: "bad operation", line: "control source/rapl restart", wantErr: true},
		{name: "unknown command", line: "reload", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, err := ParseLine(tc.line)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tc.ignored {
				assert.True(t, req.empty())
				return
			}
			assert.False(t, req.empty())
			assert.Equal(t, tc.shutdown, req.Shutdown)
			if tc.shutdown {
				return
			}
			assert.Equal(t, tc.selector, req.Selector.String())
			assert.Equal(t, tc.op, req.Command.Op)
			assert.Equal(t, tc.period, req.Command.Period)
		})
	}
}

func TestParseLineErrorCodes(t *testing.T) {
	_, err := ParseLine("control source/rapl set-period soon")
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))

	_, err = ParseLine("control a*b pause")
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidSelector))
}
