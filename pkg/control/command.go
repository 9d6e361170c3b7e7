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
	"strings"
	"time"

	"github.com/NVIDIA/osmet/pkg/errors"
	"github.com/NVIDIA/osmet/pkg/pipeline"
	"github.com/NVIDIA/osmet/pkg/pipeline/element"
)

// Request is one parsed command line.
type Request struct {
	// Shutdown is set for the "shutdown"/"stop" forms; the other fields
	// are then empty.
	Shutdown bool

	Selector element.Selector
	Command  pipeline.Command
}

// ParseLine parses one command line. Empty lines and comment lines
// starting with '#' parse to a zero Request and nil error; callers should
// ignore them.
func ParseLine(line string) (Request, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return Request{}, nil
	}

	switch fields[0] {
	case "shutdown", "stop":
		if len(fields) != 1 {
			return Request{}, errors.Newf(errors.ErrCodeInvalidRequest, "%s takes no arguments", fields[0])
		}
		return Request{Shutdown: true}, nil

	case "control":
		if len(fields) < 3 {
			return Request{}, errors.New(errors.ErrCodeInvalidRequest, "usage: control <selector> <operation> [argument]")
		}
		sel, err := element.ParseSelector(fields[1])
		if err != nil {
			return Request{}, err
		}
		op, err := pipeline.ParseControlOp(fields[2])
		if err != nil {
			return Request{}, err
		}
		cmd := pipeline.Command{Op: op}

		args := fields[3:]
		switch op {
		case pipeline.OpSetPeriod:
			if len(args) != 1 {
				return Request{}, errors.New(errors.ErrCodeInvalidRequest, "set-period requires exactly one duration argument")
			}
			period, err := time.ParseDuration(args[0])
			if err != nil {
				return Request{}, errors.Newf(errors.ErrCodeInvalidRequest, "invalid duration %q", args[0])
			}
			if period <= 0 {
				return Request{}, errors.Newf(errors.ErrCodeInvalidRequest, "duration %q is not positive", args[0])
			}
			cmd.Period = period
		default:
			if len(args) != 0 {
				return Request{}, errors.Newf(errors.ErrCodeInvalidRequest, "%s takes no arguments", fields[2])
			}
		}
		return Request{Selector: sel, Command: cmd}, nil

	default:
		return Request{}, errors.Newf(errors.ErrCodeInvalidRequest, "unknown command %q", fields[0])
	}
}

// empty reports whether the request came from a blank or comment line.
func (r Request) empty() bool {
	return !r.Shutdown && r.Selector.Kind == nil && r.Command.Op == ""
}
