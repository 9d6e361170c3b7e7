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

package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/osmet/pkg/agent"
	"github.com/NVIDIA/osmet/pkg/plugins/console"
	"github.com/NVIDIA/osmet/pkg/plugins/selfmon"
	"github.com/NVIDIA/osmet/pkg/serializer"
)

func runCmd() *cli.Command {
	return &cli.Command{
		Name:                  "run",
		EnableShellCompletion: true,
		Usage:                 "Run the measurement agent",
		Description: `Run the measurement pipeline agent until interrupted.

The agent starts with the built-in plugins: selfmon (a managed source
measuring the agent process itself) and console (an output writing points
to stdout or a file). Per-plugin settings, source cadences, the control
socket path and the HTTP server are configured in the YAML config file.

# Examples

Run with defaults, points on stdout as JSON:
  osmet run

Run with a config file and YAML point output to a file:
  osmet run --config /etc/osmet/config.yaml --format yaml --output /var/log/osmet/points.yaml

Control the running agent:
  echo "control source/selfmon pause" | nc -U /run/osmet/control.sock`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config file",
				Sources: cli.EnvVars("OSMET_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "socket",
				Usage:   "Control socket path (overrides config)",
				Sources: cli.EnvVars("OSMET_SOCKET"),
			},
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := agent.DefaultConfig()
			if path := cmd.String("config"); path != "" {
				loaded, err := agent.LoadConfig(path)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if socket := cmd.String("socket"); socket != "" {
				cfg.ControlSocket = socket
			}

			format := serializer.Format(cmd.String("format"))
			if format.IsUnknown() {
				return fmt.Errorf("unknown output format: %q", format)
			}

			a := agent.New(cfg)
			a.AddPlugin(&selfmon.Plugin{})
			a.AddPlugin(&console.Plugin{
				Format: format,
				Path:   cmd.String("output"),
			})
			return a.Run(ctx)
		},
	}
}
