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
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/osmet/pkg/pipeline/element"
	"github.com/NVIDIA/osmet/pkg/server"
)

// Config is the agent configuration, typically loaded from a YAML file.
type Config struct {
	// ControlSocket is the path of the unix control socket; empty disables
	// the control server.
	ControlSocket string `yaml:"control_socket"`

	// HTTP configures the introspection server; nil disables it.
	HTTP *server.Config `yaml:"http"`

	// Plugins holds per-plugin settings, keyed by plugin name. Plugins not
	// listed here run with defaults.
	Plugins map[string]PluginConfig `yaml:"plugins"`
}

// PluginConfig holds host-side settings for one plugin.
type PluginConfig struct {
	// Optional makes a registration failure of this plugin non-fatal: the
	// plugin is skipped and start-up continues.
	Optional bool `yaml:"optional"`

	// SkipFailedUnits makes individual element registration failures within
	// the plugin non-fatal.
	SkipFailedUnits bool `yaml:"skip_failed_units"`

	// Sources overrides source trigger cadences, keyed by source name.
	Sources map[string]element.TriggerSpec `yaml:"sources"`
}

// DefaultConfig returns a config with the control socket and HTTP server
// enabled on default addresses.
func DefaultConfig() *Config {
	return &Config{
		ControlSocket: "/run/osmet/control.sock",
		HTTP:          server.DefaultConfig(),
	}
}

// LoadConfig reads a YAML config file. Settings not present in the file
// keep their defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.HTTP != nil {
		if err := c.HTTP.Validate(); err != nil {
			return err
		}
	}
	for plugin, pc := range c.Plugins {
		for source, spec := range pc.Sources {
			s := spec
			if err := s.Validate(); err != nil {
				return fmt.Errorf("plugin %s source %s: %w", plugin, source, err)
			}
		}
	}
	return nil
}
