// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/GermanBionicSystems/mcp9903/mcp9903"
	"gopkg.in/yaml.v3"
)

// Config is the optional YAML configuration of the tool. Command line flags
// override the values read from the file.
type Config struct {
	// Bus is the periph I²C bus name, "" for the first available bus.
	Bus     string         `yaml:"bus"`
	MCU     MCUConfig      `yaml:"mcu"`
	Devices []DeviceConfig `yaml:"devices"`
	Output  OutputConfig   `yaml:"output"`
}

// MCUConfig selects the I²C master of a command module MCU reached over a
// serial console instead of a host bus. Used when Device is set.
type MCUConfig struct {
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
	Port   uint8  `yaml:"port"`
}

type DeviceConfig struct {
	Name      string   `yaml:"name"`
	Addr      uint16   `yaml:"addr"`
	Verbosity string   `yaml:"verbosity"`
	Channels  []string `yaml:"channels"`

	verbosity mcp9903.Verbosity
	channels  []mcp9903.Channel
}

type OutputConfig struct {
	Bar      bool          `yaml:"bar"`
	PNG      string        `yaml:"png"`
	Interval time.Duration `yaml:"interval"`
	// Count is the number of reading rounds, 0 runs until interrupted.
	Count int `yaml:"count"`
}

var channelNames = map[string]mcp9903.Channel{
	mcp9903.Internal.String():  mcp9903.Internal,
	mcp9903.External1.String(): mcp9903.External1,
	mcp9903.External2.String(): mcp9903.External2,
}

func defaultConfig() *Config {
	return &Config{
		Output: OutputConfig{Interval: time.Second, Count: 1},
	}
}

// loadConfig reads the YAML file at path on top of the defaults.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// validate checks the configuration and resolves the textual settings. It
// fills in a default device when none is configured.
func (cfg *Config) validate() error {
	if len(cfg.Devices) == 0 {
		cfg.Devices = []DeviceConfig{{Name: "MCP9903", Addr: mcp9903.DefaultAddress}}
	}
	seen := map[uint16]string{}
	for i := range cfg.Devices {
		d := &cfg.Devices[i]
		if d.Name == "" {
			d.Name = fmt.Sprintf("mcp9903@0x%02x", d.Addr)
		}
		if d.Addr == 0 || d.Addr > 0x7f {
			return fmt.Errorf("device %q: invalid address 0x%x", d.Name, d.Addr)
		}
		if other, ok := seen[d.Addr]; ok {
			return fmt.Errorf("device %q: address 0x%02x already used by %q", d.Name, d.Addr, other)
		}
		seen[d.Addr] = d.Name
		if err := d.verbosity.UnmarshalText([]byte(d.Verbosity)); err != nil {
			return fmt.Errorf("device %q: %w", d.Name, err)
		}
		if len(d.Channels) == 0 {
			d.Channels = []string{"internal", "external1", "external2"}
		}
		d.channels = d.channels[:0]
		for _, name := range d.Channels {
			ch, ok := channelNames[name]
			if !ok {
				return fmt.Errorf("device %q: unknown channel %q", d.Name, name)
			}
			d.channels = append(d.channels, ch)
		}
	}
	if cfg.Output.Count < 0 {
		return fmt.Errorf("invalid count %d", cfg.Output.Count)
	}
	if cfg.Output.Interval <= 0 {
		cfg.Output.Interval = time.Second
	}
	return nil
}
