// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package devices is a container for the MCP9903 remote diode temperature
// sensor driver and its tooling.
//
// mcp9903 is the driver, mcui2c exposes the I²C master of a command module
// MCU reached over its serial console, thermbar draws temperatures as
// terminal bars and cmd/mcp9903 ties them together.
package devices
