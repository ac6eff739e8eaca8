// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package mcp9903 provides a driver for the Microchip MCP9903 multi-channel
// low-temperature remote diode sensor.
//
// The device has one internal diode and two external diode channels. Every
// register is 8 bits wide and is accessed with a register address write
// followed by a repeated-start read, or with an address+data write.
//
// Temperatures are split across an integer and a fractional register. The
// pair forms an 11 bit two's-complement value with 1/8 °C steps.
//
// Range: -64°C - 191.875°C (extended), 0°C - 127.875°C (default)
//
// Resolution: 0.125°C
//
// The driver can sit on any periph I²C bus (NewI2C) or on any Transport (New),
// such as the MCU hosted bus in package mcui2c.
//
// # Datasheet
//
// https://ww1.microchip.com/downloads/en/DeviceDoc/20005382B.pdf
package mcp9903
