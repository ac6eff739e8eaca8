// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp9903

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
)

// Channel selects one of the temperature channels of the device.
type Channel int

const (
	Internal Channel = iota
	External1
	External2
)

const (
	rawBits    = 11
	rawMask    = 1<<rawBits - 1
	rawSignBit = 1 << (rawBits - 1)

	stepCelsius = 0.125

	_DEGREES_RESOLUTION physic.Temperature = 125 * physic.MilliKelvin
)

// registers returns the integer and fractional part registers of ch.
func (ch Channel) registers() (Register, Register, error) {
	switch ch {
	case Internal:
		return RegInternalTempInt, RegInternalTempFrac, nil
	case External1:
		return RegExternal1TempInt, RegExternal1TempFrac, nil
	case External2:
		return RegExternal2TempInt, RegExternal2TempFrac, nil
	}
	return 0, 0, fmt.Errorf("mcp9903: invalid channel %d", int(ch))
}

func (ch Channel) String() string {
	switch ch {
	case Internal:
		return "internal"
	case External1:
		return "external1"
	case External2:
		return "external2"
	}
	return fmt.Sprintf("Channel(%d)", int(ch))
}

// Decode converts the integer and fractional temperature register values to
// degrees Celsius.
//
// The registers hold an 11 bit two's-complement value: the integer register
// is the upper 8 bits, bits 7:5 of the fractional register are the lower 3
// bits. Only the lowest two of those contribute 0.125°C steps.
func Decode(hi, lo byte) float64 {
	raw := uint16(hi)<<3 | uint16(lo&0xe0)>>5
	sign := 1.0
	if raw&rawSignBit != 0 {
		// The negation runs on 16 bits, mask back down to the field width.
		raw = (^raw + 1) & rawMask
		sign = -1.0
	}
	whole := (raw >> 3) & 0xff
	eighths := raw & 0x3
	return sign * (float64(whole) + float64(eighths)*stepCelsius)
}

// DecodeTemperature is Decode expressed as a physic.Temperature.
func DecodeTemperature(hi, lo byte) physic.Temperature {
	return celsius(Decode(hi, lo))
}

// celsius converts degrees Celsius to a physic.Temperature. Decoded values
// are multiples of 0.125 so the conversion is exact.
func celsius(c float64) physic.Temperature {
	return physic.ZeroCelsius + physic.Temperature(c*float64(physic.Celsius))
}
