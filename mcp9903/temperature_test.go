// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp9903

import (
	"math"
	"testing"

	"periph.io/x/conn/v3/physic"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		hi, lo byte
		want   float64
	}{
		{0x19, 0x00, 25.0},
		{0xe7, 0x00, -25.0},
		{0x19, 0x40, 25.25},
		{0x19, 0x20, 25.125},
		{0x19, 0x60, 25.375},
		// Bit 7 of the fractional register is dropped by the 0x3 mask.
		{0x19, 0x80, 25.0},
		{0x19, 0xe0, 25.375},
		// Bits 4:0 of the fractional register are not part of the value.
		{0x19, 0x1f, 25.0},
		{0x00, 0x00, 0.0},
		{0x64, 0x00, 100.0},
		{0x7f, 0x60, 127.375},
		{0xff, 0x00, -1.0},
		{0xc9, 0x00, -55.0},
		{0x80, 0x00, -128.0},
		// -0.125 is 0x7ff, the magnitude after negation is 1.
		{0xff, 0xe0, -0.125},
		{0xe6, 0xc0, -25.25},
	}
	for _, tc := range tests {
		if got := Decode(tc.hi, tc.lo); got != tc.want {
			t.Errorf("Decode(0x%02x, 0x%02x) = %v, want %v", tc.hi, tc.lo, got, tc.want)
		}
	}
}

func TestDecodeProperties(t *testing.T) {
	for hi := 0; hi < 256; hi++ {
		for lo := 0; lo < 256; lo++ {
			got := Decode(byte(hi), byte(lo))
			if got != Decode(byte(hi), byte(lo)&0xe0) {
				t.Fatalf("Decode(0x%02x, 0x%02x) depends on fractional bits 4:0", hi, lo)
			}
			if f := got * 8; f != math.Trunc(f) {
				t.Fatalf("Decode(0x%02x, 0x%02x) = %v, not a multiple of 0.125", hi, lo, got)
			}
			if got < -128 || got > 128 {
				t.Fatalf("Decode(0x%02x, 0x%02x) = %v out of range", hi, lo, got)
			}
		}
	}
	for w := 1; w < 128; w++ {
		if p, n := Decode(byte(w), 0), Decode(byte(-w), 0); p != -n || p != float64(w) {
			t.Errorf("Decode(0x%02x) = %v, Decode(0x%02x) = %v, want ±%d", byte(w), p, byte(-w), n, w)
		}
	}
}

func TestDecodeTemperature(t *testing.T) {
	tests := []struct {
		hi, lo byte
		want   physic.Temperature
	}{
		{0x19, 0x00, physic.ZeroCelsius + 25*physic.Kelvin},
		{0xe7, 0x00, physic.ZeroCelsius - 25*physic.Kelvin},
		{0x19, 0x40, physic.ZeroCelsius + 25*physic.Kelvin + 250*physic.MilliKelvin},
		{0x00, 0x20, physic.ZeroCelsius + _DEGREES_RESOLUTION},
	}
	for _, tc := range tests {
		if got := DecodeTemperature(tc.hi, tc.lo); got != tc.want {
			t.Errorf("DecodeTemperature(0x%02x, 0x%02x) = %s, want %s", tc.hi, tc.lo, got, tc.want)
		}
	}
}

func TestChannel(t *testing.T) {
	tests := []struct {
		ch            Channel
		name          string
		regInt, regFr Register
	}{
		{Internal, "internal", 0x00, 0x29},
		{External1, "external1", 0x01, 0x10},
		{External2, "external2", 0x23, 0x24},
	}
	for _, tc := range tests {
		i, f, err := tc.ch.registers()
		if err != nil {
			t.Fatal(err)
		}
		if i != tc.regInt || f != tc.regFr {
			t.Errorf("%s registers = 0x%02x/0x%02x, want 0x%02x/0x%02x", tc.ch, int(i), int(f), int(tc.regInt), int(tc.regFr))
		}
		if s := tc.ch.String(); s != tc.name {
			t.Errorf("Channel(%d).String() = %q, want %q", int(tc.ch), s, tc.name)
		}
	}
	if _, _, err := Channel(3).registers(); err == nil {
		t.Error("Channel(3).registers() succeeded")
	}
}
