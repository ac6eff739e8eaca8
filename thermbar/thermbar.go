// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package thermbar draws temperature readings as horizontal thermometer bars
// on a terminal using ANSI 256 colour codes.
//
// Useful on the bench when a sensor is attached to a laptop over a console
// cable and there is no display.
package thermbar

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
)

// Opts represents the options available for the bars.
type Opts struct {
	// Width is the number of cells of a full bar. Defaults to 40.
	Width int
	// Min and Max are the temperatures of an empty and a full bar. Default to
	// 0°C and 100°C.
	Min, Max physic.Temperature
	Palette  *ansi256.Palette
	// W receives the output. Defaults to a colour capable stdout.
	W io.Writer

	_ struct{}
}

// Dev renders thermometer bars.
type Dev struct {
	w        io.Writer
	width    int
	min, max physic.Temperature
	palette  ansi256.Palette

	buf bytes.Buffer
}

var (
	cold  = color.NRGBA{0x00, 0x40, 0xff, 0xff}
	hot   = color.NRGBA{0xff, 0x20, 0x00, 0xff}
	empty = color.NRGBA{0x20, 0x20, 0x20, 0xff}
)

// New returns a Dev writing to opts.W.
func New(opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{}
	}
	d := &Dev{w: opts.W, width: opts.Width, min: opts.Min, max: opts.Max}
	if d.w == nil {
		d.w = colorable.NewColorableStdout()
	}
	if d.width == 0 {
		d.width = 40
	}
	if d.min == 0 && d.max == 0 {
		d.min = physic.ZeroCelsius
		d.max = physic.ZeroCelsius + 100*physic.Kelvin
	}
	if d.width < 0 || d.min >= d.max {
		return nil, errors.New("thermbar: invalid width or temperature range")
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	d.palette = *p
	return d, nil
}

func (d *Dev) String() string {
	return "ThermBar"
}

// Halt implements conn.Resource.
//
// It resets the terminal colours.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\033[0m"))
	return err
}

// Show writes one line with label, the bar for t and the value of t in
// degrees Celsius.
func (d *Dev) Show(label string, t physic.Temperature) error {
	// Reuse one buffer to keep the allocations per line low.
	d.buf.Reset()
	_, _ = d.buf.WriteString("\033[0m")
	_, _ = fmt.Fprintf(&d.buf, "%-12s ", label)
	n := d.fill(t)
	for i := 0; i < d.width; i++ {
		c := empty
		if i < n {
			c = gradient(float64(i) / float64(d.width))
		}
		_, _ = io.WriteString(&d.buf, d.palette.Block(c))
	}
	_, _ = fmt.Fprintf(&d.buf, "\033[0m %8.3f°C\n", t.Celsius())
	_, err := d.buf.WriteTo(d.w)
	return err
}

// fill returns the number of cells lit for t, clamped to the bar.
func (d *Dev) fill(t physic.Temperature) int {
	if t <= d.min {
		return 0
	}
	if t >= d.max {
		return d.width
	}
	return int(int64(t-d.min) * int64(d.width) / int64(d.max-d.min))
}

// gradient blends from cold at 0 to hot at 1.
func gradient(f float64) color.NRGBA {
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a) + (float64(b)-float64(a))*f)
	}
	return color.NRGBA{mix(cold.R, hot.R), mix(cold.G, hot.G), mix(cold.B, hot.B), 0xff}
}

var _ conn.Resource = &Dev{}
var _ fmt.Stringer = &Dev{}
