// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"image"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	panelWidth = 480
	rowHeight  = 40
	padding    = 8.0
	// Temperature of a full bar.
	panelMaxCelsius = 100.0
)

// drawPanel renders one row per reading: label, a bar and the value.
func drawPanel(rs []reading, at time.Time) (image.Image, error) {
	h := rowHeight * (len(rs) + 1)
	dc := gg.NewContext(panelWidth, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	font, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(truetype.NewFace(font, &truetype.Options{Size: 16}))

	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored("MCP9903 "+at.Format(time.DateTime), padding, rowHeight/2, 0, 0.5)

	barX := float64(panelWidth) * 0.45
	barW := float64(panelWidth) * 0.30
	for i, r := range rs {
		y := float64(rowHeight*(i+1)) + rowHeight/2
		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(r.Device+"/"+r.Channel.String(), padding, y, 0, 0.5)
		if r.Err != nil {
			dc.SetRGB(0.8, 0, 0)
			dc.DrawStringAnchored("read error", barX, y, 0, 0.5)
			continue
		}
		dc.DrawRoundedRectangle(barX, y-8, barW, 16, 4)
		dc.Stroke()
		f := r.Celsius / panelMaxCelsius
		if f > 1 {
			f = 1
		}
		if f > 0 {
			dc.SetRGB(f, 0.2, 1-f)
			dc.DrawRoundedRectangle(barX, y-8, barW*f, 16, 4)
			dc.Fill()
		}
		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(fmt.Sprintf("%.3f °C", r.Celsius), panelWidth-padding, y, 1, 0.5)
	}
	return dc.Image(), nil
}

// renderPanel writes the panel of rs to a PNG file at path.
func renderPanel(path string, rs []reading) error {
	img, err := drawPanel(rs, time.Now())
	if err != nil {
		return err
	}
	return gg.SavePNG(path, img)
}
