// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp9903

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func TestValidateAddress(t *testing.T) {
	for _, r := range []Register{0x00, 0x01, 0x7f, 0xfe, 0xff} {
		if err := ValidateAddress(r); err != nil {
			t.Errorf("ValidateAddress(0x%x) = %v, want nil", int(r), err)
		}
	}
	for _, r := range []Register{-1, -0x100, 0x100, 0x1ff, 0x10000} {
		err := ValidateAddress(r)
		if !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("ValidateAddress(%d) = %v, want ErrInvalidAddress", int(r), err)
		}
		var ia *InvalidAddressError
		if !errors.As(err, &ia) || ia.Reg != r {
			t.Errorf("ValidateAddress(%d) = %#v, want *InvalidAddressError{Reg: %d}", int(r), err, int(r))
		}
	}
}

func TestRegisterString(t *testing.T) {
	want := map[Register]string{
		0x00: "integer value of the internal diode temperature",
		0x29: "fractional portion of the internal diode temperature",
		0x01: "integer value of the external diode 1 temperature",
		0x10: "fractional portion of the external diode 1 temperature",
		0x23: "integer value of the external diode 2 temperature",
		0x24: "fractional portion of the external diode 2 temperature",
		0x02: "status register",
		0x03: "configuration register 0",
		0x09: "configuration register 1",
		0x04: "temperature conversion rate register 0",
		0x0a: "temperature conversion rate register 1",
		0xfd: "product ID",
		0xfe: "manufacturer ID",
		0xff: "revision register",
	}
	got := map[Register]string{}
	for r := Register(0); r <= 0xff; r++ {
		s := r.String()
		if s == "" {
			t.Fatalf("Register(0x%02x).String() is empty", int(r))
		}
		if s != "other/unknown" {
			got[r] = s
		}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("named registers (-want +got):\n%s", diff)
	}
	if s := Register(0x100).String(); s != "other/unknown" {
		t.Errorf("Register(0x100).String() = %q", s)
	}
}

func TestReadRegisterInvalidAddress(t *testing.T) {
	ft := &fakeTransport{}
	dev := newFakeDev(t, ft)
	for _, r := range []Register{-1, 0x100} {
		v, err := dev.ReadRegister(r)
		if !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("ReadRegister(%d) error = %v, want ErrInvalidAddress", int(r), err)
		}
		if v != 0xff {
			t.Errorf("ReadRegister(%d) = 0x%02x, want 0xff", int(r), v)
		}
		if err := dev.WriteRegister(r, 0x12); !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("WriteRegister(%d) error = %v, want ErrInvalidAddress", int(r), err)
		}
	}
	if ft.calls != 0 {
		t.Errorf("transport called %d times, want 0", ft.calls)
	}
}

func TestReadRegister(t *testing.T) {
	pb := &i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: DefaultAddress, W: []byte{byte(RegProductID)}, R: []byte{0x21}},
		{Addr: DefaultAddress, W: []byte{0x42}, R: []byte{0x99}},
	}}
	dev, err := NewI2C(pb, DefaultAddress, nil)
	if err != nil {
		t.Fatal(err)
	}
	v, err := dev.ReadRegister(RegProductID)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x21 {
		t.Errorf("ReadRegister(product ID) = 0x%02x, want 0x21", v)
	}
	// Undocumented addresses are still accessible.
	v, err = dev.ReadRegister(0x42)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x99 {
		t.Errorf("ReadRegister(0x42) = 0x%02x, want 0x99", v)
	}
	if err := pb.Close(); err != nil {
		t.Error(err)
	}
}

func TestReadRegisterShortRead(t *testing.T) {
	for _, reply := range [][]byte{{}, {0x19, 0x00}} {
		ft := &fakeTransport{regs: map[byte][]byte{0x00: reply}}
		dev := newFakeDev(t, ft)
		v, err := dev.ReadRegister(RegInternalTempInt)
		var sr *ShortReadError
		if !errors.As(err, &sr) {
			t.Fatalf("ReadRegister() error = %v, want *ShortReadError", err)
		}
		if sr.Want != 1 || sr.Got != len(reply) {
			t.Errorf("ShortReadError = %+v, want Want=1 Got=%d", sr, len(reply))
		}
		if !errors.Is(err, ErrShortRead) {
			t.Errorf("errors.Is(%v, ErrShortRead) = false", err)
		}
		if v != 0xff {
			t.Errorf("ReadRegister() = 0x%02x on short read, want 0xff", v)
		}
	}
}

func TestReadRegisterBusError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"status", statusError(4), 4},
		{"wrapped status", wrapErr(statusError(0x20)), 0x20},
		{"plain", errors.New("remote I/O error"), -1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ft := &fakeTransport{err: tc.err}
			dev := newFakeDev(t, ft)
			_, err := dev.ReadRegister(RegStatus)
			var be *BusError
			if !errors.As(err, &be) {
				t.Fatalf("ReadRegister() error = %v, want *BusError", err)
			}
			if be.Code != tc.wantCode {
				t.Errorf("BusError.Code = %d, want %d", be.Code, tc.wantCode)
			}
			if be.Reg != RegStatus {
				t.Errorf("BusError.Reg = %v, want %v", be.Reg, RegStatus)
			}
			if !errors.Is(err, ErrBus) || !errors.Is(err, tc.err) {
				t.Errorf("error %v does not match ErrBus and the transport error", err)
			}
			if err := dev.WriteRegister(RegConfig0, 0); !errors.Is(err, ErrBus) {
				t.Errorf("WriteRegister() error = %v, want ErrBus", err)
			}
		})
	}
}

func TestWriteRegisterMasksValue(t *testing.T) {
	pb := &i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: DefaultAddress, W: []byte{byte(RegConfig0), 0xff}},
		{Addr: DefaultAddress, W: []byte{byte(RegConvRate1), 0x34}},
		{Addr: DefaultAddress, W: []byte{byte(RegConfig1), 0x00}},
	}}
	dev, err := NewI2C(pb, DefaultAddress, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, w := range []struct {
		r Register
		v int
	}{
		{RegConfig0, 0x1ff},
		{RegConvRate1, 0x1234},
		{RegConfig1, -0x100},
	} {
		if err := dev.WriteRegister(w.r, w.v); err != nil {
			t.Errorf("WriteRegister(%v, 0x%x) = %v", w.r, w.v, err)
		}
	}
	if err := pb.Close(); err != nil {
		t.Error(err)
	}
}

func TestRegisterTraceNeedsDebugHandler(t *testing.T) {
	var buf bytes.Buffer
	ft := &fakeTransport{regs: map[byte][]byte{byte(RegStatus): {0x5a}}}
	dev, err := New(ft, &Opts{Verbosity: VerbosityDetailed, Logger: slog.New(slog.NewTextHandler(&buf, nil))})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := dev.ReadStatus(); err != nil {
		t.Fatal(err)
	}
	if out := buf.String(); out != "" {
		t.Errorf("info handler printed transaction traces: %q", out)
	}
}

func TestRegisterDiagnostics(t *testing.T) {
	tests := []struct {
		v    Verbosity
		fail bool
		want []string
		none bool
	}{
		{v: VerbosityNone, fail: true, none: true},
		{v: VerbosityInfo, fail: false, none: true},
		{v: VerbosityInfo, fail: true, want: []string{"read failed", "status register"}},
		{v: VerbosityDetailed, fail: false, want: []string{"level=DEBUG msg=\"reading register\"", "level=DEBUG msg=\"read register\"", "status register", "value=0x5a"}},
		{v: VerbosityDetailed, fail: true, want: []string{"level=DEBUG msg=\"reading register\"", "level=ERROR msg=\"read failed\""}},
	}
	for _, tc := range tests {
		var buf bytes.Buffer
		ft := &fakeTransport{regs: map[byte][]byte{byte(RegStatus): {0x5a}}}
		if tc.fail {
			ft.err = statusError(2)
		}
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		dev, err := New(ft, &Opts{Name: "U7", Verbosity: tc.v, Logger: logger})
		if err != nil {
			t.Fatal(err)
		}
		_, _ = dev.ReadStatus()
		out := buf.String()
		if tc.none && out != "" {
			t.Errorf("verbosity %v fail=%t: unexpected output %q", tc.v, tc.fail, out)
		}
		for _, w := range tc.want {
			if !strings.Contains(out, w) {
				t.Errorf("verbosity %v fail=%t: output %q does not contain %q", tc.v, tc.fail, out, w)
			}
		}
	}
}
