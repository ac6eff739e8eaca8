// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp9903

import "log/slog"

// Register is a register address of the MCP9903.
//
// Values outside 0x00..0xff are representable and rejected by
// ValidateAddress.
type Register int

const (
	RegInternalTempInt   Register = 0x00
	RegExternal1TempInt  Register = 0x01
	RegStatus            Register = 0x02
	RegConfig0           Register = 0x03
	RegConvRate0         Register = 0x04
	RegConfig1           Register = 0x09
	RegConvRate1         Register = 0x0a
	RegExternal1TempFrac Register = 0x10
	RegExternal2TempInt  Register = 0x23
	RegExternal2TempFrac Register = 0x24
	RegInternalTempFrac  Register = 0x29
	RegProductID         Register = 0xfd
	RegManufacturerID    Register = 0xfe
	RegRevision          Register = 0xff

	// Valid register address range.
	regMin Register = 0x00
	regMax Register = 0xff

	// Value returned alongside an error by ReadRegister.
	readErrorValue byte = 0xff
)

var registerNames = map[Register]string{
	RegInternalTempInt:   "integer value of the internal diode temperature",
	RegInternalTempFrac:  "fractional portion of the internal diode temperature",
	RegExternal1TempInt:  "integer value of the external diode 1 temperature",
	RegExternal1TempFrac: "fractional portion of the external diode 1 temperature",
	RegExternal2TempInt:  "integer value of the external diode 2 temperature",
	RegExternal2TempFrac: "fractional portion of the external diode 2 temperature",
	RegStatus:            "status register",
	RegConfig0:           "configuration register 0",
	RegConfig1:           "configuration register 1",
	RegConvRate0:         "temperature conversion rate register 0",
	RegConvRate1:         "temperature conversion rate register 1",
	RegProductID:         "product ID",
	RegManufacturerID:    "manufacturer ID",
	RegRevision:          "revision register",
}

// String returns the datasheet description of the register, or
// "other/unknown" for addresses without a documented meaning.
func (r Register) String() string {
	if s, ok := registerNames[r]; ok {
		return s
	}
	return "other/unknown"
}

// ValidateAddress returns an *InvalidAddressError if r is outside the 8 bit
// register address space.
func ValidateAddress(r Register) error {
	if r < regMin || r > regMax {
		return &InvalidAddressError{Reg: r}
	}
	return nil
}

// ReadRegister reads one register.
//
// The register address is written and a single byte is read back with a
// repeated start. On failure the returned value is 0xff and the error is one
// of *InvalidAddressError, *BusError or *ShortReadError.
func (d *Dev) ReadRegister(r Register) (byte, error) {
	if err := ValidateAddress(r); err != nil {
		d.logFailure("read", r, err)
		return readErrorValue, err
	}
	d.logDetail("reading register", r)
	data, err := d.t.WriteRead([]byte{byte(r)}, 1)
	if err != nil {
		err = newBusError(r, err)
		d.logFailure("read", r, err)
		return readErrorValue, err
	}
	if len(data) != 1 {
		err = &ShortReadError{Reg: r, Want: 1, Got: len(data)}
		d.logFailure("read", r, err)
		return readErrorValue, err
	}
	v := data[0]
	d.logDetail("read register", r, slog.String("value", hex8(v)))
	return v, nil
}

// WriteRegister writes value to a register. Only the low 8 bits of value are
// transmitted.
func (d *Dev) WriteRegister(r Register, value int) error {
	if err := ValidateAddress(r); err != nil {
		d.logFailure("write", r, err)
		return err
	}
	v := byte(value & 0xff)
	d.logDetail("writing register", r, slog.String("value", hex8(v)))
	if err := d.t.Write([]byte{byte(r), v}); err != nil {
		err = newBusError(r, err)
		d.logFailure("write", r, err)
		return err
	}
	return nil
}
