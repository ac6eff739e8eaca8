// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp9903

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAddress matches any *InvalidAddressError.
	ErrInvalidAddress = errors.New("mcp9903: invalid register address")
	// ErrBus matches any *BusError.
	ErrBus = errors.New("mcp9903: bus error")
	// ErrShortRead matches any *ShortReadError.
	ErrShortRead = errors.New("mcp9903: short read")
)

// InvalidAddressError is returned for register addresses outside 0x00..0xff.
// The transport is not touched.
type InvalidAddressError struct {
	Reg Register
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("mcp9903: register address %d out of valid range %d..%d", int(e.Reg), int(regMin), int(regMax))
}

func (e *InvalidAddressError) Is(target error) bool {
	return target == ErrInvalidAddress
}

// BusError is returned when the transport reports a failure.
type BusError struct {
	Reg Register
	// Code is the transport status if the transport error exposes one through
	// a StatusCode() int method, -1 otherwise.
	Code int
	Err  error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("mcp9903: %s (0x%02x): bus error code %d: %v", e.Reg, int(e.Reg), e.Code, e.Err)
}

func (e *BusError) Unwrap() error {
	return e.Err
}

func (e *BusError) Is(target error) bool {
	return target == ErrBus
}

// ShortReadError is returned when the transport answers a register read with
// the wrong number of bytes.
type ShortReadError struct {
	Reg  Register
	Want int
	Got  int
}

func (e *ShortReadError) Error() string {
	return fmt.Sprintf("mcp9903: %s (0x%02x): incorrect amount of data received: got %d bytes, want %d", e.Reg, int(e.Reg), e.Got, e.Want)
}

func (e *ShortReadError) Is(target error) bool {
	return target == ErrShortRead
}

type statusCoder interface {
	StatusCode() int
}

func newBusError(r Register, err error) *BusError {
	code := -1
	var sc statusCoder
	if errors.As(err, &sc) {
		code = sc.StatusCode()
	}
	return &BusError{Reg: r, Code: code, Err: err}
}
