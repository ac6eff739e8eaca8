// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package mcui2c implements an I²C bus that is driven by the hardware test
// firmware of a command module MCU and reached through its UART console.
//
// The firmware accepts one command per line:
//
//	i2c PORT SLV-ADR ACC NUM|DATA...
//
// ACC is a bit field: bit 0 selects a read, bit 1 a repeated start, bit 2
// omits the stop condition and bit 3 issues a quick command. The firmware
// answers with "OK." (followed by " Data: 0x.." for reads) or with one or
// more "ERROR: ..." lines carrying the master error flags, then prints the
// command prompt again.
package mcui2c

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/tarm/serial"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

const (
	// DefaultPrompt is printed by the firmware after every reply.
	DefaultPrompt = "> "
	// DefaultBaud is the console baud rate of the firmware.
	DefaultBaud = 115200

	// The firmware parses at most 32 tokens per command line. PORT, SLV-ADR
	// and ACC take three of them, a write carries the rest.
	maxWrite = 29
	// NUM of a read is capped by the firmware receive buffer.
	maxRead = 32
	// Upper bound of a reply, guards against a stream without prompt.
	maxReply = 4096

	accRead     = 0x1
	accRepStart = 0x2
	accNoStop   = 0x4
)

var errNoData = errors.New("mcui2c: write needs at least one data byte")

// Opts holds the options of a Bus.
type Opts struct {
	// Prompt terminates every reply. DefaultPrompt if empty.
	Prompt string
	// Name is used by String.
	Name string
}

// Bus is one I²C master of the MCU. Commands are serialized, one command and
// its reply at a time.
type Bus struct {
	mu     sync.Mutex
	w      io.Writer
	r      *bufio.Reader
	c      io.Closer
	port   uint8
	prompt []byte
	name   string
}

// Open opens the MCU console on the serial device name and returns I²C
// master port of the MCU.
func Open(name string, baud int, port uint8) (*Bus, error) {
	if baud == 0 {
		baud = DefaultBaud
	}
	s, err := serial.OpenPort(&serial.Config{Name: name, Baud: baud, ReadTimeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("mcui2c: %w", err)
	}
	if err := s.Flush(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("mcui2c: %w", err)
	}
	b := New(s, port, &Opts{Name: name})
	b.c = s
	if err := b.sync(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return b, nil
}

// New returns a Bus talking to the MCU console over rw. If rw is an
// io.Closer, Close closes it.
func New(rw io.ReadWriter, port uint8, opts *Opts) *Bus {
	if opts == nil {
		opts = &Opts{}
	}
	prompt := opts.Prompt
	if prompt == "" {
		prompt = DefaultPrompt
	}
	b := &Bus{w: rw, r: bufio.NewReader(rw), port: port, prompt: []byte(prompt), name: opts.Name}
	if c, ok := rw.(io.Closer); ok {
		b.c = c
	}
	return b
}

// sync sends an empty line and waits for the prompt, dropping any banner or
// partial output that preceded it.
func (b *Bus) sync() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := io.WriteString(b.w, "\r"); err != nil {
		return fmt.Errorf("mcui2c: %w", err)
	}
	_, err := b.readReply()
	return err
}

// Write writes w to the device at addr, terminated with a stop condition.
func (b *Bus) Write(addr uint16, w []byte) error {
	if err := checkTx(addr, w, 0); err != nil {
		return err
	}
	if len(w) == 0 {
		return errNoData
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := b.command(addr, 0, w)
	return err
}

// WriteRead writes w to the device at addr without a stop condition, then
// reads n bytes with a repeated start. If w is empty only the read is done.
//
// The returned slice holds the bytes the firmware reported, which may be
// fewer or more than n.
func (b *Bus) WriteRead(addr uint16, w []byte, n int) ([]byte, error) {
	if err := checkTx(addr, w, n); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errors.New("mcui2c: read of 0 bytes")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	acc := byte(accRead)
	if len(w) != 0 {
		if _, err := b.command(addr, accNoStop, w); err != nil {
			return nil, err
		}
		acc |= accRepStart
	}
	return b.command(addr, acc, []byte{byte(n)})
}

// Tx implements i2c.Bus.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	if len(r) == 0 {
		return b.Write(addr, w)
	}
	data, err := b.WriteRead(addr, w, len(r))
	if err != nil {
		return err
	}
	if len(data) != len(r) {
		return fmt.Errorf("mcui2c: read %d bytes from 0x%02x, want %d", len(data), addr, len(r))
	}
	copy(r, data)
	return nil
}

// SetSpeed implements i2c.Bus. The bus clock is fixed by the firmware.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	return errors.New("mcui2c: bus speed is set by the MCU firmware")
}

// Dev returns the device at addr on this bus.
func (b *Bus) Dev(addr uint16) *Dev {
	return &Dev{b: b, Addr: addr}
}

func (b *Bus) String() string {
	if b.name == "" {
		return fmt.Sprintf("mcui2c(%d)", b.port)
	}
	return fmt.Sprintf("mcui2c(%s:%d)", b.name, b.port)
}

// Close closes the underlying serial line, if any.
func (b *Bus) Close() error {
	if b.c == nil {
		return nil
	}
	return b.c.Close()
}

// command sends one i2c command and parses its reply. b.mu must be held.
func (b *Bus) command(addr uint16, acc byte, args []byte) ([]byte, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "i2c %d 0x%02x 0x%x", b.port, addr, acc)
	for _, a := range args {
		fmt.Fprintf(&sb, " 0x%02x", a)
	}
	sb.WriteString("\r")
	if _, err := io.WriteString(b.w, sb.String()); err != nil {
		return nil, fmt.Errorf("mcui2c: %w", err)
	}
	reply, err := b.readReply()
	if err != nil {
		return nil, err
	}
	return parseReply(reply)
}

// readReply reads up to and excluding the next prompt.
func (b *Bus) readReply() (string, error) {
	var buf []byte
	for {
		c, err := b.r.ReadByte()
		if err != nil {
			return "", fmt.Errorf("mcui2c: reading reply: %w", err)
		}
		buf = append(buf, c)
		if bytes.HasSuffix(buf, b.prompt) {
			return string(buf[:len(buf)-len(b.prompt)]), nil
		}
		if len(buf) > maxReply {
			return "", fmt.Errorf("mcui2c: no prompt after %d bytes", len(buf))
		}
	}
}

func checkTx(addr uint16, w []byte, n int) error {
	if addr > 0x7f {
		return fmt.Errorf("mcui2c: invalid 7 bit address 0x%x", addr)
	}
	if len(w) > maxWrite {
		return fmt.Errorf("mcui2c: write of %d bytes exceeds %d bytes", len(w), maxWrite)
	}
	if n > maxRead {
		return fmt.Errorf("mcui2c: read of %d bytes exceeds %d bytes", n, maxRead)
	}
	if n < 0 {
		return fmt.Errorf("mcui2c: invalid read length %d", n)
	}
	return nil
}

// Dev is a device on a Bus. It satisfies the transport interface of the
// device drivers in this module.
type Dev struct {
	b    *Bus
	Addr uint16
}

func (d *Dev) Write(w []byte) error {
	return d.b.Write(d.Addr, w)
}

func (d *Dev) WriteRead(w []byte, n int) ([]byte, error) {
	return d.b.WriteRead(d.Addr, w, n)
}

func (d *Dev) String() string {
	return fmt.Sprintf("%s(0x%02x)", d.b, d.Addr)
}

var _ i2c.BusCloser = &Bus{}
