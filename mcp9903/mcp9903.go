// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp9903

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// DefaultAddress is the SMBus address of the MCP9903.
const DefaultAddress uint16 = 0x4c

// Verbosity controls the diagnostic output of a Dev.
type Verbosity int32

const (
	// VerbosityNone logs nothing.
	VerbosityNone Verbosity = iota
	// VerbosityInfo logs failed register transactions.
	VerbosityInfo
	// VerbosityDetailed also traces every register transaction at
	// slog.LevelDebug.
	VerbosityDetailed
)

func (v Verbosity) String() string {
	switch v {
	case VerbosityNone:
		return "none"
	case VerbosityInfo:
		return "info"
	case VerbosityDetailed:
		return "detailed"
	}
	return fmt.Sprintf("Verbosity(%d)", int32(v))
}

// MarshalText implements encoding.TextMarshaler.
func (v Verbosity) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It accepts the names
// returned by String and the numeric levels 0, 1 and 2.
func (v *Verbosity) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "none", "0", "":
		*v = VerbosityNone
	case "info", "1":
		*v = VerbosityInfo
	case "detailed", "2":
		*v = VerbosityDetailed
	default:
		return fmt.Errorf("mcp9903: unknown verbosity %q", string(b))
	}
	return nil
}

// Opts holds the configuration of a Dev.
type Opts struct {
	// Name identifies the device in diagnostics, e.g. its reference designator.
	Name string
	// Verbosity of the diagnostic output. It can be changed later with
	// SetVerbosity.
	Verbosity Verbosity
	// Logger receives the diagnostics. slog.Default() if nil. Transaction
	// traces are logged at slog.LevelDebug, the handler must enable it.
	Logger *slog.Logger
	// Channel is the temperature channel reported by Sense.
	Channel Channel
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{Name: "MCP9903", Channel: Internal}

// ID holds the identification registers of the device.
type ID struct {
	ProductID      byte
	ManufacturerID byte
	Revision       byte
}

func (id ID) String() string {
	return fmt.Sprintf("product 0x%02x, manufacturer 0x%02x, revision 0x%02x", id.ProductID, id.ManufacturerID, id.Revision)
}

// Dev is a handle to an MCP9903.
//
// Register operations are not serialized. A Dev shared between goroutines
// needs external locking, otherwise the address and data phases of different
// reads may interleave on the bus. Sense and SenseContinuous lock against
// each other.
type Dev struct {
	t         Transport
	name      string
	log       *slog.Logger
	channel   Channel
	verbosity atomic.Int32

	mu       sync.Mutex
	shutdown chan struct{}
}

// New returns a Dev that talks to the sensor through t. If opts is nil,
// DefaultOpts is used.
func New(t Transport, opts *Opts) (*Dev, error) {
	if t == nil {
		return nil, errors.New("mcp9903: nil transport")
	}
	if opts == nil {
		o := DefaultOpts
		opts = &o
	}
	if _, _, err := opts.Channel.registers(); err != nil {
		return nil, err
	}
	d := &Dev{t: t, name: opts.Name, log: opts.Logger, channel: opts.Channel}
	if d.log == nil {
		d.log = slog.Default()
	}
	d.verbosity.Store(int32(opts.Verbosity))
	return d, nil
}

// NewI2C returns a Dev for the sensor at addr on the I²C bus b.
func NewI2C(b i2c.Bus, addr uint16, opts *Opts) (*Dev, error) {
	return New(&connTransport{c: &i2c.Dev{Bus: b, Addr: addr}}, opts)
}

// SetVerbosity changes the diagnostic verbosity.
func (d *Dev) SetVerbosity(v Verbosity) {
	d.verbosity.Store(int32(v))
}

// Verbosity returns the current diagnostic verbosity.
func (d *Dev) Verbosity() Verbosity {
	return Verbosity(d.verbosity.Load())
}

// ReadTemperature reads the temperature of channel ch in degrees Celsius.
//
// Both the integer and fractional register are always read. The returned
// value is decoded from whatever was read, including the 0xff placeholders
// of failed reads, so it is only meaningful when the error is nil. The error
// joins the errors of both reads.
func (d *Dev) ReadTemperature(ch Channel) (float64, error) {
	regInt, regFrac, err := ch.registers()
	if err != nil {
		return 0, err
	}
	hi, errInt := d.ReadRegister(regInt)
	lo, errFrac := d.ReadRegister(regFrac)
	return Decode(hi, lo), errors.Join(errInt, errFrac)
}

// ReadTempInternal reads the internal diode temperature.
func (d *Dev) ReadTempInternal() (float64, error) {
	return d.ReadTemperature(Internal)
}

// ReadTempExternal1 reads the external diode 1 temperature.
func (d *Dev) ReadTempExternal1() (float64, error) {
	return d.ReadTemperature(External1)
}

// ReadTempExternal2 reads the external diode 2 temperature.
func (d *Dev) ReadTempExternal2() (float64, error) {
	return d.ReadTemperature(External2)
}

// ReadStatus reads the status register.
func (d *Dev) ReadStatus() (byte, error) {
	return d.ReadRegister(RegStatus)
}

// ReadConfig0 reads configuration register 0.
func (d *Dev) ReadConfig0() (byte, error) {
	return d.ReadRegister(RegConfig0)
}

// ReadConfig1 reads configuration register 1.
func (d *Dev) ReadConfig1() (byte, error) {
	return d.ReadRegister(RegConfig1)
}

// ReadConvRate0 reads temperature conversion rate register 0.
func (d *Dev) ReadConvRate0() (byte, error) {
	return d.ReadRegister(RegConvRate0)
}

// ReadConvRate1 reads temperature conversion rate register 1.
func (d *Dev) ReadConvRate1() (byte, error) {
	return d.ReadRegister(RegConvRate1)
}

// ReadProductID reads the product ID register.
func (d *Dev) ReadProductID() (byte, error) {
	return d.ReadRegister(RegProductID)
}

// ReadManufacturerID reads the manufacturer ID register.
func (d *Dev) ReadManufacturerID() (byte, error) {
	return d.ReadRegister(RegManufacturerID)
}

// ReadRevision reads the revision register.
func (d *Dev) ReadRevision() (byte, error) {
	return d.ReadRegister(RegRevision)
}

// ReadID reads the product ID, manufacturer ID and revision registers. All
// three are read even if one fails.
func (d *Dev) ReadID() (ID, error) {
	var id ID
	var errP, errM, errR error
	id.ProductID, errP = d.ReadProductID()
	id.ManufacturerID, errM = d.ReadManufacturerID()
	id.Revision, errR = d.ReadRevision()
	return id, errors.Join(errP, errM, errR)
}

// WriteConfig0 writes configuration register 0.
func (d *Dev) WriteConfig0(value int) error {
	return d.WriteRegister(RegConfig0, value)
}

// WriteConfig1 writes configuration register 1.
func (d *Dev) WriteConfig1(value int) error {
	return d.WriteRegister(RegConfig1, value)
}

// WriteConvRate0 writes temperature conversion rate register 0.
func (d *Dev) WriteConvRate0(value int) error {
	return d.WriteRegister(RegConvRate0, value)
}

// WriteConvRate1 writes temperature conversion rate register 1.
func (d *Dev) WriteConvRate1(value int) error {
	return d.WriteRegister(RegConvRate1, value)
}

// Sense reads the temperature of the channel selected in Opts and writes it
// to env. Implements physic.SenseEnv.
func (d *Dev) Sense(env *physic.Env) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, err := d.ReadTemperature(d.channel)
	if err == nil {
		env.Temperature = celsius(t)
	}
	return err
}

// SenseContinuous reads the temperature every interval and writes it to the
// returned channel. Failed readings are skipped. Call Halt to stop.
// Implements physic.SenseEnv.
func (d *Dev) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	const channelSize = 16
	if interval < 125*time.Millisecond {
		return nil, errors.New("mcp9903: invalid duration, minimum 125ms")
	}
	d.mu.Lock()
	if d.shutdown != nil {
		d.mu.Unlock()
		return nil, errors.New("mcp9903: continuous sensing already running")
	}
	shutdown := make(chan struct{})
	d.shutdown = shutdown
	d.mu.Unlock()

	ch := make(chan physic.Env, channelSize)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		defer close(ch)
		for {
			select {
			case <-shutdown:
				return
			case <-ticker.C:
				e := physic.Env{}
				if err := d.Sense(&e); err == nil && len(ch) < channelSize {
					ch <- e
				}
			}
		}
	}()
	return ch, nil
}

// Precision returns the 0.125°C resolution of the device.
func (d *Dev) Precision(env *physic.Env) {
	env.Temperature = _DEGREES_RESOLUTION
	env.Pressure = 0
	env.Humidity = 0
}

// Halt stops a running SenseContinuous. Implements conn.Resource.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.shutdown != nil {
		close(d.shutdown)
		d.shutdown = nil
	}
	return nil
}

func (d *Dev) String() string {
	if s, ok := d.t.(fmt.Stringer); ok {
		return fmt.Sprintf("mcp9903{%s}: %s", d.name, s.String())
	}
	return fmt.Sprintf("mcp9903{%s}", d.name)
}

func (d *Dev) logDetail(msg string, r Register, attrs ...slog.Attr) {
	if d.Verbosity() < VerbosityDetailed {
		return
	}
	attrs = append([]slog.Attr{
		slog.String("device", d.name),
		slog.String("register", r.String()),
		slog.String("address", hex8(byte(r))),
	}, attrs...)
	d.log.LogAttrs(context.Background(), slog.LevelDebug, msg, attrs...)
}

func (d *Dev) logFailure(op string, r Register, err error) {
	if d.Verbosity() < VerbosityInfo {
		return
	}
	d.log.LogAttrs(context.Background(), slog.LevelError, op+" failed",
		slog.String("device", d.name),
		slog.String("register", r.String()),
		slog.Int("address", int(r)),
		slog.Any("error", err),
	)
}

func hex8(b byte) string {
	return fmt.Sprintf("0x%02x", b)
}

var _ conn.Resource = &Dev{}
var _ physic.SenseEnv = &Dev{}
