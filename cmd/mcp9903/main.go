// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// mcp9903 reads the temperatures and registers of MCP9903 remote diode
// sensors, either on a host I²C bus or on the I²C master of a command module
// MCU attached over a serial console.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/GermanBionicSystems/mcp9903/mcp9903"
	"github.com/GermanBionicSystems/mcp9903/mcui2c"
	"github.com/GermanBionicSystems/mcp9903/thermbar"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// device is a configured sensor.
type device struct {
	cfg DeviceConfig
	dev *mcp9903.Dev
}

// reading is the result of one channel read.
type reading struct {
	Device  string
	Channel mcp9903.Channel
	Celsius float64
	Err     error
}

func openBus(cfg *Config) (i2c.BusCloser, error) {
	if cfg.MCU.Device != "" {
		return mcui2c.Open(cfg.MCU.Device, cfg.MCU.Baud, cfg.MCU.Port)
	}
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	return i2creg.Open(cfg.Bus)
}

func newDevice(b i2c.Bus, dc DeviceConfig, logger *slog.Logger) (*mcp9903.Dev, error) {
	opts := &mcp9903.Opts{Name: dc.Name, Verbosity: dc.verbosity, Logger: logger, Channel: dc.channels[0]}
	// The MCU console reports the number of bytes it read, keep that visible
	// to the driver.
	if mb, ok := b.(*mcui2c.Bus); ok {
		return mcp9903.New(mb.Dev(dc.Addr), opts)
	}
	return mcp9903.NewI2C(b, dc.Addr, opts)
}

// logLevel enables the transaction traces when a device asks for them.
func logLevel(cfg *Config) slog.Level {
	for _, d := range cfg.Devices {
		if d.verbosity >= mcp9903.VerbosityDetailed {
			return slog.LevelDebug
		}
	}
	return slog.LevelInfo
}

func parseRegister(s string) (mcp9903.Register, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid register %q", s)
	}
	return mcp9903.Register(v), nil
}

// parseAssign parses REG=VALUE.
func parseAssign(s string) (mcp9903.Register, int, error) {
	k, v, ok := strings.Cut(s, "=")
	if !ok {
		return 0, 0, fmt.Errorf("invalid register write %q, want REG=VALUE", s)
	}
	r, err := parseRegister(k)
	if err != nil {
		return 0, 0, err
	}
	value, err := strconv.ParseInt(strings.TrimSpace(v), 0, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid value %q", v)
	}
	return r, int(value), nil
}

func readAll(devs []device) []reading {
	var out []reading
	for _, d := range devs {
		for _, ch := range d.cfg.channels {
			c, err := d.dev.ReadTemperature(ch)
			out = append(out, reading{Device: d.cfg.Name, Channel: ch, Celsius: c, Err: err})
		}
	}
	return out
}

func printReadings(rs []reading, bar *thermbar.Dev) error {
	for _, r := range rs {
		label := r.Device + "/" + r.Channel.String()
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", label, r.Err)
			continue
		}
		if bar != nil {
			t := physic.ZeroCelsius + physic.Temperature(r.Celsius*float64(physic.Celsius))
			if err := bar.Show(label, t); err != nil {
				return err
			}
			continue
		}
		fmt.Printf("%-24s %8.3f°C\n", label, r.Celsius)
	}
	return nil
}

func mainImpl() error {
	configPath := flag.String("config", "", "YAML configuration file")
	busName := flag.String("bus", "", "I²C bus to use")
	addr := flag.Uint("addr", uint(mcp9903.DefaultAddress), "I²C address of the sensor")
	name := flag.String("name", "", "device name used in the output")
	mcu := flag.String("mcu", "", "serial device of the MCU console; use the MCU I²C master instead of a host bus")
	baud := flag.Int("baud", mcui2c.DefaultBaud, "baud rate of the MCU console")
	port := flag.Uint("port", 0, "I²C master port of the MCU")
	verbosity := flag.String("v", "", "diagnostics: none, info or detailed")
	readReg := flag.String("read", "", "read register REG and exit")
	writeReg := flag.String("write", "", "write REG=VALUE and exit")
	bar := flag.Bool("bar", false, "draw thermometer bars")
	pngPath := flag.String("png", "", "render the last readings to a PNG file")
	interval := flag.Duration("interval", 0, "time between reading rounds")
	count := flag.Int("n", 1, "number of reading rounds, 0 runs until interrupted")
	flag.Parse()
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}

	cfg := defaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = loadConfig(*configPath); err != nil {
			return err
		}
	}
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["bus"] {
		cfg.Bus = *busName
	}
	if set["mcu"] {
		cfg.MCU.Device = *mcu
	}
	if set["baud"] || cfg.MCU.Baud == 0 {
		cfg.MCU.Baud = *baud
	}
	if set["port"] {
		if *port > 0xff {
			return fmt.Errorf("invalid MCU port %d", *port)
		}
		cfg.MCU.Port = uint8(*port)
	}
	if set["addr"] || set["name"] {
		if *addr > 0x7f {
			return fmt.Errorf("invalid address 0x%x", *addr)
		}
		cfg.Devices = []DeviceConfig{{Name: *name, Addr: uint16(*addr)}}
	}
	if set["bar"] {
		cfg.Output.Bar = *bar
	}
	if set["png"] {
		cfg.Output.PNG = *pngPath
	}
	if set["interval"] {
		cfg.Output.Interval = *interval
	}
	if set["n"] {
		cfg.Output.Count = *count
	}
	if err := cfg.validate(); err != nil {
		return err
	}
	if set["v"] {
		for i := range cfg.Devices {
			if err := cfg.Devices[i].verbosity.UnmarshalText([]byte(*verbosity)); err != nil {
				return err
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(cfg)}))
	b, err := openBus(cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	devs := make([]device, 0, len(cfg.Devices))
	for _, dc := range cfg.Devices {
		d, err := newDevice(b, dc, logger)
		if err != nil {
			return err
		}
		devs = append(devs, device{cfg: dc, dev: d})
	}

	if *readReg != "" {
		r, err := parseRegister(*readReg)
		if err != nil {
			return err
		}
		for _, d := range devs {
			v, err := d.dev.ReadRegister(r)
			if err != nil {
				return err
			}
			fmt.Printf("%s: 0x%02x (%s) = 0x%02x\n", d.cfg.Name, int(r), r, v)
		}
		return nil
	}
	if *writeReg != "" {
		r, v, err := parseAssign(*writeReg)
		if err != nil {
			return err
		}
		for _, d := range devs {
			if err := d.dev.WriteRegister(r, v); err != nil {
				return err
			}
		}
		return nil
	}

	for _, d := range devs {
		id, err := d.dev.ReadID()
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s\n", d.dev, id)
	}

	var tb *thermbar.Dev
	if cfg.Output.Bar {
		if tb, err = thermbar.New(nil); err != nil {
			return err
		}
		defer tb.Halt()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	var last []reading
	for round := 0; cfg.Output.Count == 0 || round < cfg.Output.Count; round++ {
		if round != 0 {
			select {
			case <-ctx.Done():
				return finish(cfg, last)
			case <-time.After(cfg.Output.Interval):
			}
		}
		last = readAll(devs)
		if err := printReadings(last, tb); err != nil {
			return err
		}
	}
	return finish(cfg, last)
}

func finish(cfg *Config, last []reading) error {
	if cfg.Output.PNG == "" {
		return nil
	}
	return renderPanel(cfg.Output.PNG, last)
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "mcp9903: %s.\n", err)
		os.Exit(1)
	}
}
