// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcui2c

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Master error flags reported by the firmware.
const (
	FlagUnknown uint32 = 0x01
	FlagTimeout uint32 = 0x02
	FlagNACK    uint32 = 0x10
	FlagArbLost uint32 = 0x80
)

var flagNames = []struct {
	flag uint32
	name string
}{
	{FlagTimeout, "timeout"},
	{FlagNACK, "NACK received"},
	{FlagArbLost, "arbitration lost"},
	{FlagUnknown, "unknown error"},
}

var errorFlags = regexp.MustCompile(`master (\d+): (0x[0-9a-fA-F]+)`)

// StatusError is returned when the I²C master reports error flags.
type StatusError struct {
	Port  uint8
	Flags uint32
}

func (e *StatusError) Error() string {
	var names []string
	for _, f := range flagNames {
		if e.Flags&f.flag != 0 {
			names = append(names, f.name)
		}
	}
	if len(names) == 0 {
		return fmt.Sprintf("mcui2c: master %d error flags 0x%08x", e.Port, e.Flags)
	}
	return fmt.Sprintf("mcui2c: master %d error flags 0x%08x: %s", e.Port, e.Flags, strings.Join(names, ", "))
}

// StatusCode returns the error flags as the bus status.
func (e *StatusError) StatusCode() int {
	return int(e.Flags)
}

// CommandError is an error message from the firmware that carries no master
// error flags, e.g. a rejected port number.
type CommandError struct {
	Msg string
}

func (e *CommandError) Error() string {
	return "mcui2c: " + e.Msg
}

// parseReply extracts the data bytes of an OK reply, or the error of an ERROR
// reply. Lines before the first OK/ERROR line, such as the echoed command,
// are ignored.
func parseReply(reply string) ([]byte, error) {
	lines := strings.FieldsFunc(reply, func(r rune) bool { return r == '\r' || r == '\n' })
	for i, line := range lines {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "OK"):
			return parseData(line)
		case strings.HasPrefix(line, "ERROR"):
			if m := errorFlags.FindStringSubmatch(line); m != nil {
				port, err := strconv.ParseUint(m[1], 10, 8)
				if err != nil {
					return nil, fmt.Errorf("mcui2c: bad port in %q", line)
				}
				flags, err := strconv.ParseUint(m[2], 0, 32)
				if err != nil {
					return nil, fmt.Errorf("mcui2c: bad error flags in %q", line)
				}
				return nil, &StatusError{Port: uint8(port), Flags: uint32(flags)}
			}
			msgs := make([]string, 0, len(lines)-i)
			for _, l := range lines[i:] {
				msgs = append(msgs, strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(l), "ERROR:")))
			}
			return nil, &CommandError{Msg: strings.Join(msgs, "; ")}
		}
	}
	return nil, fmt.Errorf("mcui2c: unexpected reply %q", reply)
}

func parseData(line string) ([]byte, error) {
	i := strings.Index(line, "Data:")
	if i < 0 {
		return nil, nil
	}
	fields := strings.Fields(line[i+len("Data:"):])
	data := make([]byte, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseUint(f, 0, 8)
		if err != nil {
			return nil, fmt.Errorf("mcui2c: bad data byte %q", f)
		}
		data = append(data, byte(v))
	}
	return data, nil
}
