// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp9903

import (
	"periph.io/x/conn/v3"
)

// Transport is the byte level access to one device on a bus.
//
// A nil error means the transaction succeeded. A failing transport may return
// an error with a StatusCode() int method, the code is then reported in
// BusError.Code.
type Transport interface {
	// Write sends w in a single write transaction.
	Write(w []byte) error
	// WriteRead sends w and reads n bytes with a repeated start. It returns
	// the bytes the bus actually delivered.
	WriteRead(w []byte, n int) ([]byte, error)
}

// connTransport adapts a periph conn.Conn, like an *i2c.Dev.
type connTransport struct {
	c conn.Conn
}

func (t *connTransport) Write(w []byte) error {
	return t.c.Tx(w, nil)
}

func (t *connTransport) WriteRead(w []byte, n int) ([]byte, error) {
	r := make([]byte, n)
	if err := t.c.Tx(w, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (t *connTransport) String() string {
	return t.c.String()
}
