// Package i2cbus owns the two-wire bus primitive shared by every device in
// this repository.
//
// The primitive is tinygo.org/x/drivers.I2C (a single Tx(addr, w, r) call),
// so TinyGo's machine.I2C, the Linux /dev/i2c-N adaptor in this package and
// test fakes are interchangeable. Helpers here express the register-level
// shapes devices need (plain write/read, register write/read, bit fields).
//
// Platform adaptors MUST report a transfer that was not acknowledged as an
// error carrying errcode.DeviceAbsent, and anything else as errcode.BusFault
// (or an unclassified error). The lifecycle layer relies on that split.
package i2cbus

import (
	"periphkit-go/errcode"

	"tinygo.org/x/drivers"
)

// Config identifies one bus instance and its wiring.
type Config struct {
	ID  int    // peripheral index: 0 => i2c0 / /dev/i2c-0
	SDA int    // GPIO number (ignored on Linux)
	SCL int    // GPIO number (ignored on Linux)
	Hz  uint32 // bus frequency; 0 => DefaultHz
}

// Defaults match the Leaphy board wiring (GP12/GP13 on i2c0).
const (
	DefaultSDA = 12
	DefaultSCL = 13
	DefaultHz  = 400_000
)

// DefaultConfig returns the board default bus plan.
func DefaultConfig() Config {
	return Config{ID: 0, SDA: DefaultSDA, SCL: DefaultSCL, Hz: DefaultHz}
}

// WithDefaults fills zero pins and frequency.
func (c Config) WithDefaults() Config {
	if c.SDA == 0 && c.SCL == 0 {
		c.SDA, c.SCL = DefaultSDA, DefaultSCL
	}
	if c.Hz == 0 {
		c.Hz = DefaultHz
	}
	return c
}

// Opener opens (or re-opens) the bus described by cfg. Opening the same
// bus twice must be safe.
type Opener func(cfg Config) (drivers.I2C, error)

// Open is the platform default Opener (see open_*.go).
var Open Opener = openPlatform

// ---- Plain transfers ----

// Write sends p to addr in one transaction.
func Write(bus drivers.I2C, addr uint16, p []byte) error {
	return bus.Tx(addr, p, nil)
}

// Read reads n bytes from addr.
func Read(bus drivers.I2C, addr uint16, n int) ([]byte, error) {
	r := make([]byte, n)
	if err := bus.Tx(addr, nil, r); err != nil {
		return nil, err
	}
	return r, nil
}

// ---- Register transfers (8-bit register index) ----

// WriteRegister writes p starting at reg.
func WriteRegister(bus drivers.I2C, addr uint16, reg uint8, p []byte) error {
	var small [8]byte
	var w []byte
	if len(p)+1 <= len(small) {
		w = small[:len(p)+1]
	} else {
		w = make([]byte, len(p)+1)
	}
	w[0] = reg
	copy(w[1:], p)
	return bus.Tx(addr, w, nil)
}

// ReadRegister reads n bytes starting at reg (write reg, repeated start, read).
func ReadRegister(bus drivers.I2C, addr uint16, reg uint8, n int) ([]byte, error) {
	r := make([]byte, n)
	if err := ReadInto(bus, addr, reg, r); err != nil {
		return nil, err
	}
	return r, nil
}

// ReadInto is the allocation-free form of ReadRegister.
func ReadInto(bus drivers.I2C, addr uint16, reg uint8, r []byte) error {
	w := [1]byte{reg}
	return bus.Tx(addr, w[:], r)
}

// ---- Error tagging for adaptors ----

// Absent tags err as a not-acknowledged transfer.
func Absent(op string, err error) error {
	if err == nil {
		return nil
	}
	return errcode.Wrap(errcode.DeviceAbsent, op, err)
}

// Fault tags err as a non-recoverable transfer failure.
func Fault(op string, err error) error {
	if err == nil {
		return nil
	}
	return errcode.Wrap(errcode.BusFault, op, err)
}
