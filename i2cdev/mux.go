package i2cdev

import (
	"periphkit-go/errcode"

	"tinygo.org/x/drivers"
)

// Channel is a multiplexer segment index: 0..7, or NoChannel.
type Channel int

const (
	// NoChannel is written to the multiplexer as the literal byte 0xFF.
	NoChannel Channel = 255

	// DefaultMuxAddress is the TCA9548A factory address.
	DefaultMuxAddress uint16 = 0x70
)

// Valid reports whether c is 0..7 or NoChannel.
func (c Channel) Valid() bool {
	return (c >= 0 && c <= 7) || c == NoChannel
}

// controlByte is the one-hot segment mask, or 0xFF for NoChannel.
func (c Channel) controlByte() byte {
	if c == NoChannel {
		return 0xFF
	}
	return 1 << uint(c)
}

// SelectChannel routes the bus through segment ch of the multiplexer at
// muxAddr with a single one-byte write. An invalid channel is rejected with
// errcode.InvalidChannel before anything is written.
func SelectChannel(bus drivers.I2C, muxAddr uint16, ch Channel) error {
	if !ch.Valid() {
		return &errcode.E{C: errcode.InvalidChannel, Op: "select", Msg: "channel must be 0..7 or 255"}
	}
	w := [1]byte{ch.controlByte()}
	return bus.Tx(muxAddr, w[:], nil)
}
