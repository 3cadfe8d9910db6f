package i2cbus

import (
	"periphkit-go/errcode"

	"tinygo.org/x/drivers"
)

// Field describes a bit field inside a 1..4 byte register.
//
//	Field{Reg: 0x09, Shift: 6, Width: 2}  // bits 7:6 of register 0x09
type Field struct {
	Reg      uint8
	Shift    uint8
	Width    uint8
	Size     uint8 // register width in bytes; 0 => 1
	LSBFirst bool  // multi-byte registers: first byte on the wire is least significant
}

func (f Field) size() int {
	if f.Size == 0 {
		return 1
	}
	return int(f.Size)
}

func (f Field) mask() uint32 {
	return ((uint32(1) << f.Width) - 1) << f.Shift
}

func (f Field) valid() bool {
	n := f.size()
	return n <= 4 && f.Width > 0 && int(f.Shift)+int(f.Width) <= n*8
}

func (f Field) decode(b []byte) uint32 {
	var v uint32
	if f.LSBFirst {
		for i := len(b) - 1; i >= 0; i-- {
			v = v<<8 | uint32(b[i])
		}
	} else {
		for _, x := range b {
			v = v<<8 | uint32(x)
		}
	}
	return v
}

func (f Field) encode(v uint32, b []byte) {
	n := len(b)
	for i := 0; i < n; i++ {
		x := byte(v >> (8 * i))
		if f.LSBFirst {
			b[i] = x
		} else {
			b[n-1-i] = x
		}
	}
}

// ReadField returns the field value, right-aligned.
func ReadField(bus drivers.I2C, addr uint16, f Field) (uint32, error) {
	if !f.valid() {
		return 0, errcode.InvalidParams
	}
	var buf [4]byte
	b := buf[:f.size()]
	if err := ReadInto(bus, addr, f.Reg, b); err != nil {
		return 0, err
	}
	return (f.decode(b) & f.mask()) >> f.Shift, nil
}

// WriteField performs a read-modify-write of the field. Bits of v beyond
// the field width are rejected.
func WriteField(bus drivers.I2C, addr uint16, f Field, v uint32) error {
	if !f.valid() || v > f.mask()>>f.Shift {
		return errcode.InvalidParams
	}
	var buf [4]byte
	b := buf[:f.size()]
	if err := ReadInto(bus, addr, f.Reg, b); err != nil {
		return err
	}
	reg := f.decode(b)&^f.mask() | v<<f.Shift
	f.encode(reg, b)
	return WriteRegister(bus, addr, f.Reg, b)
}

// UpdateReg8 sets and clears bits of an 8-bit register, skipping the write
// when nothing would change.
func UpdateReg8(bus drivers.I2C, addr uint16, reg, set, clear uint8) error {
	if set == 0 && clear == 0 {
		return nil
	}
	var b [1]byte
	if err := ReadInto(bus, addr, reg, b[:]); err != nil {
		return err
	}
	next := (b[0] | set) &^ clear
	if next == b[0] {
		return nil
	}
	b[0] = next
	return WriteRegister(bus, addr, reg, b[:])
}

// ReadReg8 reads one register byte.
func ReadReg8(bus drivers.I2C, addr uint16, reg uint8) (uint8, error) {
	var b [1]byte
	err := ReadInto(bus, addr, reg, b[:])
	return b[0], err
}

// WriteReg8 writes one register byte.
func WriteReg8(bus drivers.I2C, addr uint16, reg, v uint8) error {
	w := [2]byte{reg, v}
	return bus.Tx(addr, w[:], nil)
}

// S16LE decodes a little-endian signed word.
func S16LE(b []byte) int16 { return int16(uint16(b[0]) | uint16(b[1])<<8) }

// U16BE decodes a big-endian unsigned word.
func U16BE(b []byte) uint16 { return uint16(b[0])<<8 | uint16(b[1]) }
