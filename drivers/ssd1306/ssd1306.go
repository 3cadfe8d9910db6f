// Package ssd1306 drives an SSD1306 OLED controller over I2C.
//
// The driver keeps no frame of its own; callers hand a page-ordered frame
// (one byte per 8 vertical pixels, Width bytes per page) to Flush.
package ssd1306

import (
	"errors"

	"tinygo.org/x/drivers"
)

const Address = 0x3C

// Control bytes.
const (
	ctlCommand = 0x00
	ctlData    = 0x40
)

// Commands.
const (
	cmdMemoryMode    = 0x20
	cmdColumnAddr    = 0x21
	cmdPageAddr      = 0x22
	cmdStopScroll    = 0x2E
	cmdStartLine     = 0x40
	cmdContrast      = 0x81
	cmdChargePump    = 0x8D
	cmdSegRemap      = 0xA0
	cmdResume        = 0xA4
	cmdNormal        = 0xA6
	cmdMultiplex     = 0xA8
	cmdDisplayOff    = 0xAE
	cmdDisplayOn     = 0xAF
	cmdComScanDec    = 0xC8
	cmdDisplayOffset = 0xD3
	cmdClockDiv      = 0xD5
	cmdPrecharge     = 0xD9
	cmdComPins       = 0xDA
	cmdVcomDetect    = 0xDB
)

var (
	ErrSize  = errors.New("ssd1306: unsupported panel size")
	ErrFrame = errors.New("ssd1306: frame length does not match panel")
)

// Config zero value is a 128x64 panel on the internal charge pump.
type Config struct {
	Width, Height int16
	ExternalVCC   bool
}

func (c Config) withDefaults() Config {
	if c.Width == 0 {
		c.Width = 128
	}
	if c.Height == 0 {
		c.Height = 64
	}
	return c
}

// Validate reports whether the controller can drive a panel this size.
func (c Config) Validate() error {
	c = c.withDefaults()
	if c.Width <= 0 || c.Width > 128 || c.Height <= 0 || c.Height > 64 || c.Height%8 != 0 {
		return ErrSize
	}
	return nil
}

type Device struct {
	bus  drivers.I2C
	addr uint16
	cfg  Config
	cmd  [8]byte
	data []byte
}

func New(bus drivers.I2C, addr uint16, cfg Config) *Device {
	if addr == 0 {
		addr = Address
	}
	return &Device{bus: bus, addr: addr, cfg: cfg.withDefaults()}
}

func (d *Device) Size() (w, h int16) { return d.cfg.Width, d.cfg.Height }

// FrameLen is the byte length Flush expects.
func (d *Device) FrameLen() int { return int(d.cfg.Width) * int(d.cfg.Height) / 8 }

// Command sends up to seven command bytes in one transaction.
func (d *Device) Command(cmds ...byte) error {
	d.cmd[0] = ctlCommand
	n := copy(d.cmd[1:], cmds)
	return d.bus.Tx(d.addr, d.cmd[:1+n], nil)
}

// DefaultContrast is the level Configure programs for this panel.
func (d *Device) DefaultContrast() uint8 {
	switch {
	case d.cfg.Width == 128 && d.cfg.Height == 32:
		return 0x8F
	case d.cfg.ExternalVCC:
		return 0x9F
	}
	return 0xCF
}

// Configure runs the power-up sequence and leaves the panel on and blank
// (its RAM is not cleared).
func (d *Device) Configure() error {
	if err := d.cfg.Validate(); err != nil {
		return err
	}
	h := d.cfg.Height
	pump, pre := byte(0x14), byte(0xF1)
	if d.cfg.ExternalVCC {
		pump, pre = 0x10, 0x22
	}
	pins := byte(0x12)
	if h == 32 || h == 16 {
		pins = 0x02
	}
	seq := [][]byte{
		{cmdDisplayOff},
		{cmdClockDiv, 0x80},
		{cmdMultiplex, byte(h - 1)},
		{cmdDisplayOffset, 0x00},
		{cmdStartLine | 0x00},
		{cmdChargePump, pump},
		{cmdMemoryMode, 0x00},
		{cmdSegRemap | 0x01, cmdComScanDec},
		{cmdComPins, pins},
		{cmdContrast, d.DefaultContrast()},
		{cmdPrecharge, pre},
		{cmdVcomDetect, 0x40},
		{cmdResume, cmdNormal, cmdStopScroll, cmdDisplayOn},
	}
	for _, c := range seq {
		if err := d.Command(c...); err != nil {
			return err
		}
	}
	return nil
}

func (d *Device) SetContrast(level uint8) error {
	return d.Command(cmdContrast, level)
}

// Power switches the panel on or off; RAM is kept while off.
func (d *Device) Power(on bool) error {
	if on {
		return d.Command(cmdDisplayOn)
	}
	return d.Command(cmdDisplayOff)
}

// Flush writes a full frame starting at the top-left corner.
func (d *Device) Flush(frame []byte) error {
	if len(frame) != d.FrameLen() {
		return ErrFrame
	}
	pages := byte(d.cfg.Height/8) - 1
	if err := d.Command(cmdColumnAddr, 0, byte(d.cfg.Width-1), cmdPageAddr, 0, pages); err != nil {
		return err
	}
	if len(d.data) != 1+len(frame) {
		d.data = make([]byte, 1+len(frame))
	}
	d.data[0] = ctlData
	copy(d.data[1:], frame)
	return d.bus.Tx(d.addr, d.data, nil)
}
