// Package qmc5883l drives the QMC5883L three-axis magnetometer.
package qmc5883l

import (
	"errors"
	"time"

	"periphkit-go/i2cbus"

	"tinygo.org/x/drivers"
)

const Address = 0x0D

// Registers.
const (
	regData     = 0x00 // X, Y, Z little-endian int16
	regStatus   = 0x06
	regControl1 = 0x09
	regSetReset = 0x0B
	regChipID   = 0x0D

	chipID = 0xFF
)

var (
	fOversample = i2cbus.Field{Reg: regControl1, Shift: 6, Width: 2}
	fRange      = i2cbus.Field{Reg: regControl1, Shift: 4, Width: 2}
	fRate       = i2cbus.Field{Reg: regControl1, Shift: 2, Width: 2}
	fMode       = i2cbus.Field{Reg: regControl1, Shift: 0, Width: 2}
	fReady      = i2cbus.Field{Reg: regStatus, Shift: 0, Width: 1}
)

type Oversample uint8

const (
	Oversample512 Oversample = 0b00
	Oversample256 Oversample = 0b01
	Oversample128 Oversample = 0b10
	Oversample64  Oversample = 0b11
)

type Range uint8

const (
	Range2G Range = 0b00
	Range8G Range = 0b01
)

// counts per gauss
func (r Range) resolution() float32 {
	if r == Range8G {
		return 3000
	}
	return 12000
}

type Rate uint8

const (
	Rate10Hz  Rate = 0b00
	Rate50Hz  Rate = 0b01
	Rate100Hz Rate = 0b10
	Rate200Hz Rate = 0b11
)

type Mode uint8

const (
	ModeStandby    Mode = 0b00
	ModeContinuous Mode = 0b01
)

var (
	ErrWrongChip = errors.New("qmc5883l: unexpected chip id")
	ErrTimeout   = errors.New("qmc5883l: data not ready")
	ErrConfig    = errors.New("qmc5883l: invalid setting")
)

// Config zero value is 512x oversampling, ±2 G, 10 Hz, standby; use
// DefaultConfig for the usual continuous 200 Hz setup.
type Config struct {
	Address    uint16
	Oversample Oversample
	Range      Range
	Rate       Rate
	Mode       Mode

	// ReadyTimeout bounds the data-ready poll in Read; default 50 ms.
	ReadyTimeout time.Duration
	Sleep        func(time.Duration)
}

func DefaultConfig() Config {
	return Config{
		Address:    Address,
		Oversample: Oversample128,
		Range:      Range2G,
		Rate:       Rate200Hz,
		Mode:       ModeContinuous,
	}
}

type Device struct {
	bus drivers.I2C
	cfg Config
	buf [6]byte
}

func New(bus drivers.I2C, cfg Config) *Device {
	if cfg.Address == 0 {
		cfg.Address = Address
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = 50 * time.Millisecond
	}
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}
	return &Device{bus: bus, cfg: cfg}
}

// Configure checks the chip id, sets the set/reset period and applies the
// control fields.
func (d *Device) Configure() error {
	id, err := i2cbus.ReadReg8(d.bus, d.cfg.Address, regChipID)
	if err != nil {
		return err
	}
	if id != chipID {
		return ErrWrongChip
	}
	if err := i2cbus.WriteReg8(d.bus, d.cfg.Address, regSetReset, 0x01); err != nil {
		return err
	}
	if err := d.SetOversample(d.cfg.Oversample); err != nil {
		return err
	}
	if err := d.SetRange(d.cfg.Range); err != nil {
		return err
	}
	if err := d.SetRate(d.cfg.Rate); err != nil {
		return err
	}
	return d.SetMode(d.cfg.Mode)
}

func (d *Device) SetOversample(o Oversample) error {
	if o > Oversample64 {
		return ErrConfig
	}
	if err := i2cbus.WriteField(d.bus, d.cfg.Address, fOversample, uint32(o)); err != nil {
		return err
	}
	d.cfg.Oversample = o
	return nil
}

func (d *Device) SetRange(r Range) error {
	if r > Range8G {
		return ErrConfig
	}
	if err := i2cbus.WriteField(d.bus, d.cfg.Address, fRange, uint32(r)); err != nil {
		return err
	}
	d.cfg.Range = r
	return nil
}

func (d *Device) SetRate(r Rate) error {
	if r > Rate200Hz {
		return ErrConfig
	}
	if err := i2cbus.WriteField(d.bus, d.cfg.Address, fRate, uint32(r)); err != nil {
		return err
	}
	d.cfg.Rate = r
	return nil
}

func (d *Device) SetMode(m Mode) error {
	if m > ModeContinuous {
		return ErrConfig
	}
	if err := i2cbus.WriteField(d.bus, d.cfg.Address, fMode, uint32(m)); err != nil {
		return err
	}
	d.cfg.Mode = m
	return nil
}

// Ready reports the data-ready flag.
func (d *Device) Ready() (bool, error) {
	v, err := i2cbus.ReadField(d.bus, d.cfg.Address, fReady)
	return v == 1, err
}

// ReadRaw waits for data-ready and returns raw counts.
func (d *Device) ReadRaw() (x, y, z int16, err error) {
	var waited time.Duration
	for {
		ok, err := d.Ready()
		if err != nil {
			return 0, 0, 0, err
		}
		if ok {
			break
		}
		if waited >= d.cfg.ReadyTimeout {
			return 0, 0, 0, ErrTimeout
		}
		d.cfg.Sleep(time.Millisecond)
		waited += time.Millisecond
	}
	b := d.buf[:]
	if err := i2cbus.ReadInto(d.bus, d.cfg.Address, regData, b); err != nil {
		return 0, 0, 0, err
	}
	return i2cbus.S16LE(b[0:]), i2cbus.S16LE(b[2:]), i2cbus.S16LE(b[4:]), nil
}

// Read returns the field in gauss.
func (d *Device) Read() (x, y, z float32, err error) {
	rx, ry, rz, err := d.ReadRaw()
	if err != nil {
		return 0, 0, 0, err
	}
	res := d.cfg.Range.resolution()
	return float32(rx) / res, float32(ry) / res, float32(rz) / res, nil
}
