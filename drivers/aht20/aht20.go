// Package aht20 drives the AHT20 temperature/humidity sensor.
//
//	d := aht20.New(bus, aht20.Config{})
//	err := d.Configure()
//	err = d.Trigger()        // start a conversion
//	err = d.Collect(&s)      // ErrNotReady while busy
//
// Read performs trigger plus bounded polling. Conversions are fixed-point
// (tenths of a degree and of a percent).
//
// I2C.Tx MUST issue a repeated-start read when both w and r are given.
package aht20

import (
	"errors"
	"time"

	"periphkit-go/x/mathx"

	"tinygo.org/x/drivers"
)

const Address = 0x38

const (
	cmdTrigger    = 0xAC
	cmdInitialize = 0xBE
	cmdSoftReset  = 0xBA
	cmdStatus     = 0x71

	statusBusy       = 0x80
	statusCalibrated = 0x08

	fullScale = 1 << 20
)

var (
	ErrTimeout  = errors.New("aht20: timeout")
	ErrNotReady = errors.New("aht20: not ready")
	ErrNotCal   = errors.New("aht20: calibration bit not set")
)

// Config is optional; zero fields take defaults.
type Config struct {
	Address        uint16        // 0 => 0x38
	PollInterval   time.Duration // Read: delay between Collect attempts, default 15 ms
	CollectTimeout time.Duration // Read: total wait, default 250 ms
	InitDelay      time.Duration // after the initialise command, default 10 ms

	// Sleep is used for every wait; nil => time.Sleep.
	Sleep func(time.Duration)
}

func (c Config) withDefaults() Config {
	if c.Address == 0 {
		c.Address = Address
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 15 * time.Millisecond
	}
	if c.CollectTimeout <= 0 {
		c.CollectTimeout = 250 * time.Millisecond
	}
	if c.InitDelay <= 0 {
		c.InitDelay = 10 * time.Millisecond
	}
	if c.Sleep == nil {
		c.Sleep = time.Sleep
	}
	return c
}

// Sample holds one raw 20-bit reading pair.
type Sample struct {
	RawHumidity uint32
	RawTemp     uint32
}

// DeciRelHumidity returns tenths of %RH.
func (s Sample) DeciRelHumidity() int32 {
	return int32(mathx.Scale(s.RawHumidity, 1000, fullScale))
}

// DeciCelsius returns tenths of °C.
func (s Sample) DeciCelsius() int32 {
	return int32(mathx.Scale(s.RawTemp, 2000, fullScale)) - 500
}

type Device struct {
	bus drivers.I2C
	cfg Config
	buf [7]byte
	cmd [3]byte
}

// New does not touch the bus.
func New(bus drivers.I2C, cfg Config) *Device {
	return &Device{bus: bus, cfg: cfg.withDefaults()}
}

func (d *Device) Address() uint16 { return d.cfg.Address }

// Configure sends the initialise command unless the calibration bit is
// already set, then checks it.
func (d *Device) Configure() error {
	st, err := d.Status()
	if err != nil {
		return err
	}
	if st&statusCalibrated != 0 {
		return nil
	}
	if err := d.command(cmdInitialize, 0x08, 0x00); err != nil {
		return err
	}
	d.cfg.Sleep(d.cfg.InitDelay)
	if st, err = d.Status(); err != nil {
		return err
	}
	if st&statusCalibrated == 0 {
		return ErrNotCal
	}
	return nil
}

// Reset issues a soft reset; allow ~20 ms before the next command.
func (d *Device) Reset() error {
	d.cmd[0] = cmdSoftReset
	return d.bus.Tx(d.cfg.Address, d.cmd[:1], nil)
}

func (d *Device) Status() (byte, error) {
	d.cmd[0] = cmdStatus
	if err := d.bus.Tx(d.cfg.Address, d.cmd[:1], d.buf[:1]); err != nil {
		return 0, err
	}
	return d.buf[0], nil
}

// Trigger starts a conversion (about 80 ms).
func (d *Device) Trigger() error {
	return d.command(cmdTrigger, 0x33, 0x00)
}

// Collect reads the conversion started by Trigger.
func (d *Device) Collect(out *Sample) error {
	data := d.buf[:]
	if err := d.bus.Tx(d.cfg.Address, nil, data); err != nil {
		return err
	}
	if data[0]&statusCalibrated == 0 || data[0]&statusBusy != 0 {
		return ErrNotReady
	}
	out.RawHumidity = uint32(data[1])<<12 | uint32(data[2])<<4 | uint32(data[3])>>4
	out.RawTemp = uint32(data[3]&0x0F)<<16 | uint32(data[4])<<8 | uint32(data[5])
	return nil
}

// Read triggers and polls until a sample is available or CollectTimeout
// has been spent waiting.
func (d *Device) Read() (Sample, error) {
	var s Sample
	if err := d.Trigger(); err != nil {
		return s, err
	}
	var waited time.Duration
	for {
		err := d.Collect(&s)
		if err != ErrNotReady {
			return s, err
		}
		if waited >= d.cfg.CollectTimeout {
			return s, ErrTimeout
		}
		d.cfg.Sleep(d.cfg.PollInterval)
		waited += d.cfg.PollInterval
	}
}

func (d *Device) command(c, a, b byte) error {
	d.cmd = [3]byte{c, a, b}
	return d.bus.Tx(d.cfg.Address, d.cmd[:], nil)
}
