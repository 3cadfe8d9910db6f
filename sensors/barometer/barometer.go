// Package barometer is the BMP280 pressure/temperature sensor on a guarded
// bus, set up for indoor navigation (x16 pressure, x2 temperature, IIR x4,
// normal mode, 0.5 ms standby).
package barometer

import (
	"errors"

	"periphkit-go/i2cbus"
	"periphkit-go/i2cdev"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/bmp280"
)

// Address is the SDO-low address used by the breakout; 0x77 with SDO high.
const Address = 0x76

var ErrWrongChip = errors.New("barometer: not a BMP280")

type Config struct {
	i2cdev.Config
	Address uint16 // 0 => 0x76
}

func DefaultConfig() Config {
	return Config{Config: i2cdev.DefaultConfig(), Address: Address}
}

type Sensor struct {
	ctl   *i2cdev.Controller
	latch i2cbus.Latch
	dev   bmp280.Device
}

func New(cfg Config) (*Sensor, error) {
	if cfg.Address == 0 {
		cfg.Address = Address
	}
	s := &Sensor{}
	s.dev = bmp280.New(&s.latch)
	s.dev.Address = cfg.Address
	ctl, err := i2cdev.NewController(cfg.Config, i2cdev.Device{
		Name:    "barometer",
		Address: cfg.Address,
		Init:    s.init,
	})
	if err != nil {
		return nil, err
	}
	s.ctl = ctl
	return s, nil
}

func (s *Sensor) Controller() *i2cdev.Controller { return s.ctl }

func (s *Sensor) init(bus drivers.I2C) error {
	s.latch.Bind(bus)
	return s.latch.Run(func() error {
		if !s.dev.Connected() {
			return ErrWrongChip
		}
		s.dev.Configure(bmp280.STANDBY_1MS, bmp280.FILTER_4X, bmp280.SAMPLING_2X, bmp280.SAMPLING_16X, bmp280.MODE_NORMAL)
		return nil
	})
}

// Temperature returns °C.
func (s *Sensor) Temperature() (float32, bool, error) {
	return i2cdev.Guard(s.ctl, func(bus drivers.I2C) (float32, error) {
		var milli int32
		err := s.run(bus, func() (err error) {
			milli, err = s.dev.ReadTemperature()
			return err
		})
		return float32(milli) / 1000, err
	})
}

// Pressure returns Pa.
func (s *Sensor) Pressure() (float32, bool, error) {
	return i2cdev.Guard(s.ctl, func(bus drivers.I2C) (float32, error) {
		var milli int32
		err := s.run(bus, func() (err error) {
			milli, err = s.dev.ReadPressure()
			return err
		})
		return float32(milli) / 1000, err
	})
}

func (s *Sensor) run(bus drivers.I2C, fn func() error) error {
	s.latch.Bind(bus)
	return s.latch.Run(fn)
}
