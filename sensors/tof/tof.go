// Package tof is the VL53L1X time-of-flight distance sensor on a guarded
// bus. A missing or unplugged sensor reads as ok == false.
package tof

import (
	"errors"

	"periphkit-go/i2cbus"
	"periphkit-go/i2cdev"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/vl53l1x"
)

const Address = vl53l1x.Address

var (
	ErrConfigure = errors.New("tof: configure failed")
	ErrNoReading = errors.New("tof: no valid range")
)

type Config struct {
	i2cdev.Config

	Mode         vl53l1x.DistanceMode
	TimingBudget uint32 // µs; 0 => 50000
	PeriodMs     uint32 // continuous ranging period; 0 => 50
	Use2V8       bool
}

func DefaultConfig() Config {
	return Config{
		Config:       i2cdev.DefaultConfig(),
		Mode:         vl53l1x.LONG,
		TimingBudget: 50000,
		PeriodMs:     50,
		Use2V8:       true,
	}
}

type Sensor struct {
	cfg   Config
	ctl   *i2cdev.Controller
	latch i2cbus.Latch
	dev   vl53l1x.Device
}

func New(cfg Config) (*Sensor, error) {
	if cfg.TimingBudget == 0 {
		cfg.TimingBudget = 50000
	}
	if cfg.PeriodMs == 0 {
		cfg.PeriodMs = 50
	}
	s := &Sensor{cfg: cfg}
	s.dev = vl53l1x.New(&s.latch)
	ctl, err := i2cdev.NewController(cfg.Config, i2cdev.Device{
		Name:    "tof",
		Address: Address,
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
		if !s.dev.Configure(s.cfg.Use2V8) {
			return ErrConfigure
		}
		if !s.dev.SetDistanceMode(s.cfg.Mode) || !s.dev.SetMeasurementTimingBudget(s.cfg.TimingBudget) {
			return ErrConfigure
		}
		s.dev.StartContinuous(s.cfg.PeriodMs)
		return nil
	})
}

// Distance blocks for the next ranging result and returns it in mm.
func (s *Sensor) Distance() (mm int32, ok bool, err error) {
	return i2cdev.Guard(s.ctl, func(bus drivers.I2C) (int32, error) {
		s.latch.Bind(bus)
		err := s.latch.Run(func() error {
			s.dev.Read(true)
			return nil
		})
		if err != nil {
			return 0, err
		}
		if s.dev.Status() == vl53l1x.None {
			return 0, ErrNoReading
		}
		return s.dev.Distance(), nil
	})
}

// Status is the range status of the last Distance call.
func (s *Sensor) Status() vl53l1x.RangeStatus { return s.dev.Status() }
