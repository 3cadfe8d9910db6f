// Package climate is the AHT20 temperature/humidity sensor on a guarded bus.
package climate

import (
	"periphkit-go/drivers/aht20"
	"periphkit-go/i2cdev"

	"tinygo.org/x/drivers"
)

const Address = aht20.Address

type Config struct {
	i2cdev.Config
	Chip aht20.Config
}

func DefaultConfig() Config {
	return Config{Config: i2cdev.DefaultConfig()}
}

// Reading is in tenths: 253 => 25.3 °C, 481 => 48.1 %RH.
type Reading struct {
	DeciCelsius     int32
	DeciRelHumidity int32
}

func (r Reading) Celsius() float32  { return float32(r.DeciCelsius) / 10 }
func (r Reading) Humidity() float32 { return float32(r.DeciRelHumidity) / 10 }

type Sensor struct {
	ctl *i2cdev.Controller
	dev *aht20.Device
}

func New(cfg Config) (*Sensor, error) {
	s := &Sensor{}
	ctl, err := i2cdev.NewController(cfg.Config, i2cdev.Device{
		Name:    "climate",
		Address: aht20.New(nil, cfg.Chip).Address(),
		Init: func(bus drivers.I2C) error {
			s.dev = aht20.New(bus, cfg.Chip)
			return s.dev.Configure()
		},
	})
	if err != nil {
		return nil, err
	}
	s.ctl = ctl
	return s, nil
}

func (s *Sensor) Controller() *i2cdev.Controller { return s.ctl }

// Read runs one conversion.
func (s *Sensor) Read() (Reading, bool, error) {
	return i2cdev.Guard(s.ctl, func(bus drivers.I2C) (Reading, error) {
		smp, err := s.dev.Read()
		if err != nil {
			return Reading{}, err
		}
		return Reading{DeciCelsius: smp.DeciCelsius(), DeciRelHumidity: smp.DeciRelHumidity()}, nil
	})
}
