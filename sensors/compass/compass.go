// Package compass is the QMC5883L magnetometer on a guarded bus.
package compass

import (
	"math"

	"periphkit-go/drivers/qmc5883l"
	"periphkit-go/i2cdev"
	"periphkit-go/x/mathx"

	"tinygo.org/x/drivers"
)

const Address = qmc5883l.Address

type Config struct {
	i2cdev.Config
	Chip qmc5883l.Config
}

func DefaultConfig() Config {
	return Config{Config: i2cdev.DefaultConfig(), Chip: qmc5883l.DefaultConfig()}
}

// Field is one magnetometer reading in gauss.
type Field struct {
	X, Y, Z float32
}

// Heading is the angle of the horizontal field component, 0..360 degrees.
func (f Field) Heading() float32 {
	deg := float32(math.Atan2(float64(f.Y), float64(f.X)) * 180 / math.Pi)
	return mathx.Wrap360(deg)
}

type Sensor struct {
	cfg Config
	ctl *i2cdev.Controller
}

func New(cfg Config) (*Sensor, error) {
	if cfg.Chip.Address == 0 {
		cfg.Chip.Address = Address
	}
	s := &Sensor{cfg: cfg}
	ctl, err := i2cdev.NewController(cfg.Config, i2cdev.Device{
		Name:    "compass",
		Address: cfg.Chip.Address,
		Init: func(bus drivers.I2C) error {
			return qmc5883l.New(bus, s.cfg.Chip).Configure()
		},
	})
	if err != nil {
		return nil, err
	}
	s.ctl = ctl
	return s, nil
}

func (s *Sensor) Controller() *i2cdev.Controller { return s.ctl }

// Magnetic returns the field in gauss.
func (s *Sensor) Magnetic() (Field, bool, error) {
	return i2cdev.Guard(s.ctl, func(bus drivers.I2C) (Field, error) {
		x, y, z, err := qmc5883l.New(bus, s.cfg.Chip).Read()
		return Field{X: x, Y: y, Z: z}, err
	})
}

// Heading returns degrees from magnetic X towards Y.
func (s *Sensor) Heading() (float32, bool, error) {
	f, ok, err := s.Magnetic()
	if !ok {
		return 0, false, err
	}
	return f.Heading(), true, nil
}
