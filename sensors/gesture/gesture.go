// Package gesture is the APDS9960 colour, proximity and gesture sensor on a
// guarded bus. The chip runs one engine at a time; each reading switches
// to the engine it needs.
package gesture

import (
	"errors"
	"time"

	"periphkit-go/i2cbus"
	"periphkit-go/i2cdev"
	"periphkit-go/x/mathx"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/apds9960"
)

const Address = apds9960.ADPS9960_ADDRESS

type Gesture int32

const (
	None  Gesture = apds9960.GESTURE_NONE
	Up    Gesture = apds9960.GESTURE_UP
	Down  Gesture = apds9960.GESTURE_DOWN
	Left  Gesture = apds9960.GESTURE_LEFT
	Right Gesture = apds9960.GESTURE_RIGHT
)

func (g Gesture) String() string {
	switch g {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "none"
}

// Color is one raw RGBC reading.
type Color struct {
	R, G, B, Clear int32
}

var (
	ErrWrongChip = errors.New("gesture: not an APDS9960")
	ErrNotReady  = errors.New("gesture: no data")
)

type Config struct {
	i2cdev.Config
	Chip apds9960.Configuration

	// Threshold is the FIFO level under which a hand is gone; 0 => 30.
	Threshold uint8
	// Sensitivity 0..100; 0 => driver default.
	Sensitivity uint8

	// ReadyTimeout bounds the wait for colour or proximity data; 0 => 100 ms.
	ReadyTimeout time.Duration
	Sleep        func(time.Duration)
}

func DefaultConfig() Config {
	return Config{Config: i2cdev.DefaultConfig()}
}

type Sensor struct {
	cfg   Config
	ctl   *i2cdev.Controller
	latch i2cbus.Latch
	dev   apds9960.Device
}

func New(cfg Config) (*Sensor, error) {
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = 100 * time.Millisecond
	}
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}
	s := &Sensor{cfg: cfg}
	s.dev = apds9960.New(&s.latch)
	ctl, err := i2cdev.NewController(cfg.Config, i2cdev.Device{
		Name:    "gesture",
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
		if !s.dev.Connected() {
			return ErrWrongChip
		}
		s.dev.Configure(s.cfg.Chip)
		if s.cfg.Threshold != 0 {
			s.dev.Setthreshold(s.cfg.Threshold)
		}
		if s.cfg.Sensitivity != 0 {
			s.dev.Setsensitivity(mathx.Clamp(s.cfg.Sensitivity, 1, 100))
		}
		return nil
	})
}

func (s *Sensor) run(bus drivers.I2C, fn func() error) error {
	s.latch.Bind(bus)
	return s.latch.Run(fn)
}

func (s *Sensor) waitFor(available func() bool) error {
	var waited time.Duration
	for !available() {
		if s.latch.Err() != nil {
			return nil
		}
		if waited >= s.cfg.ReadyTimeout {
			return ErrNotReady
		}
		s.cfg.Sleep(time.Millisecond)
		waited += time.Millisecond
	}
	return nil
}

// Color switches to the colour engine if needed and waits for a reading.
func (s *Sensor) Color() (Color, bool, error) {
	return i2cdev.Guard(s.ctl, func(bus drivers.I2C) (Color, error) {
		var c Color
		err := s.run(bus, func() error {
			if s.dev.GetMode() != apds9960.MODE_COLOR {
				s.dev.EnableColor()
			}
			if err := s.waitFor(s.dev.ColorAvailable); err != nil {
				return err
			}
			c.R, c.G, c.B, c.Clear = s.dev.ReadColor()
			return nil
		})
		return c, err
	})
}

// Proximity returns 0 (far) .. 255 (near).
func (s *Sensor) Proximity() (int32, bool, error) {
	return i2cdev.Guard(s.ctl, func(bus drivers.I2C) (int32, error) {
		var p int32
		err := s.run(bus, func() error {
			if s.dev.GetMode() != apds9960.MODE_PROXIMITY {
				s.dev.EnableProximity()
			}
			if err := s.waitFor(s.dev.ProximityAvailable); err != nil {
				return err
			}
			p = s.dev.ReadProximity()
			return nil
		})
		return p, err
	})
}

// Gesture drains the gesture FIFO and returns the gesture it completes, or
// None. It does not wait.
func (s *Sensor) Gesture() (Gesture, bool, error) {
	return i2cdev.Guard(s.ctl, func(bus drivers.I2C) (Gesture, error) {
		g := None
		err := s.run(bus, func() error {
			if s.dev.GetMode() != apds9960.MODE_GESTURE {
				s.dev.EnableGesture()
			}
			if s.dev.GestureAvailable() {
				g = Gesture(s.dev.ReadGesture())
			}
			return nil
		})
		return g, err
	})
}
