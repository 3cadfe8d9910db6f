// Package oled drives an SSD1306 monochrome panel on a guarded bus.
//
// Drawing happens in a local frame that survives disconnects; Show pushes
// the frame to the panel when it is reachable.
package oled

import (
	"time"

	"periphkit-go/drivers/ssd1306"
	"periphkit-go/i2cdev"
	"periphkit-go/x/mathx"
	"periphkit-go/x/ramp"

	"tinygo.org/x/drivers"
)

const Address = ssd1306.Address

var ErrSize = ssd1306.ErrSize

type Config struct {
	i2cdev.Config
	Panel ssd1306.Config

	// Sleep paces Fade; nil => time.Sleep.
	Sleep func(time.Duration)
}

func DefaultConfig() Config {
	return Config{
		Config: i2cdev.DefaultConfig(),
		Panel:  ssd1306.Config{Width: 128, Height: 64},
	}
}

type Display struct {
	cfg   Config
	ctl   *i2cdev.Controller
	dev   *ssd1306.Device
	w, h  int16
	frame []byte

	contrast uint8 // 0 until set
}

func New(cfg Config) (*Display, error) {
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}
	if err := cfg.Panel.Validate(); err != nil {
		return nil, err
	}
	probe := ssd1306.New(nil, Address, cfg.Panel)
	w, h := probe.Size()
	d := &Display{cfg: cfg, w: w, h: h, frame: make([]byte, probe.FrameLen())}
	ctl, err := i2cdev.NewController(cfg.Config, i2cdev.Device{
		Name:    "oled",
		Address: Address,
		Init:    d.init,
	})
	if err != nil {
		return nil, err
	}
	d.ctl = ctl
	return d, nil
}

func (d *Display) Controller() *i2cdev.Controller { return d.ctl }

func (d *Display) init(bus drivers.I2C) error {
	d.dev = ssd1306.New(bus, Address, d.cfg.Panel)
	if err := d.dev.Configure(); err != nil {
		return err
	}
	if d.contrast != 0 && d.contrast != d.dev.DefaultContrast() {
		return d.dev.SetContrast(d.contrast)
	}
	return nil
}

func (d *Display) Size() (w, h int16) { return d.w, d.h }

// Fill sets every pixel of the frame.
func (d *Display) Fill(lit bool) {
	var b byte
	if lit {
		b = 0xFF
	}
	for i := range d.frame {
		d.frame[i] = b
	}
}

// SetPixel changes the frame only; out-of-range coordinates are ignored.
func (d *Display) SetPixel(x, y int16, lit bool) {
	if x < 0 || x >= d.w || y < 0 || y >= d.h {
		return
	}
	i := int(x) + int(y/8)*int(d.w)
	bit := byte(1) << uint(y%8)
	if lit {
		d.frame[i] |= bit
	} else {
		d.frame[i] &^= bit
	}
}

func (d *Display) Pixel(x, y int16) bool {
	if x < 0 || x >= d.w || y < 0 || y >= d.h {
		return false
	}
	return d.frame[int(x)+int(y/8)*int(d.w)]>>uint(y%8)&1 == 1
}

// Show pushes the frame to the panel.
func (d *Display) Show() (bool, error) {
	return d.ctl.Do(func(drivers.I2C) error {
		return d.dev.Flush(d.frame)
	})
}

// Power turns the panel on or off without touching its memory.
func (d *Display) Power(on bool) (bool, error) {
	return d.ctl.Do(func(drivers.I2C) error {
		return d.dev.Power(on)
	})
}

// Contrast returns the last level set, or the panel's power-on level.
func (d *Display) Contrast() uint8 {
	if d.contrast != 0 {
		return d.contrast
	}
	return ssd1306.New(nil, Address, d.cfg.Panel).DefaultContrast()
}

// SetContrast sets the panel brightness, 1..255. It is reapplied after a
// reconnect.
func (d *Display) SetContrast(level uint8) (bool, error) {
	level = mathx.Clamp(level, 1, 255)
	d.contrast = level
	return d.ctl.Do(func(drivers.I2C) error {
		return d.dev.SetContrast(level)
	})
}

// Fade ramps the contrast to level over total. It stops early when the
// panel goes away or a transfer fails.
func (d *Display) Fade(level uint8, total time.Duration, steps int) (bool, error) {
	ok, err := true, error(nil)
	ramp.Linear(d.Contrast(), level, total, steps,
		func(step time.Duration) bool {
			d.cfg.Sleep(step)
			return ok && err == nil
		},
		func(v uint8) { ok, err = d.SetContrast(v) })
	return ok, err
}
