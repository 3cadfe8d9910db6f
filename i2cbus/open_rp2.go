//go:build rp2040 || rp2350

package i2cbus

import (
	"machine"

	"periphkit-go/errcode"

	"tinygo.org/x/drivers"
)

// rp2Bus adapts machine.I2C. The machine package does not expose a
// distinguishable NACK error, so every transfer error is reported as
// DeviceAbsent (the same convention MicroPython uses with EIO).
type rp2Bus struct {
	hw *machine.I2C
}

var rp2Buses [2]*rp2Bus

func openPlatform(cfg Config) (drivers.I2C, error) {
	cfg = cfg.WithDefaults()
	var hw *machine.I2C
	switch cfg.ID {
	case 0:
		hw = machine.I2C0
	case 1:
		hw = machine.I2C1
	default:
		return nil, errcode.UnknownBus
	}
	sda := machine.Pin(cfg.SDA)
	scl := machine.Pin(cfg.SCL)
	sda.Configure(machine.PinConfig{Mode: machine.PinI2C})
	scl.Configure(machine.PinConfig{Mode: machine.PinI2C})
	if err := hw.Configure(machine.I2CConfig{SDA: sda, SCL: scl, Frequency: cfg.Hz}); err != nil {
		return nil, errcode.Wrap(errcode.BusFault, "configure", err)
	}
	if rp2Buses[cfg.ID] == nil {
		rp2Buses[cfg.ID] = &rp2Bus{hw: hw}
	}
	return rp2Buses[cfg.ID], nil
}

func (b *rp2Bus) Tx(addr uint16, w, r []byte) error {
	return Absent("i2c tx", b.hw.Tx(addr, w, r))
}
