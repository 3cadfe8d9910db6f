//go:build !(rp2040 || rp2350) && !(linux && !tinygo)

package i2cbus

import (
	"periphkit-go/errcode"

	"tinygo.org/x/drivers"
)

func openPlatform(Config) (drivers.I2C, error) {
	return nil, errcode.Unsupported
}
