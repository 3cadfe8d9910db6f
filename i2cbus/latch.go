package i2cbus

import (
	"errors"

	"tinygo.org/x/drivers"
)

// Latch is a hot-swappable drivers.I2C shim. Chip drivers are constructed
// once against the Latch; the owning controller rebinds it whenever the
// real bus is (re)opened.
//
// Many third-party chip drivers discard Tx errors. Latch keeps the first
// error seen since the last Reset so a caller can still tell that an
// operation failed. After the first error, further transfers are skipped
// and return the same error.
type Latch struct {
	bus drivers.I2C
	err error
}

var _ drivers.I2C = (*Latch)(nil)

// Bind points the shim at bus and clears any latched error.
func (l *Latch) Bind(bus drivers.I2C) {
	l.bus = bus
	l.err = nil
}

// Bound reports whether a bus is attached.
func (l *Latch) Bound() bool { return l.bus != nil }

func (l *Latch) Tx(addr uint16, w, r []byte) error {
	if l.err != nil {
		return l.err
	}
	if l.bus == nil {
		l.err = Fault("latch", errUnbound)
		return l.err
	}
	if err := l.bus.Tx(addr, w, r); err != nil {
		l.err = err
		// Leave r zeroed so drivers that ignore the error read nothing stale.
		clear(r)
		return err
	}
	return nil
}

// Err returns the first error since the last Reset or Bind.
func (l *Latch) Err() error { return l.err }

// Reset clears the latched error.
func (l *Latch) Reset() { l.err = nil }

// Run clears the latch and runs fn. A latched bus error takes precedence
// over fn's own error. Chip drivers that trust zeroed reads can panic
// (division by a zero calibration word); when a bus error is latched such a
// panic is converted into that error, otherwise it is re-raised.
func (l *Latch) Run(fn func() error) (err error) {
	l.err = nil
	defer func() {
		if p := recover(); p != nil {
			if l.err == nil {
				panic(p)
			}
			err = l.err
		}
	}()
	err = fn()
	if l.err != nil {
		return l.err
	}
	return err
}

var errUnbound = errors.New("bus not bound")
