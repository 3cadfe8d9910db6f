// Package i2cfake provides an in-memory I2C bus for tests: register-file
// targets, an optional TCA9548-style multiplexer, hot plug/unplug and
// fault injection. Every transaction is recorded.
package i2cfake

import (
	"errors"
	"sync"

	"periphkit-go/i2cbus"

	"tinygo.org/x/drivers"
)

// ErrNack is the cause carried by DeviceAbsent errors from the fake.
var ErrNack = errors.New("i2cfake: no ack")

// Target is one device on the fake bus.
type Target interface {
	Tx(w, r []byte) error
}

// Record is one logged transaction.
type Record struct {
	Addr uint16
	W    []byte
	R    int
}

// Bus is a fake drivers.I2C. The zero value is not usable; call New.
type Bus struct {
	mu sync.Mutex

	root map[uint16]Target

	muxAddr  uint16
	muxOn    bool
	muxMask  byte
	segments [8]map[uint16]Target

	faults map[uint16]error

	Log []Record
}

var _ drivers.I2C = (*Bus)(nil)

func New() *Bus {
	b := &Bus{
		root:   make(map[uint16]Target),
		faults: make(map[uint16]error),
	}
	for i := range b.segments {
		b.segments[i] = make(map[uint16]Target)
	}
	return b
}

// Attach plugs t in at addr on the main bus.
func (b *Bus) Attach(addr uint16, t Target) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.root[addr] = t
}

// Detach unplugs whatever answers at addr on the main bus.
func (b *Bus) Detach(addr uint16) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.root, addr)
}

// AddMux plugs a multiplexer in at addr with all segments off.
func (b *Bus) AddMux(addr uint16) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.muxAddr, b.muxOn, b.muxMask = addr, true, 0
}

// RemoveMux unplugs the multiplexer (and with it every segment).
func (b *Bus) RemoveMux() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.muxOn = false
}

// AttachAt plugs t in at addr behind multiplexer segment ch.
func (b *Bus) AttachAt(ch int, addr uint16, t Target) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.segments[ch][addr] = t
}

// DetachAt unplugs addr from segment ch.
func (b *Bus) DetachAt(ch int, addr uint16) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.segments[ch], addr)
}

// MuxMask returns the last control byte written to the multiplexer.
func (b *Bus) MuxMask() byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.muxMask
}

// Fail makes every transaction to addr return err until cleared with nil.
func (b *Bus) Fail(addr uint16, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.faults, addr)
		return
	}
	b.faults[addr] = err
}

// Writes returns the write payloads sent to addr, in order.
func (b *Bus) Writes(addr uint16) [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out [][]byte
	for _, r := range b.Log {
		if r.Addr == addr && len(r.W) > 0 {
			out = append(out, r.W)
		}
	}
	return out
}

// Count returns how many transactions addressed addr.
func (b *Bus) Count(addr uint16) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, r := range b.Log {
		if r.Addr == addr {
			n++
		}
	}
	return n
}

// ClearLog drops the transaction log.
func (b *Bus) ClearLog() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Log = nil
}

func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	b.Log = append(b.Log, Record{Addr: addr, W: append([]byte(nil), w...), R: len(r)})
	if err := b.faults[addr]; err != nil {
		b.mu.Unlock()
		return err
	}
	if b.muxOn && addr == b.muxAddr {
		if len(w) > 0 {
			b.muxMask = w[len(w)-1]
		}
		if len(r) > 0 {
			r[0] = b.muxMask
		}
		b.mu.Unlock()
		return nil
	}
	t := b.lookup(addr)
	b.mu.Unlock()

	if t == nil {
		return i2cbus.Absent("i2cfake tx", ErrNack)
	}
	return t.Tx(w, r)
}

// caller holds lock
func (b *Bus) lookup(addr uint16) Target {
	if t, ok := b.root[addr]; ok {
		return t
	}
	if !b.muxOn {
		return nil
	}
	for ch := 0; ch < 8; ch++ {
		if b.muxMask&(1<<ch) == 0 {
			continue
		}
		if t, ok := b.segments[ch][addr]; ok {
			return t
		}
	}
	return nil
}
