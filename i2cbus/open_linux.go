//go:build linux && !tinygo

package i2cbus

import (
	"runtime"
	"strconv"
	"sync"
	"unsafe"

	"periphkit-go/errcode"

	"golang.org/x/sys/unix"
	"tinygo.org/x/drivers"
)

// Linux i2c-dev ioctl surface (linux/i2c-dev.h, linux/i2c.h).
const (
	i2cRdWr      = 0x0707
	i2cFlagRead  = 0x0001
	devicePrefix = "/dev/i2c-"
)

type i2cMsg struct {
	Addr  uint16
	Flags uint16
	Len   uint16
	Buf   uintptr
}

type i2cRdWrData struct {
	Msgs  uintptr
	NMsgs uint32
}

// linuxBus drives /dev/i2c-N with combined I2C_RDWR transfers so a register
// write and the following read share one repeated-start transaction.
type linuxBus struct {
	mu sync.Mutex
	fd int
	id int
}

var (
	linuxMu    sync.Mutex
	linuxBuses = map[int]*linuxBus{}
)

// Bus numbers are kernel adapter numbers; SDA/SCL/Hz are fixed by the
// device tree and ignored here.
func openPlatform(cfg Config) (drivers.I2C, error) {
	linuxMu.Lock()
	defer linuxMu.Unlock()
	if b := linuxBuses[cfg.ID]; b != nil {
		return b, nil
	}
	fd, err := unix.Open(devicePrefix+strconv.Itoa(cfg.ID), unix.O_RDWR|unix.O_NOCTTY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, errcode.Wrap(errcode.UnknownBus, "open "+devicePrefix+strconv.Itoa(cfg.ID), err)
	}
	b := &linuxBus{fd: fd, id: cfg.ID}
	linuxBuses[cfg.ID] = b
	return b, nil
}

func (b *linuxBus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var msgs [2]i2cMsg
	n := 0
	if len(w) > 0 {
		msgs[n] = i2cMsg{Addr: addr, Len: uint16(len(w)), Buf: uintptr(unsafe.Pointer(&w[0]))}
		n++
	}
	if len(r) > 0 {
		msgs[n] = i2cMsg{Addr: addr, Flags: i2cFlagRead, Len: uint16(len(r)), Buf: uintptr(unsafe.Pointer(&r[0]))}
		n++
	}
	if n == 0 {
		return nil
	}
	data := i2cRdWrData{Msgs: uintptr(unsafe.Pointer(&msgs[0])), NMsgs: uint32(n)}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(b.fd), i2cRdWr, uintptr(unsafe.Pointer(&data)))

	runtime.KeepAlive(&msgs)
	runtime.KeepAlive(w)
	runtime.KeepAlive(r)

	if errno != 0 {
		return classifyErrno(errno)
	}
	return nil
}

// classifyErrno maps adapter errors: ENXIO/EREMOTEIO are the documented
// no-ACK codes, and several adapters report EIO for the same condition.
func classifyErrno(errno unix.Errno) error {
	switch errno {
	case unix.ENXIO, unix.EREMOTEIO, unix.EIO:
		return Absent("i2c tx", errno)
	default:
		return Fault("i2c tx", errno)
	}
}

// Close releases the adapter. Subsequent Open calls reopen it.
func (b *linuxBus) Close() error {
	linuxMu.Lock()
	delete(linuxBuses, b.id)
	linuxMu.Unlock()
	return unix.Close(b.fd)
}
