package i2cdev

import (
	"errors"
	"sort"

	"periphkit-go/errcode"
	"periphkit-go/x/conv"

	"tinygo.org/x/drivers"
)

// Valid 7-bit addresses; 0x00-0x07 and 0x78-0x7F are reserved.
const (
	scanFirst = 0x08
	scanLast  = 0x77
)

// IsAbsent reports whether err means the target did not acknowledge.
func IsAbsent(err error) bool {
	return errors.Is(err, errcode.DeviceAbsent)
}

// Scan returns every address that acknowledges a one-byte read, ascending.
// The result is never nil. A failure other than absence aborts the scan.
func Scan(bus drivers.I2C) ([]uint16, error) {
	return scan(bus, IsAbsent)
}

func scan(bus drivers.I2C, absent func(error) bool) ([]uint16, error) {
	found := make([]uint16, 0, 4)
	var probe [1]byte
	for a := uint16(scanFirst); a <= scanLast; a++ {
		err := bus.Tx(a, nil, probe[:])
		switch {
		case err == nil:
			found = append(found, a)
		case absent(err):
		default:
			return nil, err
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i] < found[j] })
	return found, nil
}

// IsAddressVisible reports whether addr is in a fresh Scan.
func IsAddressVisible(bus drivers.I2C, addr uint16) (bool, error) {
	return visible(bus, addr, IsAbsent)
}

func visible(bus drivers.I2C, addr uint16, absent func(error) bool) (bool, error) {
	found, err := scan(bus, absent)
	if err != nil {
		return false, err
	}
	i := sort.Search(len(found), func(i int) bool { return found[i] >= addr })
	return i < len(found) && found[i] == addr, nil
}

// FormatAddresses renders addresses as 0x.. labels.
func FormatAddresses(addrs []uint16) []string {
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = conv.AddrHex(a)
	}
	return out
}
