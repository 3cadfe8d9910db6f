// Package boards maps the physical pin numbers printed on a board to RP2040
// GPIO numbers, and identifies the board from the chip's unique id.
//
// A Profile is a plain value. Select one once at startup (Identify, or a
// fixed choice) and pass it to whatever needs pin translation.
package boards

import (
	"strings"

	"periphkit-go/errcode"
	"periphkit-go/i2cbus"
	"periphkit-go/x/conv"
)

// Non-GPIO header positions.
const (
	GND  = -1
	RUN  = -2
	NC   = -3
	VCC  = -4
	EN   = -5
	VSYS = -6
	VBUS = -7
)

// Profile describes one board: its name, the header pin table and the
// default i2c0 wiring (GPIO numbers).
type Profile struct {
	Name string
	Pins map[int]int
	I2C0 struct{ SDA, SCL int }
}

// GPIO translates a header pin. Power, ground and unlisted pins are
// reported as errcode.UnknownPin.
func (p Profile) GPIO(pin int) (int, error) {
	g, ok := p.Pins[pin]
	if !ok || g < 0 {
		return 0, &errcode.E{C: errcode.UnknownPin, Op: "gpio", Msg: p.Name}
	}
	return g, nil
}

// I2C returns the board's i2c0 plan with frequency filled in.
func (p Profile) I2C() i2cbus.Config {
	return i2cbus.Config{ID: 0, SDA: p.I2C0.SDA, SCL: p.I2C0.SCL}.WithDefaults()
}

func profile(name string, sda, scl int, pins map[int]int) Profile {
	p := Profile{Name: name, Pins: pins}
	p.I2C0.SDA, p.I2C0.SCL = sda, scl
	return p
}

// NanoMaker is the RP2040 Nano Maker. Header 18/19 carry i2c0.
var NanoMaker = profile("rp_nano_maker", 12, 13, map[int]int{
	0: 0, 1: 1, 2: 2, 3: 3, 4: 4, 5: 5, 6: 6, 7: 7, 8: 8, 9: 9,
	10: 17, 11: 19, 12: 16, 13: 18,
	14: 26, 15: 27, 16: 28, 17: 29,
	18: 12, 19: 13,
	20: 14, // A6
	21: 15, // A7
})

// Pico and Pico W share the 40-pin header.
func picoHeader() map[int]int {
	return map[int]int{
		1: 0, 2: 1, 3: GND, 4: 2, 5: 3, 6: 4, 7: 5, 8: GND,
		9: 6, 10: 7, 11: 8, 12: 9, 13: GND, 14: 10, 15: 11, 16: 12,
		17: 13, 18: GND, 19: 14, 20: 15, 21: 16, 22: 17, 23: GND, 24: 18,
		25: 19, 26: 20, 27: 21, 28: GND, 29: 22, 30: RUN, 31: 26, 32: 27,
		33: GND, 34: 28, 35: NC, 36: VCC, 37: EN, 38: GND, 39: VSYS, 40: VBUS,
	}
}

var (
	PicoW = profile("pico_w", 12, 13, picoHeader())
	Pico  = profile("pico", 12, 13, picoHeader())
)

// ids are matched against the uppercase hex of the flash unique id.
var ids = []struct {
	prefix string
	p      *Profile
}{
	{"E6611C", &NanoMaker},
	{"E66164", &PicoW},
	{"E66054", &Pico},
}

// Identify picks the profile whose id prefix matches uid.
func Identify(uid []byte) (Profile, error) {
	s := conv.BytesHex(uid)
	for _, id := range ids {
		if strings.HasPrefix(s, id.prefix) {
			return *id.p, nil
		}
	}
	return Profile{}, &errcode.E{C: errcode.UnknownBoard, Op: "identify", Msg: s}
}

// ByName looks a profile up by its Name.
func ByName(name string) (Profile, error) {
	for _, id := range ids {
		if id.p.Name == name {
			return *id.p, nil
		}
	}
	return Profile{}, &errcode.E{C: errcode.UnknownBoard, Op: "lookup", Msg: name}
}
