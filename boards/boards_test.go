package boards

import (
	"errors"
	"testing"

	"periphkit-go/errcode"
)

func TestIdentify(t *testing.T) {
	cases := []struct {
		uid  []byte
		want string
	}{
		{[]byte{0xE6, 0x61, 0x1C, 0x08, 0xCB, 0x12, 0x34, 0x56}, "rp_nano_maker"},
		{[]byte{0xE6, 0x61, 0x64, 0x00}, "pico_w"},
		{[]byte{0xE6, 0x60, 0x54, 0x99}, "pico"},
	}
	for _, c := range cases {
		p, err := Identify(c.uid)
		if err != nil || p.Name != c.want {
			t.Errorf("% X: got %q, %v; want %q", c.uid, p.Name, err, c.want)
		}
	}
}

func TestIdentifyUnknown(t *testing.T) {
	for _, uid := range [][]byte{nil, {0x50, 0x30}, {0xE6, 0x61}} {
		_, err := Identify(uid)
		if !errors.Is(err, errcode.UnknownBoard) {
			t.Errorf("% X: err = %v", uid, err)
		}
	}
}

func TestNanoMakerGPIO(t *testing.T) {
	cases := map[int]int{0: 0, 9: 9, 10: 17, 11: 19, 12: 16, 13: 18, 17: 29, 18: 12, 21: 15}
	for pin, want := range cases {
		g, err := NanoMaker.GPIO(pin)
		if err != nil || g != want {
			t.Errorf("pin %d: got %d, %v; want %d", pin, g, err, want)
		}
	}
	if _, err := NanoMaker.GPIO(22); errcode.Of(err) != errcode.UnknownPin {
		t.Errorf("pin 22: err = %v", err)
	}
}

func TestPicoPowerPins(t *testing.T) {
	for _, pin := range []int{3, 13, 30, 35, 36, 38, 40, 41, 0} {
		if _, err := PicoW.GPIO(pin); errcode.Of(err) != errcode.UnknownPin {
			t.Errorf("pin %d: err = %v", pin, err)
		}
	}
	if g, err := Pico.GPIO(34); err != nil || g != 28 {
		t.Errorf("pin 34: got %d, %v", g, err)
	}
}

func TestI2CPlan(t *testing.T) {
	c := NanoMaker.I2C()
	if c.SDA != 12 || c.SCL != 13 || c.Hz == 0 {
		t.Fatalf("plan = %+v", c)
	}
	// GP12/GP13 are header 18/19 on the Nano Maker
	if g, _ := NanoMaker.GPIO(18); g != c.SDA {
		t.Fatalf("SDA header mismatch: %d", g)
	}
}

func TestByName(t *testing.T) {
	if p, err := ByName("pico"); err != nil || p.Name != "pico" {
		t.Fatalf("got %q, %v", p.Name, err)
	}
	if _, err := ByName("uno"); errcode.Of(err) != errcode.UnknownBoard {
		t.Fatalf("err = %v", err)
	}
}
