package oled

import (
	"testing"
	"time"

	"periphkit-go/i2cbus/i2cfake"
	"periphkit-go/i2cdev"
)

type panel struct{}

func (panel) Tx(w, r []byte) error { return nil }

func newDisplay(t *testing.T, bus *i2cfake.Bus) *Display {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Shared = bus
	cfg.Sleep = func(time.Duration) {}
	d, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func lastFrame(b *i2cfake.Bus) []byte {
	var frame []byte
	for _, w := range b.Writes(Address) {
		if len(w) > 2 && w[0] == 0x40 {
			frame = w[1:]
		}
	}
	return frame
}

func TestShowPushesFrame(t *testing.T) {
	b := i2cfake.New()
	b.Attach(Address, panel{})
	d := newDisplay(t, b)

	d.SetPixel(0, 0, true)
	d.SetPixel(3, 9, true)
	d.SetPixel(-1, 0, true)
	d.SetPixel(128, 0, true)
	if ok, err := d.Show(); !ok || err != nil {
		t.Fatalf("ok=%v err=%v", ok, err)
	}

	frame := lastFrame(b)
	if len(frame) != 128*64/8 {
		t.Fatalf("frame len = %d", len(frame))
	}
	if frame[0] != 0x01 {
		t.Fatalf("frame[0] = %08b", frame[0])
	}
	// row 9 is bit 1 of page 1
	if frame[128+3] != 0x02 {
		t.Fatalf("frame[131] = %08b", frame[128+3])
	}
	if !d.Pixel(3, 9) || d.Pixel(4, 9) {
		t.Fatal("pixel readback")
	}
}

func TestFill(t *testing.T) {
	b := i2cfake.New()
	b.Attach(Address, panel{})
	d := newDisplay(t, b)

	d.Fill(true)
	d.SetPixel(127, 63, false)
	d.Show()
	frame := lastFrame(b)
	if frame[0] != 0xFF || frame[len(frame)-1] != 0x7F {
		t.Fatalf("first=%02X last=%02X", frame[0], frame[len(frame)-1])
	}
}

func TestFrameSurvivesUnplug(t *testing.T) {
	b := i2cfake.New()
	d := newDisplay(t, b)

	d.SetPixel(5, 0, true)
	if ok, err := d.Show(); ok || err != nil {
		t.Fatalf("absent: ok=%v err=%v", ok, err)
	}
	// first call: multiplexer probe scan plus device probe scan
	if b.Count(Address) != 2 {
		t.Fatalf("absent panel got %d transactions", b.Count(Address))
	}
	b.ClearLog()
	if ok, err := d.Show(); ok || err != nil {
		t.Fatalf("still absent: ok=%v err=%v", ok, err)
	}
	// multiplexer result is cached, only the device probe remains
	if b.Count(Address) != 1 {
		t.Fatalf("second absent call got %d transactions", b.Count(Address))
	}

	b.Attach(Address, panel{})
	if ok, err := d.Show(); !ok || err != nil {
		t.Fatalf("plugged: ok=%v err=%v", ok, err)
	}
	if lastFrame(b)[5] != 0x01 {
		t.Fatal("frame lost")
	}

	b.Detach(Address)
	if ok, err := d.Show(); ok || err != nil {
		t.Fatalf("unplugged: ok=%v err=%v", ok, err)
	}
	if d.Controller().State() != i2cdev.NeedsInit {
		t.Fatal("state not reset")
	}
}

func TestBadSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Panel.Height = 30
	if _, err := New(cfg); err != ErrSize {
		t.Fatalf("err = %v", err)
	}
}

func TestSize(t *testing.T) {
	d := newDisplay(t, i2cfake.New())
	if w, h := d.Size(); w != 128 || h != 64 {
		t.Fatalf("size = %dx%d", w, h)
	}
}

// contrasts returns the levels sent after SETCONTRAST commands.
func contrasts(b *i2cfake.Bus) []byte {
	var out []byte
	for _, w := range b.Writes(Address) {
		if len(w) == 3 && w[0] == 0x00 && w[1] == 0x81 {
			out = append(out, w[2])
		}
	}
	return out
}

func TestFade(t *testing.T) {
	b := i2cfake.New()
	b.Attach(Address, panel{})
	d := newDisplay(t, b)
	d.Show()
	b.ClearLog()

	if ok, err := d.Fade(0x0F, 80*time.Millisecond, 4); !ok || err != nil {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	got := contrasts(b)
	// 0xCF down to 0x0F in four even steps
	want := []byte{0x9F, 0x6F, 0x3F, 0x0F}
	if string(got) != string(want) {
		t.Fatalf("levels = % X, want % X", got, want)
	}
	if d.Contrast() != 0x0F {
		t.Fatalf("contrast = %#x", d.Contrast())
	}
}

func TestContrastReappliedAfterReplug(t *testing.T) {
	b := i2cfake.New()
	b.Attach(Address, panel{})
	d := newDisplay(t, b)
	d.SetContrast(0x20)

	b.Detach(Address)
	d.Show()
	b.Attach(Address, panel{})
	b.ClearLog()
	if ok, err := d.Show(); !ok || err != nil {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	got := contrasts(b)
	if len(got) < 2 || got[len(got)-1] != 0x20 {
		t.Fatalf("levels after replug = % X", got)
	}
}

func TestFadeStopsWhenUnplugged(t *testing.T) {
	b := i2cfake.New()
	d := newDisplay(t, b)
	if ok, err := d.Fade(0x10, time.Second, 10); ok || err != nil {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	// one guarded call: multiplexer probe scan plus device probe scan
	if b.Count(Address) != 2 {
		t.Fatalf("transactions = %d", b.Count(Address))
	}
}
