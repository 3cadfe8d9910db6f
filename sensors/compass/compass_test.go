package compass

import (
	"testing"
	"time"

	"periphkit-go/i2cbus/i2cfake"
	"periphkit-go/i2cdev"
)

func newChip() *i2cfake.Regs {
	r := i2cfake.NewRegs()
	r.Set(0x0D, 0xFF) // chip id
	r.Set(0x06, 0x01) // data ready
	return r
}

func setField(r *i2cfake.Regs, x, y, z int16) {
	r.Set(0x00, byte(x), byte(x>>8), byte(y), byte(y>>8), byte(z), byte(z>>8))
}

func newSensor(t *testing.T, bus *i2cfake.Bus, ch i2cdev.Channel) *Sensor {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Shared = bus
	cfg.Channel = ch
	cfg.Chip.Sleep = func(time.Duration) {}
	s, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestMagneticAndHeading(t *testing.T) {
	b := i2cfake.New()
	r := newChip()
	setField(r, 0, 6000, -12000)
	b.Attach(Address, r)
	s := newSensor(t, b, i2cdev.NoChannel)

	f, ok, err := s.Magnetic()
	if !ok || err != nil {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if f != (Field{X: 0, Y: 0.5, Z: -1}) {
		t.Fatalf("field = %+v", f)
	}
	if got := r.Get(0x09); got != 0b10_00_11_01 {
		t.Fatalf("control1 = %08b", got)
	}

	h, ok, err := s.Heading()
	if !ok || err != nil || h != 90 {
		t.Fatalf("heading=%v ok=%v err=%v", h, ok, err)
	}
}

func TestHeadingWraps(t *testing.T) {
	cases := []struct {
		f    Field
		want float32
	}{
		{Field{X: 1}, 0},
		{Field{X: -1}, 180},
		{Field{Y: -1}, 270},
	}
	for _, c := range cases {
		if got := c.f.Heading(); got != c.want {
			t.Errorf("%+v: heading %v want %v", c.f, got, c.want)
		}
	}
}

func TestAbsentBehindMux(t *testing.T) {
	b := i2cfake.New()
	b.AddMux(i2cdev.DefaultMuxAddress)
	r := newChip()
	b.AttachAt(6, Address, r) // wired to 6, configured for 2
	s := newSensor(t, b, 2)

	if _, ok, err := s.Heading(); ok || err != nil {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	b.DetachAt(6, Address)
	b.AttachAt(2, Address, r)
	if _, ok, err := s.Heading(); !ok || err != nil {
		t.Fatalf("after rewiring: ok=%v err=%v", ok, err)
	}
}
