package gesture

import (
	"testing"
	"time"

	"periphkit-go/i2cbus/i2cfake"
	"periphkit-go/i2cdev"

	"tinygo.org/x/drivers/apds9960"
)

type fifo struct {
	sets [][4]byte
	pos  [4]int
}

func (f *fifo) next(lane int) byte {
	i := f.pos[lane]
	if i >= len(f.sets) {
		return 0
	}
	f.pos[lane]++
	return f.sets[i][lane]
}

func newChip(f *fifo) *i2cfake.Regs {
	r := i2cfake.NewRegs()
	r.Set(apds9960.APDS9960_ID_REG, 0xAB)
	r.Set(apds9960.APDS9960_STATUS_REG, 0x03) // PVALID | AVALID
	// clear 1000, red 300, green 200, blue 100
	r.Set(apds9960.APDS9960_CDATAL_REG, 0xE8, 0x03, 0x2C, 0x01, 0xC8, 0x00, 0x64, 0x00)
	r.Set(apds9960.APDS9960_PDATA_REG, 55)
	r.OnRead = func(reg uint16) (byte, bool) {
		if f == nil {
			return 0, false
		}
		switch reg {
		case apds9960.APDS9960_GSTATUS_REG:
			return 0x01, true
		case apds9960.APDS9960_GFLVL_REG:
			return byte(len(f.sets)), true
		case apds9960.APDS9960_GFIFO_U_REG, apds9960.APDS9960_GFIFO_D_REG,
			apds9960.APDS9960_GFIFO_L_REG, apds9960.APDS9960_GFIFO_R_REG:
			return f.next(int(reg - apds9960.APDS9960_GFIFO_U_REG)), true
		}
		return 0, false
	}
	return r
}

func newSensor(t *testing.T, bus *i2cfake.Bus) *Sensor {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Shared = bus
	cfg.Sleep = func(time.Duration) {}
	s, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestColor(t *testing.T) {
	b := i2cfake.New()
	r := newChip(nil)
	b.Attach(Address, r)
	s := newSensor(t, b)

	c, ok, err := s.Color()
	if !ok || err != nil {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if c != (Color{R: 300, G: 200, B: 100, Clear: 1000}) {
		t.Fatalf("color = %+v", c)
	}
	// PON | AEN | WEN
	if got := r.Get(apds9960.APDS9960_ENABLE_REG); got != 0b0000_1011 {
		t.Fatalf("enable = %08b", got)
	}
}

func TestProximitySwitchesEngine(t *testing.T) {
	b := i2cfake.New()
	r := newChip(nil)
	b.Attach(Address, r)
	s := newSensor(t, b)

	s.Color()
	p, ok, err := s.Proximity()
	if !ok || err != nil || p != 200 {
		t.Fatalf("p=%d ok=%v err=%v", p, ok, err)
	}
	// PON | PEN | WEN
	if got := r.Get(apds9960.APDS9960_ENABLE_REG); got != 0b0000_1101 {
		t.Fatalf("enable = %08b", got)
	}
}

func TestColorNotReady(t *testing.T) {
	b := i2cfake.New()
	r := newChip(nil)
	r.Set(apds9960.APDS9960_STATUS_REG, 0x00)
	b.Attach(Address, r)
	s := newSensor(t, b)

	_, ok, err := s.Color()
	if ok || err != ErrNotReady {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if s.Controller().State() != i2cdev.Ready {
		t.Fatal("timeout treated as absence")
	}
}

func TestGestureLeft(t *testing.T) {
	f := &fifo{sets: [][4]byte{
		{0, 0, 0, 0},
		{40, 50, 100, 0},
		{50, 40, 0, 100},
		{0, 0, 0, 0},
	}}
	b := i2cfake.New()
	b.Attach(Address, newChip(f))
	s := newSensor(t, b)

	g, ok, err := s.Gesture()
	if !ok || err != nil || g != Left {
		t.Fatalf("g=%v ok=%v err=%v", g, ok, err)
	}
	if g.String() != "left" {
		t.Fatalf("String = %q", g.String())
	}
}

func TestGestureNoneWhenFIFOEmpty(t *testing.T) {
	b := i2cfake.New()
	b.Attach(Address, newChip(&fifo{}))
	s := newSensor(t, b)

	g, ok, err := s.Gesture()
	if !ok || err != nil || g != None {
		t.Fatalf("g=%v ok=%v err=%v", g, ok, err)
	}
}

func TestUnplugged(t *testing.T) {
	b := i2cfake.New()
	chip := newChip(nil)
	b.Attach(Address, chip)
	s := newSensor(t, b)
	s.Color()

	b.Detach(Address)
	if _, ok, err := s.Color(); ok || err != nil {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	b.Attach(Address, chip)
	if _, ok, err := s.Proximity(); !ok || err != nil {
		t.Fatalf("replugged: ok=%v err=%v", ok, err)
	}
}
