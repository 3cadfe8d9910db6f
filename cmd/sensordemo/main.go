// cmd/sensordemo polls every supported peripheral on one bus and logs what
// it sees. Unplug and replug devices while it runs to watch them drop out
// and come back.
package main

import (
	"flag"
	"os"
	"time"

	"periphkit-go/actuators/oled"
	"periphkit-go/i2cbus"
	"periphkit-go/i2cdev"
	"periphkit-go/sensors/barometer"
	"periphkit-go/sensors/climate"
	"periphkit-go/sensors/compass"
	"periphkit-go/sensors/gesture"
	"periphkit-go/sensors/tof"
	"periphkit-go/x/logx"

	"github.com/sirupsen/logrus"
)

func main() {
	busID := flag.Int("bus", 1, "bus number (/dev/i2c-N)")
	channel := flag.Int("channel", int(i2cdev.NoChannel), "multiplexer channel 0..7 (255: none)")
	interval := flag.Duration("interval", time.Second, "poll interval")
	quiet := flag.Bool("quiet", false, "suppress absence warnings")
	logx.InitParam()
	flag.Parse()

	root := logx.New(logrus.InfoLevel)
	log := logx.Prefix(root, "demo")

	plan := i2cbus.DefaultConfig()
	plan.ID = *busID
	bus, err := i2cbus.Open(plan)
	if err != nil {
		log.WithError(err).Error("open failed")
		os.Exit(1)
	}

	base := i2cdev.DefaultConfig()
	base.I2C = plan
	base.Shared = bus
	base.Channel = i2cdev.Channel(*channel)
	base.ShowWarnings = !*quiet
	base.Logger = root

	polls, err := build(base)
	if err != nil {
		log.WithError(err).Error("setup failed")
		os.Exit(1)
	}
	log.WithField("devices", len(polls)).Info("polling")

	tick := time.NewTicker(*interval)
	defer tick.Stop()
	for range tick.C {
		for _, p := range polls {
			p(log)
		}
	}
}

type poll func(log *logrus.Entry)

func build(base i2cdev.Config) ([]poll, error) {
	var polls []poll

	tcfg := tof.DefaultConfig()
	tcfg.Config = base
	t, err := tof.New(tcfg)
	if err != nil {
		return nil, err
	}
	polls = append(polls, func(log *logrus.Entry) {
		mm, ok, err := t.Distance()
		report(log, "tof", ok, err, logrus.Fields{"mm": mm})
	})

	bcfg := barometer.DefaultConfig()
	bcfg.Config = base
	b, err := barometer.New(bcfg)
	if err != nil {
		return nil, err
	}
	polls = append(polls, func(log *logrus.Entry) {
		c, ok, err := b.Temperature()
		if !ok || err != nil {
			report(log, "barometer", ok, err, nil)
			return
		}
		pa, ok, err := b.Pressure()
		report(log, "barometer", ok, err, logrus.Fields{"celsius": c, "pa": pa})
	})

	ccfg := compass.DefaultConfig()
	ccfg.Config = base
	m, err := compass.New(ccfg)
	if err != nil {
		return nil, err
	}
	polls = append(polls, func(log *logrus.Entry) {
		h, ok, err := m.Heading()
		report(log, "compass", ok, err, logrus.Fields{"heading": h})
	})

	gcfg := gesture.DefaultConfig()
	gcfg.Config = base
	g, err := gesture.New(gcfg)
	if err != nil {
		return nil, err
	}
	polls = append(polls, func(log *logrus.Entry) {
		p, ok, err := g.Proximity()
		report(log, "gesture", ok, err, logrus.Fields{"proximity": p})
	})

	kcfg := climate.DefaultConfig()
	kcfg.Config = base
	k, err := climate.New(kcfg)
	if err != nil {
		return nil, err
	}

	ocfg := oled.DefaultConfig()
	ocfg.Config = base
	d, err := oled.New(ocfg)
	if err != nil {
		return nil, err
	}

	polls = append(polls, func(log *logrus.Entry) {
		r, ok, err := k.Read()
		report(log, "climate", ok, err, logrus.Fields{"celsius": r.Celsius(), "rh": r.Humidity()})
		if ok {
			bar(d, r.DeciCelsius)
		}
	})
	return polls, nil
}

// bar draws temperature as a horizontal bar, 0..50 °C across the panel.
func bar(d *oled.Display, deciC int32) {
	w, h := d.Size()
	n := int16(int32(w) * deciC / 500)
	d.Fill(false)
	for x := int16(0); x < n && x < w; x++ {
		for y := h/2 - 4; y < h/2+4; y++ {
			d.SetPixel(x, y, true)
		}
	}
	d.Show()
}

func report(log *logrus.Entry, name string, ok bool, err error, f logrus.Fields) {
	e := log.WithField("device", name)
	switch {
	case err != nil:
		e.WithError(err).Error("read failed")
	case !ok:
		e.Debug("not present")
	default:
		e.WithFields(f).Info("reading")
	}
}
