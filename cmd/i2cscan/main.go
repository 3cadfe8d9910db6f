// cmd/i2cscan lists the addresses that answer on a bus, optionally behind
// each channel of a TCA9548A-style multiplexer.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"periphkit-go/i2cbus"
	"periphkit-go/i2cdev"
	"periphkit-go/x/conv"
	"periphkit-go/x/logx"

	"github.com/sirupsen/logrus"
	"tinygo.org/x/drivers"
)

func main() {
	busID := flag.Int("bus", 1, "bus number (/dev/i2c-N)")
	sweep := flag.Bool("mux", false, "also scan every multiplexer channel")
	muxAddr := flag.Uint("muxaddr", uint(i2cdev.DefaultMuxAddress), "multiplexer address")
	logx.InitParam()
	flag.Parse()

	log := logx.Prefix(logx.New(logrus.InfoLevel), "i2cscan")

	cfg := i2cbus.DefaultConfig()
	cfg.ID = *busID
	bus, err := i2cbus.Open(cfg)
	if err != nil {
		log.WithError(err).WithField("bus", *busID).Error("open failed")
		os.Exit(1)
	}

	found, err := i2cdev.Scan(bus)
	if err != nil {
		log.WithError(err).Error("scan failed")
		os.Exit(1)
	}
	report("bus", found)

	if !*sweep {
		return
	}
	mux := uint16(*muxAddr)
	visible, err := i2cdev.IsAddressVisible(bus, mux)
	if err != nil || !visible {
		log.WithField("mux", conv.AddrHex(mux)).WithError(err).Warn("no multiplexer")
		return
	}
	for ch := i2cdev.Channel(0); ch < 8; ch++ {
		if err := sweepChannel(bus, mux, ch); err != nil {
			log.WithError(err).WithField("channel", int(ch)).Error("channel scan failed")
		}
	}
	// leave every segment connected, as the multiplexer powers up
	if err := i2cdev.SelectChannel(bus, mux, i2cdev.NoChannel); err != nil {
		log.WithError(err).Warn("restore failed")
	}
}

func sweepChannel(bus drivers.I2C, mux uint16, ch i2cdev.Channel) error {
	if err := i2cdev.SelectChannel(bus, mux, ch); err != nil {
		return err
	}
	found, err := i2cdev.Scan(bus)
	if err != nil {
		return err
	}
	report(fmt.Sprintf("ch%d", ch), found)
	return nil
}

func report(where string, addrs []uint16) {
	if len(addrs) == 0 {
		fmt.Printf("%-4s (none)\n", where)
		return
	}
	fmt.Printf("%-4s %s\n", where, strings.Join(i2cdev.FormatAddresses(addrs), " "))
}
