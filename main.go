package main

import (
	"time"

	"periphkit-go/boards"
	"periphkit-go/sensors/climate"
	"periphkit-go/x/conv"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot")

	board := boards.NanoMaker
	cfg := climate.DefaultConfig()
	cfg.I2C = board.I2C()
	cfg.ShowWarnings = false
	sensor, err := climate.New(cfg)
	if err != nil {
		println("climate:", err.Error())
		return
	}
	println("board", board.Name)

	tick := time.NewTicker(1 * time.Second)
	defer tick.Stop()

	for t := range tick.C {
		r, ok, err := sensor.Read()
		switch {
		case err != nil:
			println(t.Format("15:04:05"), "climate error:", err.Error())
		case !ok:
			println(t.Format("15:04:05"), "climate: not connected")
		default:
			println(t.Format("15:04:05"), conv.Deci(r.DeciCelsius), "C", conv.Deci(r.DeciRelHumidity), "%RH")
		}
	}
}
