// Command servoctl is an interactive terminal tool for jogging a single
// LewanSoul servo: connect to a bus, then use arrow keys to nudge the
// target angle and watch telemetry update live.
//
// Its CLI shape — flag parsing, a colorized logger, an interactive
// single-keypress loop — follows the teacher's root main.go and
// ui/keyboard.go.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/eiannone/keyboard"

	"github.com/CK6170/lewanbus/codec"
	"github.com/CK6170/lewanbus/internal/config"
	"github.com/CK6170/lewanbus/internal/ui"
	"github.com/CK6170/lewanbus/servobus"
	"github.com/CK6170/lewanbus/transport/serialsink"
)

const jogStep = 5.0 // degrees per arrow-key press

func main() {
	var (
		configPath  = flag.String("config", "", "path to a JSON bus config (see internal/config)")
		port        = flag.String("port", "", "serial port device (overrides -config and the port cache)")
		baud        = flag.Int("baud", 115200, "baud rate")
		id          = flag.Int("id", 1, "servo id to jog")
		discardEcho = flag.Bool("discard-echo", false, "discard the locally echoed copy of every transmitted frame")
		listPorts   = flag.Bool("list-ports", false, "list available serial ports and exit")
		portCache   = flag.String("port-cache", "", "path to a JSON file remembering the last working port per bus config (disabled if empty)")
	)
	flag.Parse()

	log.SetFlags(0)
	log.SetOutput(ui.RedWriter{W: os.Stderr})

	portName := *port
	baudRate := *baud
	echo := *discardEcho
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
		if portName == "" {
			portName = cfg.Port
		}
		baudRate = cfg.Baud
		echo = cfg.DiscardEcho
	}
	var cache *config.PortCache
	cacheKey := config.BusKey(baudRate, []int{*id})
	if *portCache != "" {
		cache = config.NewPortCache(*portCache)
		if portName == "" {
			portName = cache.Get(cacheKey)
		}
	}

	if *listPorts {
		for _, p := range serialsink.ListPorts(portName) {
			fmt.Println(p)
		}
		return
	}

	if portName == "" {
		log.Fatal("no port given: pass -port, -config, or rely on a previously cached -port-cache entry")
	}

	sink, err := serialsink.Open(serialsink.Config{
		Name:        portName,
		Baud:        baudRate,
		ReadTimeout: 300 * time.Millisecond,
	})
	if err != nil {
		log.Fatalf("opening %s: %v", portName, err)
	}
	if cache != nil {
		cache.Set(cacheKey, portName)
	}

	bus := servobus.NewBus(sink, servobus.WithDiscardEcho(echo))
	defer func() { _ = bus.Close() }()

	servoID := uint8(*id)
	target, err := bus.PosRead(servoID)
	if err != nil {
		log.Fatalf("reading initial position: %v", err)
	}
	ui.Greenf("servoctl: jogging servo %d on %s (current angle %.2f°)\n", servoID, portName, target)
	ui.Greenf("Arrow Up/Down to jog %.0f°, Q/Esc to quit.\n", jogStep)

	if err := keyboard.Open(); err != nil {
		log.Fatalf("opening keyboard: %v", err)
	}
	defer func() { _ = keyboard.Close() }()

	for {
		ch, key, err := keyboard.GetKey()
		if err != nil {
			log.Fatalf("reading key: %v", err)
		}
		if ch == 'q' || ch == 'Q' {
			return
		}
		switch key {
		case keyboard.KeyArrowUp:
			target += jogStep
		case keyboard.KeyArrowDown:
			target -= jogStep
		case keyboard.KeyEsc, keyboard.KeyCtrlC:
			return
		default:
			continue
		}
		if err := bus.MoveTimeWrite(servoID, target, 300*time.Millisecond); err != nil {
			ui.Warningf("move failed: %v\n", err)
			continue
		}
		angle, err := bus.PosRead(servoID)
		if err != nil {
			ui.Warningf("read failed: %v\n", err)
			continue
		}
		volts, _ := bus.VinRead(servoID)
		tempC, _ := bus.TempRead(servoID, codec.Celsius)
		ui.Greenf("\rtarget=%.1f° actual=%.2f° vin=%.2fV temp=%.0f°C   ", target, angle, volts, tempC)
	}
}
