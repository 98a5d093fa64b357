// eload-monitor follows the electronic load's USB-serial console. It never
// writes to the device.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"golang.org/x/sync/errgroup"

	"eload/config"
	"eload/core"
	"eload/host/monitor"
	"eload/host/serial"
)

var (
	device     = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud       = flag.Int("baud", 0, "Baud rate (default: console.baud from -config, else 115200)")
	configPath = flag.String("config", "", "Board config (board.yaml) to take the console baud from")
	asCSV      = flag.Bool("csv", false, "Print measurements as CSV instead of echoing the console")
	level      = flag.String("level", "info", "Lowest console level to echo (error, warn, info, debug)")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	lvl, err := core.ParseLevel(*level)
	if err != nil {
		return err
	}

	cfg := serial.DefaultConfig(*device)
	if *configPath != "" {
		board, err := config.LoadFile(*configPath)
		if err != nil {
			return err
		}
		cfg.Baud = board.Console.Baud
	}
	if *baud != 0 {
		cfg.Baud = *baud
	}

	port, err := serial.Open(cfg)
	if err != nil {
		return err
	}
	defer port.Close()

	if !*asCSV {
		fmt.Fprintf(os.Stderr, "Following %s at %d baud, Ctrl-C to stop\n", cfg.Device, cfg.Baud)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	lines := make(chan monitor.Line, 32)
	printer := monitor.NewPrinter(os.Stdout, lvl, *asCSV)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(lines)
		return monitor.Scanner{Follow: true}.Run(ctx, port, lines)
	})
	g.Go(func() error {
		for l := range lines {
			if err := printer.Print(l); err != nil {
				return err
			}
		}
		return nil
	})
	return g.Wait()
}
