//go:build rp2040

package main

import (
	_ "embed"
	"machine"
	"time"

	"eload/app"
	"eload/config"
	"eload/core"
)

//go:embed board.yaml
var boardYAML []byte

// version is set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Clear any watchdog left running by a previous image
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	InitUSB()
	console := usbConsole{}

	cfg, err := config.Parse(boardYAML)
	if err != nil {
		halt(core.NewConsole(console, nil, core.LevelError), "board.yaml: %v", err)
	}

	load := app.New(cfg, app.Board{
		GPIO: NewRPGPIODriver(),
		I2C: NewRPI2CDriver(map[core.I2CBusID]I2CPins{
			core.I2CBusID(cfg.I2C.Bus): {
				SDA: machine.Pin(cfg.I2C.SDAPin),
				SCL: machine.Pin(cfg.I2C.SCLPin),
			},
		}),
		NewPanel: newSSD1306Panel,
		Console:  console,
		Clock:    HardwareClock{},
	}, version)

	if err := load.Run(); err != nil {
		halt(load.Console(), "bring-up: %v", err)
	}
}

// halt parks the firmware after a fatal error, repeating the reason so a
// console attached later still sees it.
func halt(console *core.Console, format string, args ...interface{}) {
	for {
		console.Errorf(format, args...)
		time.Sleep(5 * time.Second)
	}
}
