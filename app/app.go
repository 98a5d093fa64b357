// Package app brings the electronic load up: it wires the encoder, the UI
// and the control task to the board's GPIO, I2C bus, display and console,
// then starts every task.
package app

import (
	"errors"
	"fmt"
	"io"

	"tinygo.org/x/drivers"

	"eload/config"
	"eload/core"
	"eload/devices/max11645"
	"eload/devices/mcp4726"
	"eload/display"
	"eload/encoder"
	"eload/load"
	"eload/textui"
)

// PanelFactory initializes the display panel on bus. It runs under the bus
// lock.
type PanelFactory func(bus drivers.I2C, cfg config.DisplayConfig) (display.Panel, error)

// rendererConfig converts the board's cell geometry for the renderer
func rendererConfig(d config.DisplayConfig) display.Config {
	cfg := display.DefaultConfig()
	cfg.CellWidth = int16(d.CellWidth)
	cfg.CellHeight = int16(d.CellHeight)
	cfg.FontOffset = int16(d.FontOffset)
	return cfg
}

// Board is the hardware the target provides
type Board struct {
	GPIO     core.GPIODriver
	I2C      core.I2CDriver
	NewPanel PanelFactory
	Console  io.Writer
	Clock    core.Clock
}

// ElectronicLoad owns every task and the resources they share
type ElectronicLoad struct {
	cfg     config.Config
	board   Board
	version string

	shared  *core.Shared
	console *core.Console
	sched   *core.Scheduler

	encoder *encoder.Encoder
	ui      *textui.TextUI
	load    *load.Load
}

// New creates the load from a validated config. Nothing touches hardware
// until Bringup.
func New(cfg config.Config, board Board, version string) *ElectronicLoad {
	clock := board.Clock
	if clock == nil {
		clock = core.NewSystemClock()
	}
	shared := core.NewShared()
	return &ElectronicLoad{
		cfg:     cfg,
		board:   board,
		version: version,
		shared:  shared,
		console: core.NewConsole(board.Console, shared.Console, cfg.LogLevel()),
		sched:   core.NewScheduler(clock, cfg.Timer.Capacity),
	}
}

// Console returns the shared console logger
func (e *ElectronicLoad) Console() *core.Console {
	return e.console
}

// Bringup joins the I2C bus, initializes the display and the encoder, and
// connects encoder -> UI -> control task. Any error here is fatal.
func (e *ElectronicLoad) Bringup() error {
	e.console.Infof("")
	e.console.Infof("electronic-load-v2 %s", e.version)

	if e.board.GPIO == nil || e.board.I2C == nil || e.board.NewPanel == nil {
		return errors.New("board is missing gpio, i2c or display")
	}

	busID := core.I2CBusID(e.cfg.I2C.Bus)
	var bus drivers.I2C
	err := e.shared.WithBus(func() error {
		if err := e.board.I2C.ConfigureBus(busID, e.cfg.I2C.FrequencyHz); err != nil {
			return err
		}
		var err error
		bus, err = e.board.I2C.Bus(busID)
		return err
	})
	if err != nil {
		e.console.Errorf("I2C bus %d failed: %v", busID, err)
		return fmt.Errorf("i2c%d: %w", busID, err)
	}

	var panel display.Panel
	err = e.shared.WithBus(func() error {
		var err error
		panel, err = e.board.NewPanel(bus, e.cfg.Display)
		return err
	})
	if err != nil {
		e.console.Errorf("Failed to initialize text UI: %v", err)
		return fmt.Errorf("display: %w", err)
	}

	renderer := display.New(panel, rendererConfig(e.cfg.Display))
	e.ui = textui.New(e.cfg.UIConfig(e.version), renderer, e.shared, e.console)

	dac := mcp4726.New(bus)
	dac.Address = e.cfg.DAC.Address
	adc := max11645.New(bus)
	adc.Address = e.cfg.ADC.Address

	e.load = load.New(e.cfg.LoadConfig(), dac, adc, e.ui, e.shared, e.console)
	e.ui.SetListener(e.load)

	e.encoder = encoder.New(e.cfg.EncoderConfig(), e.board.GPIO, e.sched, e.console)
	e.encoder.SetListener(e.ui)
	if err := e.encoder.Init(); err != nil {
		e.console.Errorf("Failed to initialize encoder: %v", err)
		return err
	}
	return nil
}

// Start launches the timer dispatcher and the three periodic tasks
func (e *ElectronicLoad) Start() {
	go e.sched.Run(e.cfg.TimerTick())
	go e.encoder.Run()
	go e.ui.Run()
	go e.load.Run()
}

// Run brings the load up and runs it for the lifetime of the device.
// It only returns if bring-up fails.
func (e *ElectronicLoad) Run() error {
	if err := e.Bringup(); err != nil {
		return err
	}
	e.Start()
	select {}
}
