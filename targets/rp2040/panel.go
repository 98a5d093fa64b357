//go:build rp2040

package main

import (
	"fmt"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ssd1306"

	"eload/config"
	"eload/display"
)

// newSSD1306Panel is the app.PanelFactory for the V2 board's OLED module.
// It pushes one blank frame so a panel that does not acknowledge is
// reported at bring-up.
func newSSD1306Panel(bus drivers.I2C, cfg config.DisplayConfig) (display.Panel, error) {
	dev := ssd1306.NewI2C(bus)
	dev.Configure(ssd1306.Config{
		Address:  cfg.Address,
		Width:    int16(cfg.Width),
		Height:   int16(cfg.Height),
		VccState: ssd1306.SWITCHCAPVCC,
	})
	dev.ClearBuffer()
	if err := dev.Display(); err != nil {
		return nil, fmt.Errorf("ssd1306@%#x: %w", cfg.Address, err)
	}
	return dev, nil
}
