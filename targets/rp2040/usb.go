//go:build rp2040

package main

import (
	"machine"
)

// InitUSB configures machine.Serial, which is USB CDC on the RP2040
func InitUSB() {
	_ = machine.Serial.Configure(machine.UARTConfig{})
}

// usbConsole is the console writer
type usbConsole struct{}

func (usbConsole) Write(p []byte) (int, error) {
	return machine.Serial.Write(p)
}
