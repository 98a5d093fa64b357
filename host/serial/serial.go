// Package serial opens the load's USB-serial console from a host.
package serial

import (
	"io"
)

// Port is an open console. The monitor only reads it.
type Port = io.ReadCloser

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// USB CDC ignores the baud rate; a UART bridge does not
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns the settings for the load's console
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100,
	}
}
