//go:build rp2040

package main

import (
	"errors"
	"machine"
	"sync"

	"tinygo.org/x/drivers"

	"eload/core"
)

// I2CPins routes one controller to its SDA/SCL pads
type I2CPins struct {
	SDA, SCL machine.Pin
}

// RPI2CDriver implements core.I2CDriver using TinyGo's machine.I2C
type RPI2CDriver struct {
	mu sync.Mutex

	// RP2040 has I2C0 and I2C1
	pins       map[core.I2CBusID]I2CPins
	buses      map[core.I2CBusID]*machine.I2C
	configured map[core.I2CBusID]bool
}

// NewRPI2CDriver constructs the driver. pins overrides the controller's
// default pads.
func NewRPI2CDriver(pins map[core.I2CBusID]I2CPins) *RPI2CDriver {
	return &RPI2CDriver{
		pins:       pins,
		buses:      make(map[core.I2CBusID]*machine.I2C),
		configured: make(map[core.I2CBusID]bool),
	}
}

// ConfigureBus initializes a specific I2C bus with the given frequency.
func (d *RPI2CDriver) ConfigureBus(bus core.I2CBusID, frequencyHz uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.configured[bus] {
		i2c, exists := d.buses[bus]
		if !exists {
			return errors.New("I2C bus internal state error")
		}
		return i2c.SetBaudRate(frequencyHz)
	}

	var i2c *machine.I2C
	switch bus {
	case 0:
		i2c = machine.I2C0
	case 1:
		i2c = machine.I2C1
	default:
		return errors.New("unsupported I2C bus ID")
	}

	// Zero pins select TinyGo's defaults (I2C0: GP4/GP5, I2C1: GP6/GP7)
	cfg := machine.I2CConfig{Frequency: frequencyHz}
	if p, ok := d.pins[bus]; ok {
		cfg.SDA, cfg.SCL = p.SDA, p.SCL
	}
	if err := i2c.Configure(cfg); err != nil {
		return err
	}

	d.buses[bus] = i2c
	d.configured[bus] = true
	return nil
}

// Bus returns the configured controller for device drivers
func (d *RPI2CDriver) Bus(bus core.I2CBusID) (drivers.I2C, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i2c, exists := d.buses[bus]
	if !exists {
		return nil, errors.New("I2C bus not configured")
	}
	return i2c, nil
}
