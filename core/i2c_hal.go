package core

import (
	"fmt"

	"tinygo.org/x/drivers"
)

// I2CBusID identifies a specific I2C bus (e.g., I2C0, I2C1).
type I2CBusID uint8

// I2CAddress is a 7-bit I2C device address.
type I2CAddress uint8

// I2CDriver is the abstract I2C interface that core code uses.
// Device code talks to the returned drivers.I2C so the same device packages
// run against machine.I2C on target and against mock buses in tests.
type I2CDriver interface {
	// ConfigureBus initializes a specific I2C bus with the given frequency.
	// Returns error if bus ID is invalid or configuration fails.
	ConfigureBus(bus I2CBusID, frequencyHz uint32) error

	// Bus returns a configured bus.
	Bus(bus I2CBusID) (drivers.I2C, error)
}

// StaticI2C is an I2CDriver over buses that need no configuration,
// for host runs and tests.
type StaticI2C map[I2CBusID]drivers.I2C

func (s StaticI2C) ConfigureBus(bus I2CBusID, frequencyHz uint32) error {
	if _, ok := s[bus]; !ok {
		return fmt.Errorf("i2c%d: no such bus", bus)
	}
	return nil
}

func (s StaticI2C) Bus(bus I2CBusID) (drivers.I2C, error) {
	b, ok := s[bus]
	if !ok {
		return nil, fmt.Errorf("i2c%d: no such bus", bus)
	}
	return b, nil
}
