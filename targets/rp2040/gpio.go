//go:build rp2040

package main

import (
	"fmt"
	"machine"

	"eload/core"
)

// RPGPIODriver implements core.GPIODriver on the RP2040 pin bank
type RPGPIODriver struct {
	configuredPins map[core.GPIOPin]machine.Pin

	// SetInterrupt runs inside handlers, so the machine callback is built
	// once and looks the handler up per pin.
	handlers   [30]core.EdgeHandler
	trampoline func(machine.Pin)
}

// NewRPGPIODriver creates a new RP2040 GPIO driver
func NewRPGPIODriver() *RPGPIODriver {
	d := &RPGPIODriver{
		configuredPins: make(map[core.GPIOPin]machine.Pin),
	}
	d.trampoline = d.dispatch
	return d
}

func (d *RPGPIODriver) dispatch(p machine.Pin) {
	if h := d.handlers[p]; h != nil {
		h(core.GPIOPin(p))
	}
}

func (d *RPGPIODriver) ConfigureInput(pin core.GPIOPin, pull core.Pull) error {
	if pin > 29 {
		return fmt.Errorf("gpio%d: no such pin", pin)
	}

	mode := machine.PinInput
	switch pull {
	case core.PullUp:
		mode = machine.PinInputPullup
	case core.PullDown:
		mode = machine.PinInputPulldown
	}

	machinePin := machine.Pin(pin)
	machinePin.Configure(machine.PinConfig{Mode: mode})
	d.configuredPins[pin] = machinePin
	return nil
}

// ReadPin is called from interrupt context and must not allocate
func (d *RPGPIODriver) ReadPin(pin core.GPIOPin) bool {
	return machine.Pin(pin).Get()
}

func (d *RPGPIODriver) SetInterrupt(pin core.GPIOPin, edge core.Edge, handler core.EdgeHandler) error {
	machinePin, exists := d.configuredPins[pin]
	if !exists {
		return fmt.Errorf("gpio%d: interrupt on unconfigured pin", pin)
	}

	if edge == core.EdgeNone || handler == nil {
		d.handlers[pin] = nil
		return machinePin.SetInterrupt(0, nil)
	}

	var change machine.PinChange
	switch edge {
	case core.EdgeRising:
		change = machine.PinRising
	case core.EdgeFalling:
		change = machine.PinFalling
	default:
		change = machine.PinToggle
	}
	d.handlers[pin] = handler
	return machinePin.SetInterrupt(change, d.trampoline)
}
