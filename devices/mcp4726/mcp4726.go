// Package mcp4726 drives the Microchip MCP4726 12-bit I2C DAC.
//
// Datasheet: https://ww1.microchip.com/downloads/en/DeviceDoc/22272C.pdf
package mcp4726

import (
	"errors"
	"fmt"

	"tinygo.org/x/drivers"
)

// Address is the default I2C address (A0 variant)
const Address = 0x60

// MaxValue is the largest 12-bit DAC code
const MaxValue = 0x0fff

// Reference selects the voltage reference
type Reference uint8

const (
	RefVDD          Reference = 0
	RefVREF         Reference = 2
	RefVREFBuffered Reference = 3
)

// PowerDown selects the output state
type PowerDown uint8

const (
	PowerRun  PowerDown = 0
	Power1K   PowerDown = 1
	Power100K PowerDown = 2
	Power500K PowerDown = 3
)

// Gain selects the output amplifier gain
type Gain uint8

const (
	Gain1X Gain = 0
	Gain2X Gain = 1
)

const (
	cmdWriteVolatileMem    = 0b010
	cmdWriteAllMem         = 0b011
	cmdWriteVolatileConfig = 0b100
)

var ErrValueRange = errors.New("mcp4726: value exceeds 12 bits")

// Device wraps an I2C connection to an MCP4726. It does no locking; callers
// serialize bus access.
type Device struct {
	bus     drivers.I2C
	Address uint16
	buf     [3]byte
}

// New creates a device on bus at the default address
func New(bus drivers.I2C) *Device {
	return &Device{
		bus:     bus,
		Address: Address,
	}
}

// WriteDAC sets the output code with the fast write command
func (d *Device) WriteDAC(value uint16, pd PowerDown) error {
	if value > MaxValue {
		return ErrValueRange
	}
	d.buf[0] = uint8(pd)<<4 | uint8(value>>8)&0x0f
	d.buf[1] = uint8(value)
	return d.write(d.buf[:2])
}

// WriteMemory writes configuration and code to the volatile registers, and
// to EEPROM as well when persistent is set.
func (d *Device) WriteMemory(ref Reference, pd PowerDown, g Gain, value uint16, persistent bool) error {
	if value > MaxValue {
		return ErrValueRange
	}
	cmd := uint8(cmdWriteVolatileMem)
	if persistent {
		cmd = cmdWriteAllMem
	}
	d.buf[0] = configByte(cmd, ref, pd, g)
	d.buf[1] = uint8(value >> 4)
	d.buf[2] = uint8(value << 4)
	return d.write(d.buf[:3])
}

// WriteVolatileConfig changes reference, power-down and gain without
// touching the code
func (d *Device) WriteVolatileConfig(ref Reference, pd PowerDown, g Gain) error {
	d.buf[0] = configByte(cmdWriteVolatileConfig, ref, pd, g)
	return d.write(d.buf[:1])
}

func configByte(cmd uint8, ref Reference, pd PowerDown, g Gain) uint8 {
	return cmd<<5 | uint8(ref)<<3 | uint8(pd)<<1 | uint8(g)
}

func (d *Device) write(data []byte) error {
	if err := d.bus.Tx(d.Address, data, nil); err != nil {
		return fmt.Errorf("mcp4726@%#x: %w", d.Address, err)
	}
	return nil
}
