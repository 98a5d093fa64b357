// Package max11645 drives the Maxim MAX11645 2-channel 12-bit I2C ADC.
package max11645

import (
	"errors"
	"fmt"

	"tinygo.org/x/drivers"
)

// Address is the fixed I2C address
const Address = 0x36

// Channels is the number of analog inputs
const Channels = 2

// Reference selects the conversion reference
type Reference uint8

const (
	RefVDD            Reference = 0
	RefExternal       Reference = 2
	RefInternal       Reference = 5
	RefInternalOutput Reference = 7
)

// ScanMode selects which channels a read converts
type ScanMode uint8

const (
	// ScanUpTo converts AIN0 through the selected channel
	ScanUpTo ScanMode = 0
	// ScanRepeat converts the selected channel eight times
	ScanRepeat ScanMode = 1
	// ScanSingle converts only the selected channel
	ScanSingle ScanMode = 3
)

// Channel selects an analog input
type Channel uint8

const (
	AIN0 Channel = 0
	AIN1 Channel = 1
)

// Mode selects the input configuration
type Mode uint8

const (
	Differential Mode = 0
	SingleEnded  Mode = 1
)

// Clock selects the conversion clock
type Clock uint8

const (
	ClockInternal Clock = 0
	ClockExternal Clock = 1
)

// Polarity selects unipolar or bipolar differential results
type Polarity uint8

const (
	Unipolar Polarity = 0
	Bipolar  Polarity = 1
)

const (
	regConfig = 0
	regSetup  = 1
)

// ErrShortRead is returned when a sample read does not complete
var ErrShortRead = errors.New("max11645: short read")

// Device wraps an I2C connection to a MAX11645. It does no locking; callers
// serialize bus access.
type Device struct {
	bus     drivers.I2C
	Address uint16
	buf     [2 * Channels]byte
}

// New creates a device on bus at the fixed address
func New(bus drivers.I2C) *Device {
	return &Device{
		bus:     bus,
		Address: Address,
	}
}

// ConfigByte builds the configuration register value
func ConfigByte(scan ScanMode, ch Channel, mode Mode) uint8 {
	return regConfig<<7 | uint8(scan)<<5 | uint8(ch)<<1 | uint8(mode)
}

// SetupByte builds the setup register value. resetConfig clears the
// configuration register to its power-on state.
func SetupByte(ref Reference, clk Clock, pol Polarity, resetConfig bool) uint8 {
	b := uint8(regSetup<<7) | uint8(ref)<<4 | uint8(clk)<<3 | uint8(pol)<<2
	if !resetConfig {
		b |= 1 << 1
	}
	return b
}

// WriteConfig writes the configuration register
func (d *Device) WriteConfig(scan ScanMode, ch Channel, mode Mode) error {
	d.buf[0] = ConfigByte(scan, ch, mode)
	return d.write(d.buf[:1])
}

// WriteSetup writes the setup register
func (d *Device) WriteSetup(ref Reference, clk Clock, pol Polarity, resetConfig bool) error {
	d.buf[0] = SetupByte(ref, clk, pol, resetConfig)
	return d.write(d.buf[:1])
}

// WriteAll writes setup then configuration in one transaction
func (d *Device) WriteAll(scan ScanMode, ch Channel, mode Mode, ref Reference, clk Clock, pol Polarity) error {
	d.buf[0] = SetupByte(ref, clk, pol, false)
	d.buf[1] = ConfigByte(scan, ch, mode)
	return d.write(d.buf[:2])
}

// ReadSamples reads len(samples) conversions, one per scanned channel
func (d *Device) ReadSamples(samples []uint16) error {
	n := len(samples)
	if n == 0 || n > Channels {
		return fmt.Errorf("max11645: cannot read %d samples", n)
	}

	raw := d.buf[:2*n]
	if err := d.bus.Tx(d.Address, nil, raw); err != nil {
		return fmt.Errorf("%w: %w", ErrShortRead, err)
	}
	for i := range samples {
		samples[i] = uint16(raw[2*i]&0x0f)<<8 | uint16(raw[2*i+1])
	}
	return nil
}

func (d *Device) write(data []byte) error {
	if err := d.bus.Tx(d.Address, data, nil); err != nil {
		return fmt.Errorf("max11645@%#x: %w", d.Address, err)
	}
	return nil
}
