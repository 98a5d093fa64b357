// Package load is the control task: it applies UI settings to the current
// sink DAC and reads load voltage and current back from the ADC.
package load

import (
	"fmt"
	"math"
	"time"

	"eload/core"
	"eload/devices/max11645"
	"eload/devices/mcp4726"
)

// DAC drives the current sink setpoint
type DAC interface {
	WriteDAC(value uint16, pd mcp4726.PowerDown) error
	WriteMemory(ref mcp4726.Reference, pd mcp4726.PowerDown, g mcp4726.Gain, value uint16, persistent bool) error
}

// ADC samples the load voltage (AIN0) and sense voltage (AIN1)
type ADC interface {
	WriteAll(scan max11645.ScanMode, ch max11645.Channel, mode max11645.Mode, ref max11645.Reference, clk max11645.Clock, pol max11645.Polarity) error
	ReadSamples(samples []uint16) error
}

// Monitor shows measurements. The UI implements it.
type Monitor interface {
	SetLoadVoltage(volts float64)
	SetLoadCurrent(amps float64)
}

// Config holds the measurement path constants
type Config struct {
	SenseOhms      float64
	AmpGain        float64
	DACLSB         float64
	ADCLSB         float64
	VoltageDivider float64
	Period         time.Duration
	// InitSettle is the pause after each bring-up write
	InitSettle time.Duration
}

// DefaultConfig matches the V2 board: 10 mOhm shunt, x67 sense amplifier,
// 0.5 mV converters and a 1:15 voltage divider.
func DefaultConfig() Config {
	return Config{
		SenseOhms:      0.01,
		AmpGain:        67,
		DACLSB:         0.0005,
		ADCLSB:         0.0005,
		VoltageDivider: 15,
		Period:         500 * time.Millisecond,
		InitSettle:     200 * time.Millisecond,
	}
}

// DACCode converts settings to a DAC code. Disabled always commands zero.
func (c Config) DACCode(s Settings) uint16 {
	if !s.Enabled || s.DesiredCurrent <= 0 {
		return 0
	}
	code := math.Round(s.DesiredCurrent * c.SenseOhms * c.AmpGain / c.DACLSB)
	if code > mcp4726.MaxValue {
		return mcp4726.MaxValue
	}
	return uint16(code)
}

// Voltage converts an AIN0 sample to load volts
func (c Config) Voltage(raw uint16) float64 {
	return float64(raw) * c.ADCLSB * c.VoltageDivider
}

// Current converts an AIN1 sample to load amps
func (c Config) Current(raw uint16) float64 {
	return float64(raw) * c.ADCLSB / c.AmpGain / c.SenseOhms
}

// Load is the control task. It implements the UI's settings listener.
type Load struct {
	cfg     Config
	dac     DAC
	adc     ADC
	monitor Monitor
	shared  *core.Shared
	console *core.Console

	pending PendingSettings

	// control task only
	applied Settings
	samples [max11645.Channels]uint16
}

// New creates the control task. monitor may be nil.
func New(cfg Config, dac DAC, adc ADC, monitor Monitor, shared *core.Shared, console *core.Console) *Load {
	return &Load{
		cfg:     cfg,
		dac:     dac,
		adc:     adc,
		monitor: monitor,
		shared:  shared,
		console: console,
	}
}

// OnDesiredCurrentChanged queues a new setpoint for the next cycle
func (l *Load) OnDesiredCurrentChanged(amps float64) {
	l.pending.SetDesiredCurrent(amps)
}

// OnEnabledChanged queues a new output state for the next cycle
func (l *Load) OnEnabledChanged(enabled bool) {
	l.pending.SetEnabled(enabled)
}

// Applied returns the settings last written to the DAC. Like Cycle it
// must run on the control task, or after the task has stopped.
func (l *Load) Applied() Settings {
	return l.applied
}

// Init programs the DAC EEPROM for a zero output at power-on and sets the
// ADC up to scan both channels.
func (l *Load) Init() error {
	err := l.shared.WithBus(func() error {
		return l.dac.WriteMemory(mcp4726.RefVREFBuffered, mcp4726.PowerRun, mcp4726.Gain1X, 0, true)
	})
	if err != nil {
		l.console.Errorf("Initializing MCP4726...failed: %v", err)
		return fmt.Errorf("dac init: %w", err)
	}
	time.Sleep(l.cfg.InitSettle)
	l.console.Infof("Initializing MCP4726...done.")

	err = l.shared.WithBus(func() error {
		return l.adc.WriteAll(max11645.ScanUpTo, max11645.AIN1, max11645.SingleEnded,
			max11645.RefInternalOutput, max11645.ClockInternal, max11645.Unipolar)
	})
	if err != nil {
		l.console.Errorf("Initializing MAX11645...failed: %v", err)
		return fmt.Errorf("adc init: %w", err)
	}
	time.Sleep(l.cfg.InitSettle)
	l.console.Infof("Initializing MAX11645...done.")
	return nil
}

// Run initializes the converters and loops Cycle forever. A failed init is
// logged; the loop still runs so later writes can succeed.
func (l *Load) Run() {
	if err := l.Init(); err != nil {
		l.console.Warnf("load: continuing after %v", err)
	}
	core.Every("load", l.cfg.Period, l.console, l.Cycle)
}

// Cycle applies pending settings once, then takes one measurement
func (l *Load) Cycle() {
	if s, ok := l.pending.Take(); ok {
		if err := l.apply(s); err != nil {
			l.console.Errorf("dac: %v", err)
			l.pending.Requeue()
		}
	}

	if err := l.measure(); err != nil {
		l.console.Errorf("adc: %v", err)
	}
}

func (l *Load) apply(s Settings) error {
	code := l.cfg.DACCode(s)
	l.console.Infof("Set dac value %d", code)

	err := l.shared.WithBus(func() error {
		return l.dac.WriteDAC(code, mcp4726.PowerRun)
	})
	if err != nil {
		return err
	}
	l.applied = s
	return nil
}

func (l *Load) measure() error {
	err := l.shared.WithBus(func() error {
		return l.adc.ReadSamples(l.samples[:])
	})
	if err != nil {
		return err
	}

	raw0, raw1 := l.samples[0], l.samples[1]
	volts := l.cfg.Voltage(raw0)
	amps := l.cfg.Current(raw1)

	l.console.Infof("AIN0: %4d [%5.3fV] (%5.3fV) AIN1: %4d [%5.3fV] (%8.3fmA)",
		raw0, float64(raw0)*l.cfg.ADCLSB, volts,
		raw1, float64(raw1)*l.cfg.ADCLSB, amps*1000)

	if l.monitor != nil {
		l.monitor.SetLoadVoltage(volts)
		l.monitor.SetLoadCurrent(amps)
	}
	return nil
}
