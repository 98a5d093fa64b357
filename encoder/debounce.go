package encoder

import (
	"fmt"
	"sync/atomic"
	"time"

	"eload/core"
)

// DebounceConfig describes one debounced input line
type DebounceConfig struct {
	Pin       core.GPIOPin
	Pull      core.Pull
	ActiveLow bool
	Settle    time.Duration
}

// Edge returns the interrupt edge that starts a debounce window
func (c DebounceConfig) Edge() core.Edge {
	if c.ActiveLow {
		return core.EdgeFalling
	}
	return core.EdgeRising
}

// Debouncer turns a bouncing interrupt line into at most one confirmed edge
// per settle window. OnRawEdge runs in interrupt context, OnSettle in timer
// context; neither logs or takes a task lock.
type Debouncer struct {
	cfg     DebounceConfig
	gpio    core.GPIODriver
	timer   *core.OneShot
	handler core.EdgeHandler

	// sample runs at edge time, confirm after a successful settle
	sample  func()
	confirm func()

	crit    core.Critical
	pending bool

	armFailures atomic.Uint32
}

// NewDebouncer creates a debouncer whose settle timer lives on sched.
// sample may be nil.
func NewDebouncer(cfg DebounceConfig, gpio core.GPIODriver, sched *core.Scheduler, sample, confirm func()) *Debouncer {
	d := &Debouncer{
		cfg:     cfg,
		gpio:    gpio,
		sample:  sample,
		confirm: confirm,
	}
	d.timer = sched.NewOneShot(d.OnSettle)
	d.handler = func(core.GPIOPin) { d.OnRawEdge() }
	return d
}

// Init configures the line and attaches the raw edge interrupt
func (d *Debouncer) Init() error {
	if err := d.gpio.ConfigureInput(d.cfg.Pin, d.cfg.Pull); err != nil {
		return fmt.Errorf("gpio%d: configure: %w", d.cfg.Pin, err)
	}
	if err := d.gpio.SetInterrupt(d.cfg.Pin, d.cfg.Edge(), d.handler); err != nil {
		return fmt.Errorf("gpio%d: attach interrupt: %w", d.cfg.Pin, err)
	}
	return nil
}

// OnRawEdge handles a raw interrupt. Bounces inside a pending window are
// dropped without touching the timer.
func (d *Debouncer) OnRawEdge() {
	state := d.crit.Enter()
	if d.pending {
		d.crit.Exit(state)
		return
	}
	d.pending = true
	d.crit.Exit(state)

	// Attach succeeded in Init, the same call cannot fail here
	_ = d.gpio.SetInterrupt(d.cfg.Pin, core.EdgeNone, nil)

	if d.sample != nil {
		d.sample()
	}

	if err := d.timer.Start(d.cfg.Settle); err != nil {
		// No timer: never leave the line detached
		d.armFailures.Add(1)
		d.release()
	}
}

// OnSettle confirms the edge if the line is still at its active level
func (d *Debouncer) OnSettle() {
	d.release()

	if d.gpio.ReadPin(d.cfg.Pin) != d.cfg.ActiveLow {
		d.confirm()
	}
}

func (d *Debouncer) release() {
	state := d.crit.Enter()
	d.pending = false
	d.crit.Exit(state)

	_ = d.gpio.SetInterrupt(d.cfg.Pin, d.cfg.Edge(), d.handler)
}

// Pending reports whether a settle window is open
func (d *Debouncer) Pending() bool {
	state := d.crit.Enter()
	defer d.crit.Exit(state)
	return d.pending
}

// ArmFailures returns how many times the settle timer could not be armed
func (d *Debouncer) ArmFailures() uint32 {
	return d.armFailures.Load()
}
