// Package encoder decodes a mechanical rotary encoder with push button.
//
// Phase A and the button are interrupt driven and debounced with one-shot
// timers. Phase B is sampled when an A edge is first seen. A periodic event
// task drains the accumulated steps and the click latch and hands them to a
// Listener outside the encoder lock.
package encoder

import (
	"fmt"
	"time"

	"eload/core"
)

// RotationListener receives drained rotation events
type RotationListener interface {
	OnRotation(delta int, rate float64)
}

// ClickListener receives button clicks
type ClickListener interface {
	OnClick()
}

// Listener is what the event task dispatches to
type Listener interface {
	RotationListener
	ClickListener
}

// ListenerFuncs adapts a pair of callbacks to Listener. Nil callbacks are skipped.
type ListenerFuncs struct {
	Rotation func(delta int, rate float64)
	Click    func()
}

func (f ListenerFuncs) OnRotation(delta int, rate float64) {
	if f.Rotation != nil {
		f.Rotation(delta, rate)
	}
}

func (f ListenerFuncs) OnClick() {
	if f.Click != nil {
		f.Click()
	}
}

// Config holds the encoder wiring and timing
type Config struct {
	APin      core.GPIOPin
	BPin      core.GPIOPin
	ButtonPin core.GPIOPin
	Detents   int
	Debounce  time.Duration
	Period    time.Duration
	// Invert makes A and the button active high (rising edge)
	Invert bool
}

// DefaultConfig returns the bench encoder: 24 detents, 250us settle, 15ms poll
func DefaultConfig() Config {
	return Config{
		APin:      33,
		BPin:      32,
		ButtonPin: 25,
		Detents:   24,
		Debounce:  250 * time.Microsecond,
		Period:    15 * time.Millisecond,
	}
}

// Encoder owns the decoder state shared between interrupt, timer and task
// contexts. Everything below crit is guarded by it.
type Encoder struct {
	cfg     Config
	gpio    core.GPIODriver
	clock   core.Clock
	console *core.Console

	a      *Debouncer
	button *Debouncer

	crit     core.Critical
	bLow     bool
	decoder  Decoder
	latch    Latch
	listener Listener

	// event task only
	lastEvent uint64
	havePrior bool
	reported  uint32
}

// New creates an encoder. Timers are armed on sched and time is read from
// its clock.
func New(cfg Config, gpio core.GPIODriver, sched *core.Scheduler, console *core.Console) *Encoder {
	e := &Encoder{
		cfg:     cfg,
		gpio:    gpio,
		clock:   sched.Clock(),
		console: console,
	}

	e.a = NewDebouncer(DebounceConfig{
		Pin:       cfg.APin,
		Pull:      core.PullNone,
		ActiveLow: !cfg.Invert,
		Settle:    cfg.Debounce,
	}, gpio, sched, e.sampleB, e.confirmA)

	e.button = NewDebouncer(DebounceConfig{
		Pin:       cfg.ButtonPin,
		Pull:      core.PullUp,
		ActiveLow: !cfg.Invert,
		Settle:    cfg.Debounce,
	}, gpio, sched, nil, e.confirmClick)

	return e
}

// SetListener binds the event receiver. Nil detaches it; events drained
// while no listener is bound are dropped.
func (e *Encoder) SetListener(l Listener) {
	state := e.crit.Enter()
	e.listener = l
	e.crit.Exit(state)
}

// Init configures the three inputs and attaches the interrupts
func (e *Encoder) Init() error {
	if err := e.gpio.ConfigureInput(e.cfg.BPin, core.PullUp); err != nil {
		return fmt.Errorf("encoder: phase B gpio%d: %w", e.cfg.BPin, err)
	}
	if err := e.a.Init(); err != nil {
		return fmt.Errorf("encoder: phase A: %w", err)
	}
	if err := e.button.Init(); err != nil {
		return fmt.Errorf("encoder: button: %w", err)
	}
	return nil
}

// interrupt context
func (e *Encoder) sampleB() {
	bLow := !e.gpio.ReadPin(e.cfg.BPin)
	state := e.crit.Enter()
	e.bLow = bLow
	e.crit.Exit(state)
}

// timer context
func (e *Encoder) confirmA() {
	state := e.crit.Enter()
	e.decoder.Step(e.bLow)
	e.crit.Exit(state)
}

// timer context
func (e *Encoder) confirmClick() {
	state := e.crit.Enter()
	e.latch.Set()
	e.crit.Exit(state)
}

// Cycle runs one pass of the event task: snapshot and clear the rotation
// and click state in a single critical section, then dispatch.
func (e *Encoder) Cycle() {
	now := e.clock.Now()

	state := e.crit.Enter()
	delta, count := e.decoder.Drain()
	clicked := e.latch.Take()
	listener := e.listener
	e.crit.Exit(state)

	e.reportArmFailures()

	var rate float64
	if count != 0 {
		rate = Rate(now-e.lastEvent, count, e.cfg.Detents, e.havePrior)
		e.lastEvent = now
		e.havePrior = true
	}

	if listener == nil {
		return
	}
	if count != 0 {
		listener.OnRotation(delta, rate)
	}
	if clicked {
		listener.OnClick()
	}
}

// Run loops Cycle forever at the configured period
func (e *Encoder) Run() {
	core.Every("encoder", e.cfg.Period, e.console, e.Cycle)
}

// ArmFailures is the total count of settle timers that could not be armed
func (e *Encoder) ArmFailures() uint32 {
	return e.a.ArmFailures() + e.button.ArmFailures()
}

func (e *Encoder) reportArmFailures() {
	n := e.ArmFailures()
	if n == e.reported {
		return
	}
	e.console.Warnf("encoder: debounce timer unavailable, %d edges dropped", n-e.reported)
	e.reported = n
}
