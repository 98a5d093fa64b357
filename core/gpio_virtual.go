package core

import (
	"fmt"
	"sync"
)

// VirtualGPIO is an in-memory GPIODriver for host runs and tests.
// Drive changes a pin level and fires its interrupt handler synchronously,
// in the caller's goroutine, the same way a hardware edge would preempt.
type VirtualGPIO struct {
	mu   sync.Mutex
	pins map[GPIOPin]*virtualPin
}

type virtualPin struct {
	configured bool
	pull       Pull
	level      bool
	edge       Edge
	handler    EdgeHandler
}

// NewVirtualGPIO creates an empty virtual pin bank
func NewVirtualGPIO() *VirtualGPIO {
	return &VirtualGPIO{pins: make(map[GPIOPin]*virtualPin)}
}

func (g *VirtualGPIO) pin(p GPIOPin) *virtualPin {
	vp, ok := g.pins[p]
	if !ok {
		vp = &virtualPin{}
		g.pins[p] = vp
	}
	return vp
}

// ConfigureInput configures a virtual input. Pull-ups idle high.
func (g *VirtualGPIO) ConfigureInput(pin GPIOPin, pull Pull) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	vp := g.pin(pin)
	vp.configured = true
	vp.pull = pull
	vp.level = pull == PullUp
	return nil
}

// ReadPin returns the current virtual level
func (g *VirtualGPIO) ReadPin(pin GPIOPin) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pin(pin).level
}

// SetInterrupt attaches or detaches the pin handler
func (g *VirtualGPIO) SetInterrupt(pin GPIOPin, edge Edge, handler EdgeHandler) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	vp := g.pin(pin)
	if !vp.configured {
		return fmt.Errorf("gpio%d: interrupt on unconfigured pin", pin)
	}
	if edge != EdgeNone && handler == nil {
		return fmt.Errorf("gpio%d: %s edge without handler", pin, edge)
	}
	if edge == EdgeNone {
		handler = nil
	}
	vp.edge = edge
	vp.handler = handler
	return nil
}

// InterruptEnabled reports whether pin currently has an attached handler
func (g *VirtualGPIO) InterruptEnabled(pin GPIOPin) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pin(pin).handler != nil
}

// Drive sets the pin level. If the transition matches the attached edge the
// handler runs before Drive returns.
func (g *VirtualGPIO) Drive(pin GPIOPin, level bool) {
	g.mu.Lock()
	vp := g.pin(pin)
	prev := vp.level
	vp.level = level
	handler := vp.handler
	fire := false
	if handler != nil && prev != level {
		switch vp.edge {
		case EdgeRising:
			fire = level
		case EdgeFalling:
			fire = !level
		case EdgeBoth:
			fire = true
		}
	}
	g.mu.Unlock()

	// Handlers re-enter SetInterrupt/ReadPin, so the bank lock is released first
	if fire {
		handler(pin)
	}
}
