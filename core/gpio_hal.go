package core

// GPIOPin identifies a hardware GPIO pin number
type GPIOPin uint32

// Pull selects the input bias resistor
type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// Edge selects which transitions raise a pin interrupt
type Edge uint8

const (
	EdgeNone Edge = iota
	EdgeRising
	EdgeFalling
	EdgeBoth
)

// String returns the edge name used in log lines
func (e Edge) String() string {
	switch e {
	case EdgeRising:
		return "rising"
	case EdgeFalling:
		return "falling"
	case EdgeBoth:
		return "both"
	default:
		return "none"
	}
}

// EdgeHandler runs in interrupt context. It must not block, allocate or log.
type EdgeHandler func(pin GPIOPin)

// GPIODriver is the abstract GPIO interface that core code uses.
// Platform-specific implementations handle actual hardware control.
type GPIODriver interface {
	// ConfigureInput configures a pin as a digital input with the given bias
	ConfigureInput(pin GPIOPin, pull Pull) error

	// ReadPin reads the current pin level (true = high)
	ReadPin(pin GPIOPin) bool

	// SetInterrupt attaches handler to the given edge of pin.
	// EdgeNone with a nil handler detaches the interrupt.
	// Implementations must allow this call from inside a handler.
	SetInterrupt(pin GPIOPin, edge Edge, handler EdgeHandler) error
}
