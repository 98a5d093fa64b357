//go:build tinygo

package core

import "runtime/interrupt"

// State is the saved interrupt mask
type State = interrupt.State

// Critical guards state shared between interrupt handlers, timer callbacks
// and tasks by masking interrupts for the duration of the section.
// Sections nest; each Exit restores the mask its Enter saved.
type Critical struct{}

// Enter disables interrupts and returns the previous state
func (c *Critical) Enter() State {
	return interrupt.Disable()
}

// Exit restores the interrupt state
func (c *Critical) Exit(state State) {
	interrupt.Restore(state)
}
