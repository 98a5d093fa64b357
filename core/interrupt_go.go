//go:build !tinygo

package core

import "sync"

// State is a placeholder for interrupt state on regular Go
type State uintptr

// Critical guards state shared between interrupt handlers, timer callbacks
// and tasks. On regular Go there are no interrupts, so a mutex stands in for
// the interrupt mask and tests can exercise the same code from goroutines.
type Critical struct {
	mu sync.Mutex
}

// Enter begins a critical section
func (c *Critical) Enter() State {
	c.mu.Lock()
	return 0
}

// Exit ends a critical section started by Enter
func (c *Critical) Exit(state State) {
	c.mu.Unlock()
}
