package core

import "sync"

// Shared holds the two resource locks every task contends for: the I2C bus
// and the serial console. One instance is created at bring-up and handed to
// each task; there is no package-level singleton.
type Shared struct {
	Bus     sync.Locker
	Console sync.Locker
}

// NewShared creates a lock pair backed by plain mutexes
func NewShared() *Shared {
	return &Shared{
		Bus:     new(sync.Mutex),
		Console: new(sync.Mutex),
	}
}

// WithBus runs fn while holding the bus lock
func (s *Shared) WithBus(fn func() error) error {
	s.Bus.Lock()
	defer s.Bus.Unlock()
	return fn()
}
