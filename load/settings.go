package load

import "sync"

// Settings is what the control task applies to the hardware
type Settings struct {
	DesiredCurrent float64
	Enabled        bool
}

// PendingSettings hands edits from the UI task to the control task.
// Writes between two Takes coalesce and the last one wins; each generation
// is taken at most once.
type PendingSettings struct {
	mu      sync.Mutex
	changed bool
	shadow  Settings
}

// SetDesiredCurrent records a new setpoint
func (p *PendingSettings) SetDesiredCurrent(amps float64) {
	p.mu.Lock()
	p.shadow.DesiredCurrent = amps
	p.changed = true
	p.mu.Unlock()
}

// SetEnabled records a new output state
func (p *PendingSettings) SetEnabled(enabled bool) {
	p.mu.Lock()
	p.shadow.Enabled = enabled
	p.changed = true
	p.mu.Unlock()
}

// Take returns the shadow settings and clears the changed flag. ok is false
// when nothing changed since the last Take.
func (p *PendingSettings) Take() (s Settings, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.changed {
		return Settings{}, false
	}
	p.changed = false
	return p.shadow, true
}

// Requeue marks the settings changed again after a failed apply so the next
// Take retries them. Newer writes already carry the latest shadow values.
func (p *PendingSettings) Requeue() {
	p.mu.Lock()
	p.changed = true
	p.mu.Unlock()
}
