package encoder

// FallbackIntervalMs stands in for the tick interval on the first rotation
// after startup, when there is no previous event to measure from.
const FallbackIntervalMs = 50.0

// Decoder accumulates confirmed A-edges into a signed step delta.
// It does no I/O and has no lock; the owner serializes access.
type Decoder struct {
	delta int
	count uint
}

// Step records one confirmed A-edge. bLow is the B level sampled when the
// edge was first seen.
func (d *Decoder) Step(bLow bool) {
	d.count++
	if bLow {
		d.delta++
	} else {
		d.delta--
	}
}

// Drain returns the accumulated delta and edge count and resets both
func (d *Decoder) Drain() (delta int, count uint) {
	delta, count = d.delta, d.count
	d.delta, d.count = 0, 0
	return delta, count
}

// Rate converts count edges seen over elapsedUs into revolutions per
// minute. Without a previous event the fallback interval is used.
// The per-edge interval never drops below one millisecond.
func Rate(elapsedUs uint64, count uint, detents int, havePrior bool) float64 {
	if count == 0 || detents <= 0 {
		return 0
	}

	intervalMs := FallbackIntervalMs
	if havePrior {
		intervalMs = float64(elapsedUs) / 1000.0 / float64(count)
	}
	if intervalMs < 1 {
		intervalMs = 1
	}

	return 60000.0 / (intervalMs * float64(detents))
}

// Latch is a single click flag. Like Decoder it relies on its owner's lock.
type Latch struct {
	clicked bool
}

func (l *Latch) Set() {
	l.clicked = true
}

// Take returns the flag and clears it
func (l *Latch) Take() bool {
	c := l.clicked
	l.clicked = false
	return c
}
