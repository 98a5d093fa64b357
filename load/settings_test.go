package load

import (
	"sync"
	"testing"
)

func TestPendingSettingsTake(t *testing.T) {
	var p PendingSettings

	if _, ok := p.Take(); ok {
		t.Error("Fresh settings should have nothing to take")
	}

	p.SetDesiredCurrent(1.0)
	p.SetDesiredCurrent(2.0)
	p.SetEnabled(true)

	s, ok := p.Take()
	if !ok || s.DesiredCurrent != 2.0 || !s.Enabled {
		t.Errorf("Expected {2 true}, got %+v (ok=%v)", s, ok)
	}
	if _, ok := p.Take(); ok {
		t.Error("A generation must be taken only once")
	}

	// Shadow values persist across generations
	p.SetEnabled(false)
	s, _ = p.Take()
	if s.DesiredCurrent != 2.0 || s.Enabled {
		t.Errorf("Expected {2 false}, got %+v", s)
	}
}

func TestPendingSettingsConcurrentWriters(t *testing.T) {
	var p PendingSettings
	var wg sync.WaitGroup

	taken := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			if _, ok := p.Take(); ok {
				taken++
			}
		}
	}()

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				p.SetDesiredCurrent(float64(i))
			}
		}()
	}
	wg.Wait()
	<-done

	p.SetDesiredCurrent(42)
	s, ok := p.Take()
	if !ok || s.DesiredCurrent != 42 {
		t.Errorf("Last write should win, got %+v", s)
	}
	if taken > 400 {
		t.Errorf("Took %d generations from 400 writes", taken)
	}
}
