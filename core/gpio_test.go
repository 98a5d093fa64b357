package core

import "testing"

func TestVirtualGPIOPullUpIdlesHigh(t *testing.T) {
	g := NewVirtualGPIO()
	if err := g.ConfigureInput(33, PullUp); err != nil {
		t.Fatal(err)
	}
	if !g.ReadPin(33) {
		t.Error("Pull-up input should idle high")
	}
}

func TestVirtualGPIOEdges(t *testing.T) {
	g := NewVirtualGPIO()
	pin := GPIOPin(32)

	if err := g.SetInterrupt(pin, EdgeFalling, func(GPIOPin) {}); err == nil {
		t.Error("Expected error for interrupt on unconfigured pin")
	}

	g.ConfigureInput(pin, PullUp)
	if err := g.SetInterrupt(pin, EdgeFalling, nil); err == nil {
		t.Error("Expected error for edge without handler")
	}

	falls := 0
	if err := g.SetInterrupt(pin, EdgeFalling, func(GPIOPin) { falls++ }); err != nil {
		t.Fatal(err)
	}

	g.Drive(pin, false) // falling
	g.Drive(pin, false) // no transition
	g.Drive(pin, true)  // rising, ignored
	g.Drive(pin, false) // falling

	if falls != 2 {
		t.Errorf("Expected 2 falling edges, got %d", falls)
	}

	// Detach and confirm handlers stop
	if err := g.SetInterrupt(pin, EdgeNone, nil); err != nil {
		t.Fatal(err)
	}
	if g.InterruptEnabled(pin) {
		t.Error("Interrupt should be detached")
	}
	g.Drive(pin, true)
	g.Drive(pin, false)
	if falls != 2 {
		t.Errorf("Detached handler fired, count %d", falls)
	}
}

func TestVirtualGPIOHandlerMayReconfigure(t *testing.T) {
	g := NewVirtualGPIO()
	pin := GPIOPin(25)
	g.ConfigureInput(pin, PullUp)

	var handler EdgeHandler
	handler = func(p GPIOPin) {
		// Disabling from inside the handler must not deadlock
		g.SetInterrupt(p, EdgeNone, nil)
		if g.ReadPin(p) {
			t.Error("Expected low level inside falling handler")
		}
	}
	g.SetInterrupt(pin, EdgeFalling, handler)
	g.Drive(pin, false)

	if g.InterruptEnabled(pin) {
		t.Error("Handler should have detached itself")
	}
}
