package textui

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"eload/core"
)

// busLock tracks whether the bus lock is held
type busLock struct {
	held bool
}

func (l *busLock) Lock()   { l.held = true }
func (l *busLock) Unlock() { l.held = false }

type fakeDisplay struct {
	t          *testing.T
	bus        *busLock
	calls      []string
	failWrites int
}

func (d *fakeDisplay) record(s string) {
	if !d.bus.held {
		d.t.Errorf("%s called without the bus lock", s)
	}
	d.calls = append(d.calls, s)
}

func (d *fakeDisplay) Clear() error {
	d.record("clear")
	return nil
}

func (d *fakeDisplay) WriteText(x, y int, text string) error {
	if d.failWrites > 0 {
		d.failWrites--
		return errors.New("i2c nack")
	}
	d.record(fmt.Sprintf("text %d,%d %q", x, y, text))
	return nil
}

func (d *fakeDisplay) DrawCursor(x, y int) error {
	d.record(fmt.Sprintf("cursor %d,%d", x, y))
	return nil
}

func (d *fakeDisplay) Flush() error {
	d.record("flush")
	return nil
}

func (d *fakeDisplay) reset() {
	d.calls = nil
}

type settings struct {
	currents []float64
	enables  []bool
	onChange func()
}

func (s *settings) OnDesiredCurrentChanged(amps float64) {
	s.currents = append(s.currents, amps)
	if s.onChange != nil {
		s.onChange()
	}
}

func (s *settings) OnEnabledChanged(enabled bool) {
	s.enables = append(s.enables, enabled)
}

func newTestUI(t *testing.T) (*TextUI, *fakeDisplay, *settings, *bytes.Buffer) {
	bus := &busLock{}
	shared := &core.Shared{Bus: bus, Console: &busLock{}}
	display := &fakeDisplay{t: t, bus: bus}
	console := &bytes.Buffer{}

	cfg := DefaultConfig()
	cfg.Splash = 0
	cfg.Version = "v0.1.0"

	ui := New(cfg, display, shared, core.NewConsole(console, nil, core.LevelInfo))
	s := &settings{}
	ui.SetListener(s)

	if err := ui.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	display.reset()
	return ui, display, s, console
}

func (ui *TextUI) selectField(idx int) {
	ui.moveCursor(idx)
	ui.Cycle()
}

func TestStartDrawsMainScreen(t *testing.T) {
	ui, _, _, _ := newTestUI(t)

	if ui.Cursor() != InitialCursor {
		t.Errorf("Expected cursor %d, got %d", InitialCursor, ui.Cursor())
	}

	rows := map[int]string{
		0: " Electronic Load V2",
		2: "   0.000 V 0.0000 A",
		4: "SET",
		5: "  0.0000 A",
		7: "OFF",
	}
	for y, want := range rows {
		if got := strings.TrimRight(ui.grid.Row(y), " "); got != want {
			t.Errorf("Row %d: expected %q, got %q", y, want, got)
		}
	}
	if ui.grid.Dirty() {
		t.Error("Grid should be fully committed after Start")
	}
}

func TestClampAtMaximum(t *testing.T) {
	ui, _, s, _ := newTestUI(t)

	ui.SetDesiredCurrent(2.95)
	ui.selectField(0)

	ui.OnRotation(1, 50)
	ui.Cycle()

	if len(s.currents) != 1 || s.currents[0] != 3.0 {
		t.Fatalf("Expected exactly 3.0 published, got %v", s.currents)
	}

	// Already at the limit: nothing to publish
	ui.OnRotation(2, 50)
	ui.Cycle()
	if len(s.currents) != 1 {
		t.Errorf("No change should not publish, got %v", s.currents)
	}

	ui.OnRotation(-5, 50)
	ui.Cycle()
	if s.currents[len(s.currents)-1] != 0 {
		t.Errorf("Expected clamp to 0, got %v", s.currents)
	}
	for _, v := range s.currents {
		if v < 0 || v > 3.0 {
			t.Errorf("Published value %v out of range", v)
		}
	}
}

func TestDigitResolution(t *testing.T) {
	ui, _, s, _ := newTestUI(t)

	// Initial cursor is the hundredths digit
	ui.OnRotation(3, 10)
	ui.Cycle()

	ui.OnClick()
	ui.Cycle()
	ui.OnRotation(-1, 10)
	ui.Cycle()

	want := []float64{0.03, 0.029}
	if len(s.currents) != len(want) {
		t.Fatalf("Expected %v, got %v", want, s.currents)
	}
	for i := range want {
		if s.currents[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, s.currents)
		}
	}
	if got := strings.TrimSpace(ui.grid.Row(5)); got != "0.0290 A" {
		t.Errorf("Expected setpoint row %q, got %q", "0.0290 A", got)
	}
}

func TestEnableParity(t *testing.T) {
	ui, _, s, _ := newTestUI(t)
	ui.selectField(len(Fields) - 1)

	ui.OnRotation(2, 0)
	ui.Cycle()
	if len(s.enables) != 0 || ui.Enabled() {
		t.Errorf("Delta 2 must not toggle, got %v", s.enables)
	}

	ui.OnRotation(1, 0)
	ui.Cycle()
	if len(s.enables) != 1 || !s.enables[0] {
		t.Errorf("Delta 1 must toggle on once, got %v", s.enables)
	}

	ui.OnRotation(-3, 0)
	ui.Cycle()
	if len(s.enables) != 2 || s.enables[1] {
		t.Errorf("Delta -3 must toggle off once, got %v", s.enables)
	}

	// Detents accumulated across two events count together
	ui.OnRotation(1, 0)
	ui.OnRotation(1, 0)
	ui.Cycle()
	if len(s.enables) != 2 {
		t.Errorf("Accumulated delta 2 must not toggle, got %v", s.enables)
	}
}

func TestClickCyclesCursor(t *testing.T) {
	ui, display, _, console := newTestUI(t)

	var visited []int
	for i := 0; i < len(Fields); i++ {
		ui.OnClick()
		ui.Cycle()
		visited = append(visited, ui.Cursor())
	}

	want := []int{3, 4, 5, 0, 1, 2}
	for i := range want {
		if visited[i] != want[i] {
			t.Fatalf("Expected cursor sequence %v, got %v", want, visited)
		}
	}

	// Last move: old field 1 (4,5) repainted to erase its underline, new underline at (5,5)
	n := len(display.calls)
	tail := display.calls[n-3:]
	wantTail := []string{`text 4,5 "0"`, "cursor 5,5", "flush"}
	for i := range wantTail {
		if tail[i] != wantTail[i] {
			t.Errorf("Expected %q, got %q", wantTail, tail)
			break
		}
	}

	if strings.Count(console.String(), "Encoder clicked!\r\n") != len(Fields) {
		t.Errorf("Expected a console line per click, got %q", console.String())
	}
}

func TestCursorRedrawnWhenPaintedOver(t *testing.T) {
	ui, display, _, _ := newTestUI(t)

	ui.OnRotation(1, 10)
	ui.Cycle()

	want := []string{`text 5,5 "1"`, "cursor 5,5", "flush"}
	if len(display.calls) != len(want) {
		t.Fatalf("Expected %q, got %q", want, display.calls)
	}
	for i := range want {
		if display.calls[i] != want[i] {
			t.Errorf("Expected %q, got %q", want, display.calls)
			break
		}
	}
}

func TestSettersMarkDirtyOnlyOnChange(t *testing.T) {
	ui, display, s, _ := newTestUI(t)

	ui.SetLoadVoltage(0)
	ui.SetLoadCurrent(0)
	ui.SetEnabled(false)
	ui.Cycle()
	if len(display.calls) != 0 {
		t.Errorf("Unchanged values should not repaint, got %q", display.calls)
	}

	ui.SetLoadVoltage(12.5)
	ui.SetDesiredCurrent(1.5)
	ui.SetEnabled(true)
	ui.Cycle()

	if got := strings.TrimRight(ui.grid.Row(2), " "); got != "  12.500 V 0.0000 A" {
		t.Errorf("Unexpected measurement row %q", got)
	}
	if got := strings.TrimRight(ui.grid.Row(7), " "); got != "ON" {
		t.Errorf("Unexpected enable row %q", got)
	}
	if len(s.currents) != 0 || len(s.enables) != 0 {
		t.Errorf("Display setters must not publish, got %v %v", s.currents, s.enables)
	}
}

func TestFailedWriteIsRetried(t *testing.T) {
	ui, display, _, console := newTestUI(t)

	display.failWrites = 1
	ui.SetLoadVoltage(5)
	ui.Cycle()

	if !strings.Contains(console.String(), "ERROR: display:") {
		t.Errorf("Write failure not logged: %q", console.String())
	}
	if !ui.grid.Dirty() {
		t.Fatal("Failed span should stay dirty")
	}

	display.reset()
	ui.Cycle()
	if ui.grid.Dirty() {
		t.Error("Retry should clean the grid")
	}
	if len(display.calls) == 0 || display.calls[len(display.calls)-1] != "flush" {
		t.Errorf("Retry should end with a flush, got %q", display.calls)
	}
}

func TestListenerCalledOutsideLock(t *testing.T) {
	ui, _, s, _ := newTestUI(t)

	var seen float64
	s.onChange = func() {
		// Would deadlock if the UI lock were still held
		seen = ui.DesiredCurrent()
	}

	ui.OnRotation(5, 10)
	ui.Cycle()

	if seen != 0.05 {
		t.Errorf("Listener saw %v, want 0.05", seen)
	}
}
