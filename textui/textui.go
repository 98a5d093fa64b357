// Package textui is the character-grid user interface of the load.
//
// The UI task consumes encoder events, edits the desired current and the
// enable toggle, publishes changes to a Listener, and repaints only the
// cells that changed.
package textui

import (
	"fmt"
	"sync"
	"time"

	"eload/core"
)

// Display is the character sink the grid is committed to. Coordinates are
// in cells. Callers hold the bus lock across a sequence of calls.
type Display interface {
	// Clear blanks the whole panel buffer
	Clear() error
	// WriteText paints text starting at cell (x, y), erasing the cells first
	WriteText(x, y int, text string) error
	// DrawCursor underlines cell (x, y)
	DrawCursor(x, y int) error
	// Flush pushes the panel buffer to the hardware
	Flush() error
}

// Listener receives settings edited through the UI
type Listener interface {
	OnDesiredCurrentChanged(amps float64)
	OnEnabledChanged(enabled bool)
}

// MinColumns and MinRows is the smallest grid the main screen layout fits
const (
	MinColumns = 21
	MinRows    = 8
)

// Config holds the UI geometry and timing
type Config struct {
	Columns    int
	Rows       int
	MaxCurrent float64
	Period     time.Duration
	Splash     time.Duration
	Title      string
	Version    string
}

// DefaultConfig is a 128x64 panel with a 6x8 font
func DefaultConfig() Config {
	return Config{
		Columns:    128 / 6,
		Rows:       64 / 8,
		MaxCurrent: 3.0,
		Period:     15 * time.Millisecond,
		Splash:     2 * time.Second,
		Title:      "Electronic Load V2",
	}
}

// TextUI owns the screen. Fields below mu are shared with the encoder
// event task and the control task; the rest belong to the UI task.
type TextUI struct {
	cfg     Config
	display Display
	shared  *core.Shared
	console *core.Console

	mu       sync.Mutex
	listener Listener
	delta    int
	clicked  bool
	voltage  float64
	current  float64
	desired  float64
	enabled  bool
	dirty    bool

	// UI task only
	grid        *Grid
	cursor      int
	cursorStale bool
	needFlush   bool
}

// New creates the UI. Nothing touches the display until Start.
func New(cfg Config, display Display, shared *core.Shared, console *core.Console) *TextUI {
	return &TextUI{
		cfg:     cfg,
		display: display,
		shared:  shared,
		console: console,
		grid:    NewGrid(cfg.Columns, cfg.Rows),
		cursor:  -1,
	}
}

// SetListener binds the settings receiver; nil detaches it
func (ui *TextUI) SetListener(l Listener) {
	ui.mu.Lock()
	ui.listener = l
	ui.mu.Unlock()
}

// OnRotation accumulates encoder detents for the next UI cycle
func (ui *TextUI) OnRotation(delta int, rate float64) {
	ui.mu.Lock()
	ui.delta += delta
	ui.mu.Unlock()
}

// OnClick latches a click for the next UI cycle
func (ui *TextUI) OnClick() {
	ui.mu.Lock()
	ui.clicked = true
	ui.mu.Unlock()
}

// SetLoadVoltage updates the measured voltage shown on screen
func (ui *TextUI) SetLoadVoltage(v float64) {
	ui.mu.Lock()
	if v != ui.voltage {
		ui.voltage = v
		ui.dirty = true
	}
	ui.mu.Unlock()
}

// SetLoadCurrent updates the measured current shown on screen
func (ui *TextUI) SetLoadCurrent(i float64) {
	ui.mu.Lock()
	if i != ui.current {
		ui.current = i
		ui.dirty = true
	}
	ui.mu.Unlock()
}

// SetDesiredCurrent sets the displayed setpoint without notifying the listener
func (ui *TextUI) SetDesiredCurrent(amps float64) {
	ui.mu.Lock()
	if amps != ui.desired {
		ui.desired = amps
		ui.dirty = true
	}
	ui.mu.Unlock()
}

// SetEnabled sets the displayed output state without notifying the listener
func (ui *TextUI) SetEnabled(enabled bool) {
	ui.mu.Lock()
	if enabled != ui.enabled {
		ui.enabled = enabled
		ui.dirty = true
	}
	ui.mu.Unlock()
}

// DesiredCurrent returns the setpoint as currently shown
func (ui *TextUI) DesiredCurrent() float64 {
	ui.mu.Lock()
	defer ui.mu.Unlock()
	return ui.desired
}

// Enabled returns the output state as currently shown
func (ui *TextUI) Enabled() bool {
	ui.mu.Lock()
	defer ui.mu.Unlock()
	return ui.enabled
}

// Cursor returns the selected index into Fields, or -1 before Start.
// The cursor belongs to the UI task: call it from that task or after the
// task has stopped.
func (ui *TextUI) Cursor() int {
	return ui.cursor
}

// Start shows the splash screen, waits, then draws the main screen with the
// cursor on its initial field.
func (ui *TextUI) Start() error {
	if err := ui.clear(); err != nil {
		return err
	}
	ui.splash()
	if err := ui.commit(); err != nil {
		return err
	}

	time.Sleep(ui.cfg.Splash)

	if err := ui.clear(); err != nil {
		return err
	}
	ui.draw()
	ui.moveCursor(InitialCursor)
	return ui.commit()
}

// Run starts the UI and loops Cycle forever. A display that cannot be
// brought up ends the task.
func (ui *TextUI) Run() {
	if err := ui.Start(); err != nil {
		ui.console.Errorf("ui: start: %v", err)
		return
	}
	core.Every("ui", ui.cfg.Period, ui.console, ui.Cycle)
}

// Cycle runs one pass of the UI task
func (ui *TextUI) Cycle() {
	ui.mu.Lock()
	delta, clicked := ui.delta, ui.clicked
	ui.delta, ui.clicked = 0, false
	ui.mu.Unlock()

	if clicked {
		ui.console.Infof("Encoder clicked!")
		ui.moveCursor(NextCursor(ui.cursor))
	}

	if delta != 0 {
		ui.console.Infof("Encoder moved %d clicks", delta)
		ui.edit(delta)
	}

	ui.mu.Lock()
	redraw := ui.dirty
	ui.dirty = false
	ui.mu.Unlock()

	if redraw {
		ui.draw()
	}

	if ui.grid.Dirty() || ui.cursorStale || ui.needFlush {
		if err := ui.commit(); err != nil {
			ui.console.Errorf("display: %v", err)
		}
	}
}

// edit applies detents to the selected field and publishes any change
func (ui *TextUI) edit(delta int) {
	if ui.cursor < 0 {
		return
	}
	f := Fields[ui.cursor]

	ui.mu.Lock()
	listener := ui.listener
	var currentChanged, enableChanged bool
	switch f.Kind {
	case FieldSetpoint:
		v := AdjustSetpoint(ui.desired, delta, f.Step, ui.cfg.MaxCurrent)
		if v != ui.desired {
			ui.desired = v
			currentChanged = true
		}
	case FieldEnable:
		if TogglesEnable(delta) {
			ui.enabled = !ui.enabled
			enableChanged = true
		}
	}
	desired, enabled := ui.desired, ui.enabled
	if currentChanged || enableChanged {
		ui.dirty = true
	}
	ui.mu.Unlock()

	if listener == nil {
		return
	}
	if currentChanged {
		listener.OnDesiredCurrentChanged(desired)
	}
	if enableChanged {
		listener.OnEnabledChanged(enabled)
	}
}

func (ui *TextUI) splash() {
	_, rows := ui.grid.Size()
	y := (rows - 5) / 2
	ui.centre(y, ui.cfg.Title)
	if ui.cfg.Version != "" {
		ui.centre(y+2, ui.cfg.Version)
	}
	ui.centre(y+4, fmt.Sprintf("max %.1f A", ui.cfg.MaxCurrent))
}

func (ui *TextUI) centre(y int, text string) {
	cols, _ := ui.grid.Size()
	x := (cols - len(text)) / 2
	if x < 0 {
		x = 0
	}
	ui.grid.Write(x, y, text)
}

// draw renders the main screen into the grid from a snapshot of the values
func (ui *TextUI) draw() {
	ui.mu.Lock()
	voltage, current := ui.voltage, ui.current
	desired, enabled := ui.desired, ui.enabled
	ui.mu.Unlock()

	ui.centre(0, ui.cfg.Title)
	ui.grid.Printf(2, 2, "%6.3f V", voltage)
	ui.grid.Printf(11, 2, "%6.4f A", current)
	ui.grid.Write(0, 4, "SET")
	ui.grid.Printf(2, 5, "%6.4f A", desired)
	if enabled {
		ui.grid.Write(0, 7, "ON ")
	} else {
		ui.grid.Write(0, 7, "OFF")
	}
}

// moveCursor repaints the old cursor cell to erase its underline and
// schedules the underline at the new field.
func (ui *TextUI) moveCursor(idx int) {
	if ui.cursor >= 0 {
		old := Fields[ui.cursor]
		ui.grid.Mark(old.Y, old.X, old.X)
	}
	ui.cursor = idx
	ui.cursorStale = true
}

// commit writes the dirty spans, redraws the cursor if it was painted over
// and flushes, all under the bus lock.
func (ui *TextUI) commit() error {
	ui.shared.Bus.Lock()
	defer ui.shared.Bus.Unlock()

	painted, err := ui.grid.Flush(ui.display.WriteText)
	if len(painted) > 0 {
		ui.needFlush = true
	}
	if ui.cursor >= 0 {
		f := Fields[ui.cursor]
		for _, r := range painted {
			if r.Contains(f.X, f.Y) {
				ui.cursorStale = true
			}
		}
	}
	if err != nil {
		return err
	}

	if ui.cursor >= 0 {
		f := Fields[ui.cursor]
		if ui.cursorStale {
			if err := ui.display.DrawCursor(f.X, f.Y); err != nil {
				return fmt.Errorf("cursor: %w", err)
			}
			ui.cursorStale = false
			ui.needFlush = true
		}
	}

	if !ui.needFlush {
		return nil
	}
	if err := ui.display.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	ui.needFlush = false
	return nil
}

func (ui *TextUI) clear() error {
	ui.grid.Clear()

	ui.shared.Bus.Lock()
	defer ui.shared.Bus.Unlock()

	if err := ui.display.Clear(); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	if err := ui.display.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	ui.needFlush = false
	return nil
}
