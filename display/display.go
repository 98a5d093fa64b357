// Package display renders the character grid onto a pixel panel with
// tinyfont. Every character sits in a fixed cell so the grid stays aligned
// whatever the glyph advance of the font.
package display

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// Panel is a monochrome pixel display such as the SSD1306
type Panel interface {
	drivers.Displayer
	FillRectangle(x, y, width, height int16, c color.RGBA) error
	ClearDisplay()
}

// Config sets the character cell geometry
type Config struct {
	CellWidth  int16
	CellHeight int16
	// FontOffset is the baseline offset from the top of a cell
	FontOffset int16
	// CursorHeight is the underline thickness at the bottom of a cell
	CursorHeight int16
}

// DefaultConfig is a 6x8 cell with a 2 pixel underline
func DefaultConfig() Config {
	return Config{
		CellWidth:    6,
		CellHeight:   8,
		FontOffset:   6,
		CursorHeight: 2,
	}
}

var (
	white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	black = color.RGBA{A: 0xff}
)

// Renderer draws text cells. It does no locking; the UI holds the bus lock
// around every call.
type Renderer struct {
	cfg   Config
	panel Panel
	font  tinyfont.Fonter
}

// New creates a renderer using the Proggy Tiny font
func New(panel Panel, cfg Config) *Renderer {
	return &Renderer{
		cfg:   cfg,
		panel: panel,
		font:  &proggy.TinySZ8pt7b,
	}
}

// Grid returns how many character cells fit on the panel
func (r *Renderer) Grid() (cols, rows int) {
	w, h := r.panel.Size()
	return int(w / r.cfg.CellWidth), int(h / r.cfg.CellHeight)
}

// Clear blanks the panel
func (r *Renderer) Clear() error {
	r.panel.ClearDisplay()
	return nil
}

// WriteText erases the cells under text and draws it starting at cell (x, y)
func (r *Renderer) WriteText(x, y int, text string) error {
	px := int16(x) * r.cfg.CellWidth
	py := int16(y) * r.cfg.CellHeight

	err := r.panel.FillRectangle(px, py, int16(len(text))*r.cfg.CellWidth, r.cfg.CellHeight, black)
	if err != nil {
		return err
	}

	for i := 0; i < len(text); i++ {
		if text[i] == ' ' {
			continue
		}
		cx := px + int16(i)*r.cfg.CellWidth
		tinyfont.WriteLine(r.panel, r.font, cx, py+r.cfg.FontOffset, text[i:i+1], white)
	}
	return nil
}

// DrawCursor underlines cell (x, y)
func (r *Renderer) DrawCursor(x, y int) error {
	px := int16(x) * r.cfg.CellWidth
	py := int16(y)*r.cfg.CellHeight + r.cfg.CellHeight - r.cfg.CursorHeight
	return r.panel.FillRectangle(px, py, r.cfg.CellWidth, r.cfg.CursorHeight, white)
}

// Flush sends the frame buffer to the panel
func (r *Renderer) Flush() error {
	return r.panel.Display()
}
