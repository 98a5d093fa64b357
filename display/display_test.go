package display

import (
	"errors"
	"image/color"
	"testing"
)

type fakePanel struct {
	w, h     int16
	pix      map[[2]int16]bool
	displays int
	fillErr  error
}

func newFakePanel() *fakePanel {
	return &fakePanel{w: 128, h: 64, pix: make(map[[2]int16]bool)}
}

func (p *fakePanel) Size() (int16, int16) { return p.w, p.h }

func (p *fakePanel) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= p.w || y >= p.h {
		return
	}
	p.pix[[2]int16{x, y}] = c.R != 0
}

func (p *fakePanel) Display() error {
	p.displays++
	return nil
}

func (p *fakePanel) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	if p.fillErr != nil {
		return p.fillErr
	}
	for i := x; i < x+width; i++ {
		for j := y; j < y+height; j++ {
			p.SetPixel(i, j, c)
		}
	}
	return nil
}

func (p *fakePanel) ClearDisplay() {
	p.pix = make(map[[2]int16]bool)
}

func (p *fakePanel) lit(x0, y0, x1, y1 int16) int {
	n := 0
	for k, on := range p.pix {
		if on && k[0] >= x0 && k[0] < x1 && k[1] >= y0 && k[1] < y1 {
			n++
		}
	}
	return n
}

func (p *fakePanel) litTotal() int {
	return p.lit(0, 0, p.w, p.h)
}

func TestGridSize(t *testing.T) {
	r := New(newFakePanel(), DefaultConfig())
	cols, rows := r.Grid()
	if cols != 21 || rows != 8 {
		t.Errorf("Expected 21x8 cells, got %dx%d", cols, rows)
	}
}

func TestWriteTextDrawsNearCells(t *testing.T) {
	p := newFakePanel()
	r := New(p, DefaultConfig())

	if err := r.WriteText(2, 5, "0.5"); err != nil {
		t.Fatal(err)
	}

	// Cells (2..4, 5) span x 12..29, y 40..47; allow the font a little
	// room above and below the cell
	near := p.lit(10, 32, 32, 56)
	if near == 0 {
		t.Fatal("Expected glyph pixels at cells (2..4, 5)")
	}
	if near != p.litTotal() {
		t.Errorf("Glyphs drawn far from their cells: %d of %d pixels near", near, p.litTotal())
	}
}

func TestWriteTextErasesFirst(t *testing.T) {
	p := newFakePanel()
	r := New(p, DefaultConfig())

	r.WriteText(0, 7, "ON ")
	r.DrawCursor(0, 7)
	if err := r.WriteText(0, 7, "   "); err != nil {
		t.Fatal(err)
	}
	if n := p.lit(0, 56, 18, 64); n != 0 {
		t.Errorf("Blank text should leave the cells dark, %d pixels lit", n)
	}
}

func TestDrawCursor(t *testing.T) {
	p := newFakePanel()
	r := New(p, DefaultConfig())

	if err := r.DrawCursor(5, 5); err != nil {
		t.Fatal(err)
	}
	// Bottom two rows of cell (5,5): x 30..35, y 46..47
	if n := p.lit(30, 46, 36, 48); n != 12 {
		t.Errorf("Expected a 6x2 underline, got %d pixels", n)
	}
	if p.litTotal() != 12 {
		t.Errorf("Underline drew outside the cell")
	}
}

func TestFlushAndErrors(t *testing.T) {
	p := newFakePanel()
	r := New(p, DefaultConfig())

	if err := r.Flush(); err != nil || p.displays != 1 {
		t.Errorf("Flush should push one frame, got %d (%v)", p.displays, err)
	}

	boom := errors.New("i2c timeout")
	p.fillErr = boom
	if err := r.WriteText(0, 0, "x"); !errors.Is(err, boom) {
		t.Errorf("Expected panel error, got %v", err)
	}
}
