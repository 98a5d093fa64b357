package monitor

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"eload/core"
)

// Printer writes console lines for a human, or only samples as CSV
type Printer struct {
	w      io.Writer
	csv    *csv.Writer
	level  core.Level
	header bool
}

// NewPrinter echoes lines at or above level. With asCSV set only samples
// are written, one row each.
func NewPrinter(w io.Writer, level core.Level, asCSV bool) *Printer {
	p := &Printer{w: w, level: level}
	if asCSV {
		p.csv = csv.NewWriter(w)
	}
	return p
}

// Print writes one line
func (p *Printer) Print(l Line) error {
	if p.csv == nil {
		if l.Level > p.level {
			return nil
		}
		_, err := fmt.Fprintln(p.w, l.Text)
		return err
	}

	if l.Sample == nil {
		return nil
	}
	if !p.header {
		p.header = true
		if err := p.csv.Write([]string{"time", "ain0", "volts", "ain1", "milliamps"}); err != nil {
			return err
		}
	}
	s := l.Sample
	err := p.csv.Write([]string{
		s.At.Format(time.RFC3339Nano),
		strconv.Itoa(int(s.VoltageRaw)),
		strconv.FormatFloat(s.Volts, 'f', 3, 64),
		strconv.Itoa(int(s.CurrentRaw)),
		strconv.FormatFloat(s.Milliamps, 'f', 3, 64),
	})
	if err != nil {
		return err
	}
	p.csv.Flush()
	return p.csv.Error()
}
