// Package monitor follows the load's console from a host: it splits the
// byte stream into lines, classifies them by level and decodes the
// periodic measurement lines.
package monitor

import (
	"bufio"
	"context"
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"eload/core"
)

// Sample is one decoded measurement line
type Sample struct {
	At         time.Time
	VoltageRaw uint16
	// Volts is the load voltage after the divider
	Volts      float64
	CurrentRaw uint16
	Milliamps  float64
}

// Line is one console line
type Line struct {
	Text   string
	Level  core.Level
	Sample *Sample
}

var measurementRE = regexp.MustCompile(
	`AIN0:\s*(\d+)\s*\[\s*[-\d.]+V\]\s*\(\s*(-?[\d.]+)V\)\s*AIN1:\s*(\d+)\s*\[\s*[-\d.]+V\]\s*\(\s*(-?[\d.]+)mA\)`)

// ParseMeasurement decodes an "AIN0: ... AIN1: ..." line
func ParseMeasurement(line string) (Sample, bool) {
	m := measurementRE.FindStringSubmatch(line)
	if m == nil {
		return Sample{}, false
	}
	rawV, err1 := strconv.ParseUint(m[1], 10, 16)
	volts, err2 := strconv.ParseFloat(m[2], 64)
	rawI, err3 := strconv.ParseUint(m[3], 10, 16)
	ma, err4 := strconv.ParseFloat(m[4], 64)
	if err := errors.Join(err1, err2, err3, err4); err != nil {
		return Sample{}, false
	}
	return Sample{
		VoltageRaw: uint16(rawV),
		Volts:      volts,
		CurrentRaw: uint16(rawI),
		Milliamps:  ma,
	}, true
}

// LevelOf classifies a line by the prefix the firmware console writes
func LevelOf(line string) core.Level {
	switch {
	case strings.HasPrefix(line, "ERROR: "):
		return core.LevelError
	case strings.HasPrefix(line, "WARN: "):
		return core.LevelWarn
	case strings.HasPrefix(line, "DEBUG: "):
		return core.LevelDebug
	default:
		return core.LevelInfo
	}
}

// Scanner splits a console stream into lines
type Scanner struct {
	// Follow retries io.EOF and empty reads, which is how serial read
	// timeouts surface. Without it EOF ends the scan.
	Follow bool
	Now    func() time.Time
}

// Run reads r and sends each complete line to out until ctx is done or r
// ends. A partial line is kept until its terminator arrives.
func (sc Scanner) Run(ctx context.Context, r io.Reader, out chan<- Line) error {
	now := sc.Now
	if now == nil {
		now = time.Now
	}

	br := bufio.NewReader(r)
	var partial strings.Builder
	for {
		if ctx.Err() != nil {
			return nil
		}

		chunk, err := br.ReadString('\n')
		partial.WriteString(chunk)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			idle := errors.Is(err, io.EOF) || errors.Is(err, io.ErrNoProgress)
			if idle && sc.Follow {
				continue
			}
			if idle {
				err = nil
			}
			if partial.Len() > 0 {
				sc.emit(ctx, partial.String(), now, out)
			}
			return err
		}

		text := partial.String()
		partial.Reset()
		if !sc.emit(ctx, text, now, out) {
			return nil
		}
	}
}

func (sc Scanner) emit(ctx context.Context, raw string, now func() time.Time, out chan<- Line) bool {
	text := strings.TrimRight(raw, "\r\n")
	if text == "" {
		return true
	}

	line := Line{Text: text, Level: LevelOf(text)}
	if s, ok := ParseMeasurement(text); ok {
		s.At = now()
		line.Sample = &s
	}

	select {
	case out <- line:
		return true
	case <-ctx.Done():
		return false
	}
}
