package core

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Level is a console log level
type Level uint8

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

var levelNames = [...]string{"error", "warn", "info", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "level(" + itoa(int(l)) + ")"
}

// ParseLevel converts a config string into a Level
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	if name == "warning" {
		return LevelWarn, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Console writes log lines to the serial console. Every line is written
// while holding the shared console lock so lines from different tasks never
// interleave. It must not be used from interrupt context.
type Console struct {
	w     io.Writer
	lock  sync.Locker
	level Level
}

// NewConsole creates a console writing to w. A nil lock gets a private mutex.
func NewConsole(w io.Writer, lock sync.Locker, level Level) *Console {
	if lock == nil {
		lock = new(sync.Mutex)
	}
	return &Console{w: w, lock: lock, level: level}
}

// Level returns the current threshold
func (c *Console) Level() Level {
	return c.level
}

// Enabled reports whether lines at l are written
func (c *Console) Enabled(l Level) bool {
	return c != nil && c.w != nil && l <= c.level
}

func (c *Console) Errorf(format string, args ...interface{}) {
	c.logf(LevelError, "ERROR: ", format, args)
}

func (c *Console) Warnf(format string, args ...interface{}) {
	c.logf(LevelWarn, "WARN: ", format, args)
}

// Infof writes an unprefixed line; this is the regular console output
func (c *Console) Infof(format string, args ...interface{}) {
	c.logf(LevelInfo, "", format, args)
}

func (c *Console) Debugf(format string, args ...interface{}) {
	c.logf(LevelDebug, "DEBUG: ", format, args)
}

// Write emits p verbatim under the console lock, ignoring the level
func (c *Console) Write(p []byte) (int, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.w.Write(p)
}

func (c *Console) logf(l Level, prefix, format string, args []interface{}) {
	if !c.Enabled(l) {
		return
	}
	line := prefix + fmt.Sprintf(format, args...) + "\r\n"

	c.lock.Lock()
	defer c.lock.Unlock()
	// Console write errors have nowhere to go
	_, _ = io.WriteString(c.w, line)
}
