package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"eload/core"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config invalid: %v", err)
	}
}

func TestBoardFileMatchesDefault(t *testing.T) {
	cfg, err := LoadFile(filepath.Join("..", "targets", "rp2040", "board.yaml"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg != Default() {
		t.Errorf("board.yaml drifted from Default():\n%+v\n%+v", cfg, Default())
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
encoder:
  a_pin: 2
  b_pin: 3
  button_pin: 4
  invert: true
logging:
  level: debug
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	enc := cfg.EncoderConfig()
	if enc.APin != 2 || enc.BPin != 3 || enc.ButtonPin != 4 || !enc.Invert {
		t.Errorf("Encoder overrides not applied: %+v", enc)
	}
	if enc.Detents != 24 || enc.Debounce != 250*time.Microsecond || enc.Period != 15*time.Millisecond {
		t.Errorf("Encoder defaults lost: %+v", enc)
	}
	if cfg.LogLevel() != core.LevelDebug {
		t.Errorf("Expected debug level, got %v", cfg.LogLevel())
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		invalid bool
	}{
		{"unknown field", "encoder:\n  c_pin: 3\n", false},
		{"trailing document", "logging:\n  level: info\n---\nlogging:\n  level: debug\n", false},
		{"trailing scalar", "logging:\n  level: info\n---\n42\n", false},
		{"trailing empty mapping", "logging:\n  level: info\n---\n{}\n", false},
		{"shared pins", "encoder:\n  a_pin: 17\n", true},
		{"zero detents", "encoder:\n  detents: 0\n", true},
		{"address clash", "dac:\n  address: 0x36\n", true},
		{"ten bit address", "display:\n  address: 0x1ff\n", true},
		{"bad level", "logging:\n  level: loud\n", true},
		{"tiny timer queue", "timer:\n  capacity: 1\n", true},
		{"font offset", "display:\n  font_offset: 8\n", true},
		{"short panel", "display:\n  height: 32\n", true},
		{"wide cells", "display:\n  cell_width: 8\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Expected error")
			}
			if errors.Is(err, ErrInvalid) != tt.invalid {
				t.Errorf("errors.Is(ErrInvalid) = %v for %v", !tt.invalid, err)
			}
		})
	}
}

func TestParseAcceptsExplicitDocumentEnd(t *testing.T) {
	if _, err := Parse([]byte("---\nlogging:\n  level: warn\n...\n")); err != nil {
		t.Errorf("Parse failed: %v", err)
	}
}

func TestConversions(t *testing.T) {
	cfg := Default()

	ui := cfg.UIConfig("v1.2.3")
	if ui.Columns != 21 || ui.Rows != 8 {
		t.Errorf("Expected 21x8 grid, got %dx%d", ui.Columns, ui.Rows)
	}
	if ui.MaxCurrent != 3.0 || ui.Splash != 2*time.Second || ui.Version != "v1.2.3" {
		t.Errorf("Unexpected UI config %+v", ui)
	}

	ld := cfg.LoadConfig()
	if ld.Period != 500*time.Millisecond || ld.InitSettle != 200*time.Millisecond {
		t.Errorf("Unexpected load timing %+v", ld)
	}

	if cfg.TimerTick() != 50*time.Microsecond {
		t.Errorf("Unexpected timer tick %v", cfg.TimerTick())
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(""); err == nil {
		t.Error("Expected error for empty path")
	}

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "read config file") {
		t.Errorf("Expected read error, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("encoder: [1, 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("Expected decode error")
	}
}
