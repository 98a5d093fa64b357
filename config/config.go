// Package config is the YAML board configuration of the load.
//
// Defaults and validation live here so the rest of the code can assume a
// well-formed config. The firmware embeds its board file; the host monitor
// reads the same file for the console settings.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"eload/core"
	"eload/encoder"
	"eload/load"
	"eload/textui"
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid config")

// Config is the top-level board configuration
type Config struct {
	Encoder EncoderConfig `yaml:"encoder"`
	I2C     I2CConfig     `yaml:"i2c"`
	Display DisplayConfig `yaml:"display"`
	DAC     DeviceConfig  `yaml:"dac"`
	ADC     DeviceConfig  `yaml:"adc"`
	Load    LoadConfig    `yaml:"load"`
	UI      UIConfig      `yaml:"ui"`
	Timer   TimerConfig   `yaml:"timer"`
	Console ConsoleConfig `yaml:"console"`
	Logging LoggingConfig `yaml:"logging"`
}

type EncoderConfig struct {
	APin       uint32 `yaml:"a_pin"`
	BPin       uint32 `yaml:"b_pin"`
	ButtonPin  uint32 `yaml:"button_pin"`
	Detents    int    `yaml:"detents"`
	DebounceUS int    `yaml:"debounce_us"`
	PeriodMS   int    `yaml:"period_ms"`
	// Invert selects active-high A and button lines
	Invert bool `yaml:"invert,omitempty"`
}

type I2CConfig struct {
	Bus         uint8  `yaml:"bus"`
	FrequencyHz uint32 `yaml:"frequency_hz"`
	SDAPin      uint32 `yaml:"sda_pin"`
	SCLPin      uint32 `yaml:"scl_pin"`
}

type DisplayConfig struct {
	Address    uint16 `yaml:"address"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	CellWidth  int    `yaml:"cell_width"`
	CellHeight int    `yaml:"cell_height"`
	FontOffset int    `yaml:"font_offset"`
}

type DeviceConfig struct {
	Address uint16 `yaml:"address"`
}

type LoadConfig struct {
	SenseOhms      float64 `yaml:"sense_ohms"`
	AmpGain        float64 `yaml:"amp_gain"`
	DACLSB         float64 `yaml:"dac_lsb_volts"`
	ADCLSB         float64 `yaml:"adc_lsb_volts"`
	VoltageDivider float64 `yaml:"voltage_divider"`
	MaxCurrent     float64 `yaml:"max_current"`
	PeriodMS       int     `yaml:"period_ms"`
	InitSettleMS   int     `yaml:"init_settle_ms"`
}

type UIConfig struct {
	PeriodMS int    `yaml:"period_ms"`
	SplashMS int    `yaml:"splash_ms"`
	Title    string `yaml:"title"`
}

type TimerConfig struct {
	TickUS   int `yaml:"tick_us"`
	Capacity int `yaml:"capacity"`
}

type ConsoleConfig struct {
	Baud int `yaml:"baud"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns a fully-populated config for the Pico board
func Default() Config {
	return Config{
		Encoder: EncoderConfig{
			APin:       16,
			BPin:       17,
			ButtonPin:  18,
			Detents:    24,
			DebounceUS: 250,
			PeriodMS:   15,
		},
		I2C: I2CConfig{
			Bus:         0,
			FrequencyHz: 400000,
			SDAPin:      4,
			SCLPin:      5,
		},
		Display: DisplayConfig{
			Address:    0x3c,
			Width:      128,
			Height:     64,
			CellWidth:  6,
			CellHeight: 8,
			FontOffset: 6,
		},
		DAC: DeviceConfig{Address: 0x60},
		ADC: DeviceConfig{Address: 0x36},
		Load: LoadConfig{
			SenseOhms:      0.01,
			AmpGain:        67,
			DACLSB:         0.0005,
			ADCLSB:         0.0005,
			VoltageDivider: 15,
			MaxCurrent:     3.0,
			PeriodMS:       500,
			InitSettleMS:   200,
		},
		UI: UIConfig{
			PeriodMS: 15,
			SplashMS: 2000,
			Title:    "Electronic Load V2",
		},
		Timer: TimerConfig{
			TickUS:   50,
			Capacity: 8,
		},
		Console: ConsoleConfig{Baud: 115200},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Parse decodes YAML on top of the defaults. Unknown fields and trailing
// documents are rejected.
func Parse(b []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config yaml: %w", err)
	}

	// A node accepts any document, so KnownFields cannot hide one
	var trailing yaml.Node
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config yaml: unexpected trailing document")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads and parses a YAML config file
func LoadFile(path string) (Config, error) {
	if path == "" {
		return Config{}, errors.New("config path is empty")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	return Parse(b)
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate checks config invariants
func (c *Config) Validate() error {
	e := c.Encoder
	if e.APin == e.BPin || e.APin == e.ButtonPin || e.BPin == e.ButtonPin {
		return invalid("encoder pins must be distinct")
	}
	if e.Detents <= 0 {
		return invalid("encoder.detents must be > 0")
	}
	if e.DebounceUS <= 0 {
		return invalid("encoder.debounce_us must be > 0")
	}
	if e.PeriodMS <= 0 {
		return invalid("encoder.period_ms must be > 0")
	}

	if c.I2C.FrequencyHz == 0 || c.I2C.FrequencyHz > 1000000 {
		return invalid("i2c.frequency_hz must be between 1 and 1000000")
	}

	addrs := map[uint16]string{}
	for _, d := range []struct {
		name string
		addr uint16
	}{
		{"display", c.Display.Address},
		{"dac", c.DAC.Address},
		{"adc", c.ADC.Address},
	} {
		if d.addr == 0 || d.addr > 0x7f {
			return invalid("%s.address %#x is not a 7-bit address", d.name, d.addr)
		}
		if other, ok := addrs[d.addr]; ok {
			return invalid("%s and %s share address %#x", other, d.name, d.addr)
		}
		addrs[d.addr] = d.name
	}

	dp := c.Display
	if dp.CellWidth <= 0 || dp.CellHeight <= 0 {
		return invalid("display cell size must be > 0")
	}
	if dp.Width < dp.CellWidth || dp.Height < dp.CellHeight {
		return invalid("display must fit at least one cell")
	}
	if dp.FontOffset < 0 || dp.FontOffset >= dp.CellHeight {
		return invalid("display.font_offset must be inside the cell")
	}
	cols, rows := dp.Width/dp.CellWidth, dp.Height/dp.CellHeight
	if cols < textui.MinColumns || rows < textui.MinRows {
		return invalid("display grid %dx%d is smaller than the %dx%d screen layout",
			cols, rows, textui.MinColumns, textui.MinRows)
	}

	l := c.Load
	if l.SenseOhms <= 0 || l.AmpGain <= 0 || l.DACLSB <= 0 || l.ADCLSB <= 0 || l.VoltageDivider <= 0 {
		return invalid("load measurement constants must be > 0")
	}
	if l.MaxCurrent <= 0 {
		return invalid("load.max_current must be > 0")
	}
	if l.PeriodMS <= 0 {
		return invalid("load.period_ms must be > 0")
	}
	if l.InitSettleMS < 0 {
		return invalid("load.init_settle_ms must be >= 0")
	}

	if c.UI.PeriodMS <= 0 {
		return invalid("ui.period_ms must be > 0")
	}
	if c.UI.SplashMS < 0 {
		return invalid("ui.splash_ms must be >= 0")
	}

	if c.Timer.TickUS <= 0 {
		return invalid("timer.tick_us must be > 0")
	}
	if c.Timer.Capacity < 2 {
		return invalid("timer.capacity must hold both debounce timers")
	}

	if c.Console.Baud <= 0 {
		return invalid("console.baud must be > 0")
	}

	if _, err := core.ParseLevel(c.Logging.Level); err != nil {
		return invalid("logging.level: %v", err)
	}
	return nil
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

// EncoderConfig converts to the encoder's settings
func (c *Config) EncoderConfig() encoder.Config {
	return encoder.Config{
		APin:      core.GPIOPin(c.Encoder.APin),
		BPin:      core.GPIOPin(c.Encoder.BPin),
		ButtonPin: core.GPIOPin(c.Encoder.ButtonPin),
		Detents:   c.Encoder.Detents,
		Debounce:  time.Duration(c.Encoder.DebounceUS) * time.Microsecond,
		Period:    ms(c.Encoder.PeriodMS),
		Invert:    c.Encoder.Invert,
	}
}

// LoadConfig converts to the control task settings
func (c *Config) LoadConfig() load.Config {
	return load.Config{
		SenseOhms:      c.Load.SenseOhms,
		AmpGain:        c.Load.AmpGain,
		DACLSB:         c.Load.DACLSB,
		ADCLSB:         c.Load.ADCLSB,
		VoltageDivider: c.Load.VoltageDivider,
		Period:         ms(c.Load.PeriodMS),
		InitSettle:     ms(c.Load.InitSettleMS),
	}
}

// UIConfig converts to the UI settings. version is shown on the splash.
func (c *Config) UIConfig(version string) textui.Config {
	return textui.Config{
		Columns:    c.Display.Width / c.Display.CellWidth,
		Rows:       c.Display.Height / c.Display.CellHeight,
		MaxCurrent: c.Load.MaxCurrent,
		Period:     ms(c.UI.PeriodMS),
		Splash:     ms(c.UI.SplashMS),
		Title:      c.UI.Title,
		Version:    version,
	}
}

// LogLevel returns the parsed console level
func (c *Config) LogLevel() core.Level {
	level, err := core.ParseLevel(c.Logging.Level)
	if err != nil {
		return core.LevelInfo
	}
	return level
}

// TimerTick is the scheduler dispatch interval
func (c *Config) TimerTick() time.Duration {
	return time.Duration(c.Timer.TickUS) * time.Microsecond
}
