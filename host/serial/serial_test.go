package serial

import (
	"io"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/dev/ttyACM0")
	if cfg.Device != "/dev/ttyACM0" || cfg.Baud != 115200 || cfg.ReadTimeout != 100 {
		t.Errorf("Unexpected defaults %+v", cfg)
	}
}

func TestOpenRejectsEmptyConfig(t *testing.T) {
	if _, err := Open(nil); err == nil {
		t.Error("Expected an error for a nil config")
	}
	if _, err := Open(&Config{}); err == nil {
		t.Error("Expected an error without a device")
	}
}

func TestPortIsAnyReadCloser(t *testing.T) {
	var p Port = io.NopCloser(strings.NewReader("Encoder clicked!\r\n"))
	buf := make([]byte, 7)
	if n, err := p.Read(buf); err != nil || string(buf[:n]) != "Encoder" {
		t.Errorf("Read got %q, %v", buf[:n], err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
