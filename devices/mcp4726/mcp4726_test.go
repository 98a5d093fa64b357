package mcp4726

import (
	"errors"
	"testing"

	"tinygo.org/x/drivers/tester"
)

func newDevice(t *testing.T, cmds ...[]byte) (*Device, *tester.I2CDeviceCmd) {
	mock := tester.NewI2CDeviceCmd(t, Address)
	mock.Commands = make(map[uint8]*tester.Cmd)
	for i, c := range cmds {
		mask := make([]byte, len(c))
		for j := range mask {
			mask[j] = 0xff
		}
		mock.Commands[uint8(i)] = &tester.Cmd{Command: c, Mask: mask}
	}

	bus := tester.NewI2CBus(t)
	bus.AddDevice(mock)
	return New(bus), mock
}

func TestWriteDAC(t *testing.T) {
	dev, mock := newDevice(t, []byte{0x07, 0xda}, []byte{0x30, 0x00})

	if err := dev.WriteDAC(2010, PowerRun); err != nil {
		t.Fatalf("WriteDAC failed: %v", err)
	}
	if err := dev.WriteDAC(0, Power500K); err != nil {
		t.Fatalf("WriteDAC failed: %v", err)
	}

	for i, c := range mock.Commands {
		if c.Invocations != 1 {
			t.Errorf("Command %d (% x): expected 1 invocation, got %d", i, c.Command, c.Invocations)
		}
	}

	if err := dev.WriteDAC(MaxValue+1, PowerRun); !errors.Is(err, ErrValueRange) {
		t.Errorf("Expected ErrValueRange, got %v", err)
	}
}

func TestWriteMemory(t *testing.T) {
	dev, mock := newDevice(t,
		[]byte{0x78, 0x00, 0x00},
		[]byte{0x43, 0xab, 0xc0},
	)

	// Bring-up values: buffered VREF, running, unity gain, zero, to EEPROM
	if err := dev.WriteMemory(RefVREFBuffered, PowerRun, Gain1X, 0, true); err != nil {
		t.Fatal(err)
	}
	if err := dev.WriteMemory(RefVDD, Power1K, Gain2X, 0xabc, false); err != nil {
		t.Fatal(err)
	}

	for i, c := range mock.Commands {
		if c.Invocations != 1 {
			t.Errorf("Command %d (% x): expected 1 invocation, got %d", i, c.Command, c.Invocations)
		}
	}
}

func TestWriteVolatileConfig(t *testing.T) {
	dev, mock := newDevice(t, []byte{0x96})

	if err := dev.WriteVolatileConfig(RefVREF, Power500K, Gain1X); err != nil {
		t.Fatal(err)
	}
	if mock.Commands[0].Invocations != 1 {
		t.Error("Volatile config byte not written")
	}
}

func TestBusError(t *testing.T) {
	dev, mock := newDevice(t)
	nack := errors.New("nack")
	mock.Err = nack

	err := dev.WriteDAC(1, PowerRun)
	if !errors.Is(err, nack) {
		t.Errorf("Expected wrapped bus error, got %v", err)
	}
}
