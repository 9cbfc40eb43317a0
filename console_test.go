package nescore

import (
	"bytes"
	"testing"

	"github.com/rng999/nescore/internal/cartridge"
	"github.com/rng999/nescore/internal/input"
)

// buildNROM assembles a minimal one-bank iNES image: PRG-ROM is filled with
// NOP ($EA) and the reset vector points at $8000.
func buildNROM() []byte {
	header := []byte{'N', 'E', 'S', 0x1A, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	prg := make([]byte, 16*1024)
	for i := range prg {
		prg[i] = 0xEA
	}
	prg[0x3FFC] = 0x00 // reset vector low -> $8000
	prg[0x3FFD] = 0x80
	chr := make([]byte, 8*1024)

	var buf bytes.Buffer
	buf.Write(header)
	buf.Write(prg)
	buf.Write(chr)
	return buf.Bytes()
}

func newTestConsole(t *testing.T) *Console {
	t.Helper()
	cart, err := cartridge.LoadINES(bytes.NewReader(buildNROM()))
	if err != nil {
		t.Fatalf("LoadINES failed: %v", err)
	}
	c := New()
	if err := c.attach(cart); err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	return c
}

func TestResetLoadsPCFromCartridgeVector(t *testing.T) {
	c := newTestConsole(t)
	if c.cpu.PC != 0x8000 {
		t.Fatalf("PC = %#04x, want 0x8000 from the reset vector", c.cpu.PC)
	}
	if c.cpu.Cycles() != 0 {
		t.Fatalf("fresh console should report zero CPU cycles")
	}
	c.Tick()
	c.Tick()
	c.Tick()
	if c.cpu.Cycles() == 0 {
		t.Fatalf("CPU should have advanced after three ticks")
	}
}

func TestTickAdvancesCPUOnceEveryThreeDots(t *testing.T) {
	c := newTestConsole(t)
	for i := 0; i < 9; i++ {
		c.Tick()
	}
	if got := c.cpu.Cycles(); got != 3 {
		t.Fatalf("CPU cycles = %d, want 3 after 9 PPU dots", got)
	}
}

func TestVideoOutputIsPackedRGB8(t *testing.T) {
	c := newTestConsole(t)
	out := c.VideoOutput()
	if len(out) != 256*240*3 {
		t.Fatalf("len(VideoOutput) = %d, want %d", len(out), 256*240*3)
	}
}

func TestFillAudioRejectsOversizedRequest(t *testing.T) {
	c := newTestConsole(t)
	_, err := c.FillAudio(make([]float32, audioBufferSize+1))
	if err == nil {
		t.Fatalf("expected IncompatibleAudioBufferSize error")
	}
}

func TestAudioSampleRateAndBufferSizeAreFixed(t *testing.T) {
	c := newTestConsole(t)
	if c.AudioSampleRate() != 44100 {
		t.Fatalf("sample rate = %d, want 44100", c.AudioSampleRate())
	}
	if c.AudioBufferSize() != 2048 {
		t.Fatalf("buffer size = %d, want 2048", c.AudioBufferSize())
	}
}

func TestInputForwardsToControllerInterface(t *testing.T) {
	c := newTestConsole(t)
	c.Input(PlayerOne, input.ButtonA, true)
	c.bus.Write(0x4016, 1)
	c.bus.Write(0x4016, 0)
	if got := c.bus.Read(0x4016); got != 1 {
		t.Fatalf("controller read = %d, want 1 (button A pressed)", got)
	}
}

func TestRAMIsMirroredAcrossTheBus(t *testing.T) {
	c := newTestConsole(t)
	c.bus.Write(0x0000, 0x42)
	if got := c.bus.Read(0x0800); got != 0x42 {
		t.Fatalf("mirrored RAM read = %#02x, want 0x42", got)
	}
}

func TestPPURegistersAreMirroredAcrossTheBus(t *testing.T) {
	c := newTestConsole(t)
	c.bus.Write(0x2000, 0x55)
	if got := c.bus.Read(0x2008); got != 0x15 { // low 5 bits of the written value, open-bus style
		t.Fatalf("mirrored PPU read = %#02x, want 0x15", got)
	}
}
