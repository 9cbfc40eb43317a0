package input

import (
	"testing"

	"github.com/rng999/nescore/internal/bus"
)

type recordingSignaler struct {
	signals []bus.Signal
}

func (r *recordingSignaler) Broadcast(sig bus.Signal) { r.signals = append(r.signals, sig) }

func TestNewControllerStartsIdle(t *testing.T) {
	c := New()
	if c.player1.parallel != 0 || c.player1.shift != 0 || c.strobe {
		t.Fatalf("controller not idle at construction")
	}
}

func TestSetButtonUpdatesParallelState(t *testing.T) {
	c := New()
	c.SetButton(1, ButtonA, true)
	if c.player1.parallel != uint8(ButtonA) {
		t.Fatalf("parallel = %#02x, want only ButtonA set", c.player1.parallel)
	}
	c.SetButton(1, ButtonA, false)
	if c.player1.parallel != 0 {
		t.Fatalf("parallel = %#02x, want 0 after release", c.player1.parallel)
	}
}

func TestStrobeLatchesAndFirstReadReturnsButtonA(t *testing.T) {
	c := New()
	c.SetButton(1, ButtonA, true)
	c.SetButton(1, ButtonStart, true)

	c.Write(0x4016, 1) // strobe high
	c.Write(0x4016, 0) // strobe low, freezes the shift register

	if got := c.Read(0x4016, false); got != 1 {
		t.Fatalf("first read = %d, want 1 (button A)", got)
	}
}

func TestReadSequenceMatchesStandardButtonOrder(t *testing.T) {
	c := New()
	// Press B and Down only.
	c.SetButton(1, ButtonB, true)
	c.SetButton(1, ButtonDown, true)

	c.Write(0x4016, 1)
	c.Write(0x4016, 0)

	want := []uint8{0, 1, 0, 0, 0, 1, 0, 0} // A,B,Select,Start,Up,Down,Left,Right
	for i, w := range want {
		if got := c.Read(0x4016, false); got != w {
			t.Fatalf("read %d (A,B,Sel,Start,Up,Down,Left,Right order) = %d, want %d", i, got, w)
		}
	}
}

func TestReadsPastEighthBitReturnOne(t *testing.T) {
	c := New()
	c.Write(0x4016, 1)
	c.Write(0x4016, 0)
	for i := 0; i < 8; i++ {
		c.Read(0x4016, false)
	}
	if got := c.Read(0x4016, false); got != 1 {
		t.Fatalf("ninth read = %d, want 1 (open-bus pull-up)", got)
	}
}

func TestPeekDoesNotShiftTheRegister(t *testing.T) {
	c := New()
	c.SetButton(1, ButtonA, true)
	c.Write(0x4016, 1)
	c.Write(0x4016, 0)

	first := c.Read(0x4016, true)
	second := c.Read(0x4016, true)
	if first != second {
		t.Fatalf("peek must not advance the shift register: first=%d second=%d", first, second)
	}
}

func TestStrobeHighContinuouslyReportsLiveButtonA(t *testing.T) {
	c := New()
	c.Write(0x4016, 1) // strobe high
	if got := c.Read(0x4016, false); got != 0 {
		t.Fatalf("read = %d, want 0 before pressing A", got)
	}
	c.SetButton(1, ButtonA, true)
	if got := c.Read(0x4016, false); got != 1 {
		t.Fatalf("read = %d, want 1 once A is pressed while strobe is high", got)
	}
}

func TestControllersAreIndependent(t *testing.T) {
	c := New()
	c.SetButton(1, ButtonA, true)
	c.Write(0x4016, 1)
	c.Write(0x4016, 0)

	if got := c.Read(0x4017, false); got != 0 {
		t.Fatalf("player 2 read = %d, want 0 (independent of player 1 state)", got)
	}
}

func TestWriteTo4017ForwardsFrameCounterSignal(t *testing.T) {
	c := New()
	sig := &recordingSignaler{}
	c.SetSignaler(sig)
	c.Write(0x4017, 0xC0)

	if len(sig.signals) != 1 {
		t.Fatalf("expected exactly one broadcast, got %d", len(sig.signals))
	}
	got := sig.signals[0]
	if got.ID != bus.SignalAPUFrameCounter {
		t.Fatalf("signal ID = %v, want SignalAPUFrameCounter", got.ID)
	}
	if got.Payload != 0xC0 {
		t.Fatalf("payload = %#02x, want 0xC0", got.Payload)
	}
}
