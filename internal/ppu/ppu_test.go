package ppu

import (
	"testing"

	"github.com/rng999/nescore/internal/bus"
	"github.com/rng999/nescore/internal/cartridge"
)

func newTestCart() *cartridge.Cartridge {
	cart := &cartridge.Cartridge{
		PRGROM:     make([]uint8, 0x4000),
		CHRROM:     make([]uint8, 0x2000),
		CHRIsRAM:   true,
		MirrorMode: cartridge.MirrorHorizontal,
	}
	cart.Mapper = cartridge.NewMapper000(cart)
	return cart
}

type recordingSignaler struct {
	signals []bus.SignalID
}

func (r *recordingSignaler) Broadcast(sig bus.Signal) {
	r.signals = append(r.signals, sig.ID)
}

func (r *recordingSignaler) has(id bus.SignalID) bool {
	for _, s := range r.signals {
		if s == id {
			return true
		}
	}
	return false
}

type flatCPUBus struct {
	data [0x10000]uint8
}

func (b *flatCPUBus) Read(addr uint16) uint8 { return b.data[addr] }

func newTestPPU() (*PPU, *recordingSignaler, *flatCPUBus) {
	p := New(newTestCart())
	sig := &recordingSignaler{}
	cb := &flatCPUBus{}
	p.SetSignaler(sig)
	p.SetCPUBus(cb)
	return p, sig, cb
}

func tickN(p *PPU, n int) {
	for i := 0; i < n; i++ {
		p.Tick()
	}
}

func TestRegisterMirrorReadIsOpenBusOnWriteOnlyPorts(t *testing.T) {
	p, _, _ := newTestPPU()
	p.Write(0x2000, 0x55)
	if got := p.Read(0x2000, false); got != 0x15 { // low 5 bits of last write
		t.Fatalf("PPUCTRL read = %#02x, want 0x15", got)
	}
}

func TestPPUSTATUSReadClearsVBlankAndLatch(t *testing.T) {
	p, _, _ := newTestPPU()
	p.status = 0x80
	p.wLatch = true
	got := p.Read(0x2002, false)
	if got&0x80 == 0 {
		t.Fatalf("status read = %#02x, want VBlank bit set in the returned value", got)
	}
	if p.status&0x80 != 0 {
		t.Fatalf("VBlank flag not cleared after read")
	}
	if p.wLatch {
		t.Fatalf("write latch not cleared after PPUSTATUS read")
	}
}

func TestPeekPPUSTATUSDoesNotClearVBlank(t *testing.T) {
	p, _, _ := newTestPPU()
	p.status = 0x80
	p.Read(0x2002, true)
	if p.status&0x80 == 0 {
		t.Fatalf("peek must not mutate VBlank flag")
	}
}

func TestVBlankSetsNMIAndFrameCount(t *testing.T) {
	p, sig, _ := newTestPPU()
	p.Write(0x2000, 0x80) // enable NMI on VBlank

	// Advance through scanline 241, dot 1 (each Tick processes the current
	// dot, then moves on).
	tickN(p, 241*dotsPerLine+2)

	if p.status&0x80 == 0 {
		t.Fatalf("VBlank flag not set")
	}
	if p.frameCount != 1 {
		t.Fatalf("frameCount = %d, want 1", p.frameCount)
	}
	if !sig.has(bus.SignalCPUNMI) {
		t.Fatalf("NMI not broadcast at VBlank start")
	}
}

func TestPreRenderLineClearsStatusFlags(t *testing.T) {
	p, _, _ := newTestPPU()
	p.status = 0xE0
	p.scanline = preRenderLine
	p.dot = 1
	p.Tick()
	if p.status&0xE0 != 0 {
		t.Fatalf("status = %#02x, want VBlank/sprite flags cleared at pre-render dot 1", p.status)
	}
}

func TestOAMDMACopiesPageAndStallsCPU(t *testing.T) {
	p, sig, cpu := newTestPPU()
	for i := 0; i < 256; i++ {
		cpu.data[0x0200+i] = uint8(i)
	}
	p.OnSignal(bus.Signal{ID: bus.SignalPPUDMA, Payload: 0x02})

	for i := 0; i < 256; i++ {
		if p.oam[i] != uint8(i) {
			t.Fatalf("oam[%d] = %#02x, want %#02x", i, p.oam[i], uint8(i))
		}
	}
	if !sig.has(bus.SignalCPUHalt) {
		t.Fatalf("CPU_HLT not broadcast")
	}

	tickN(p, 513*3-1)
	if sig.has(bus.SignalCPUResume) {
		t.Fatalf("CPU_RSM broadcast too early")
	}
	p.Tick()
	if !sig.has(bus.SignalCPUResume) {
		t.Fatalf("CPU_RSM not broadcast after 513 CPU cycles worth of dots")
	}
}

func TestSpriteEvaluationRespectsEightSpriteLimit(t *testing.T) {
	p, _, _ := newTestPPU()
	for i := 0; i < 10; i++ {
		base := i * 4
		p.oam[base] = 0    // y=0, visible on scanlines 1..8 (row = 0-scanl+8)
		p.oam[base+1] = 0  // tile
		p.oam[base+2] = 0  // attr
		p.oam[base+3] = uint8(i * 8)
	}
	p.evaluateSprites(1)
	if p.secondaryCount != 8 {
		t.Fatalf("secondaryCount = %d, want 8", p.secondaryCount)
	}
	if p.status&0x20 == 0 {
		t.Fatalf("sprite overflow flag not set past the eighth sprite")
	}
}

func TestSpriteZeroHitSetsStatusBit(t *testing.T) {
	p, _, _ := newTestPPU()
	p.mask = 0x1E // background + sprite enable, plus left-column show for both

	// A fully opaque background pixel: pattern bits all 1 at this shift.
	p.bgPatternLo = 0xFFFF
	p.bgPatternHi = 0xFFFF
	p.fineX = 0

	p.secondaryCount = 1
	p.secondary[0] = spriteEntry{x: 0, lsb: 0xFF, msb: 0xFF, isZero: true}

	p.composePixel(0, 10)

	if p.status&0x40 == 0 {
		t.Fatalf("sprite zero hit flag not set")
	}
}

func TestGreyscaleMaskAppliesToPaletteRead(t *testing.T) {
	p, _, _ := newTestPPU()
	p.mask = 0x1E | 0x01 // rendering enabled, greyscale bit set
	p.mem.write(0x3F00, 0x27)
	p.bgPatternLo, p.bgPatternHi = 0, 0
	p.bgAttrLo, p.bgAttrHi = 0, 0
	p.fineX = 0

	p.composePixel(10, 10)

	want := nesColorToRGB(0x27 & 0x30)
	if got := p.frameBuffer[10*256+10]; got != want {
		t.Fatalf("pixel = %#06x, want %#06x (palette byte masked with 0x30)", got, want)
	}
}

func TestSpriteZeroHitExcludesRightmostColumn(t *testing.T) {
	p, _, _ := newTestPPU()
	p.mask = 0x18
	p.bgPatternLo = 0xFFFF
	p.bgPatternHi = 0xFFFF
	p.fineX = 0
	p.secondaryCount = 1
	p.secondary[0] = spriteEntry{x: 255, lsb: 0xFF, msb: 0xFF, isZero: true}

	p.composePixel(255, 10)

	if p.status&0x40 != 0 {
		t.Fatalf("sprite zero hit must not fire at x=255")
	}
}
