// Package ppu implements the 2C02 Picture Processing Unit: its
// memory-mapped register file, the dot/scanline state machine, the
// background shift-register pipeline, sprite evaluation, and OAM DMA.
package ppu

import (
	"github.com/rng999/nescore/internal/bus"
	"github.com/rng999/nescore/internal/cartridge"
)

const (
	dotsPerLine     = 341
	linesPerFrame   = 262
	visibleLines    = 240
	vblankStartLine = 241
	preRenderLine   = 261
)

// Signaler is the subset of *bus.Bus the PPU needs to raise NMI and to
// stall/resume the CPU around OAM DMA.
type Signaler interface {
	Broadcast(sig bus.Signal)
}

// CPUBusReader lets the PPU pull the 256-byte OAM DMA source page directly
// off the CPU's address space.
type CPUBusReader interface {
	Read(addr uint16) uint8
}

type spriteEntry struct {
	x        uint8
	palette  uint8
	priority uint8
	lsb, msb uint8
	isZero   bool
}

// PPU is the console's video generator, attached to the CPU bus as the
// register window at $2000-$2007 (mirrored externally to $3FFF).
type PPU struct {
	bus.BaseDevice

	mem *vramMemory

	signaler Signaler
	cpuBus   CPUBusReader

	ctrl, mask, status uint8
	oamAddr            uint8
	busNoise           uint8

	oam [256]uint8

	v, t   uint16
	fineX  uint8
	wLatch bool

	readBuffer uint8

	dot, scanline int
	oddFrame      bool
	frameCount    uint64

	bgPatternLo, bgPatternHi uint16
	bgAttrLo, bgAttrHi       uint16
	nextTileID               uint8
	nextAttr                 uint8
	nextPatternLo            uint8
	nextPatternHi            uint8

	secondary      [8]spriteEntry
	secondaryCount int
	spriteZeroHit  bool

	dmaCountdown int

	frameBuffer [256 * 240]uint32
}

// New builds a PPU whose pattern tables and mirroring policy come from
// cart. Call SetSignaler and SetCPUBus before Tick if NMI or OAM DMA is
// needed (both are, outside of unit tests that isolate the register file).
func New(cart *cartridge.Cartridge) *PPU {
	p := &PPU{mem: newVRAMMemory(cart)}
	p.Reset()
	return p
}

func (p *PPU) SetSignaler(s Signaler)     { p.signaler = s }
func (p *PPU) SetCPUBus(b CPUBusReader)   { p.cpuBus = b }

// Reset sets the documented post power-on/reset register state.
func (p *PPU) Reset() {
	p.ctrl, p.mask, p.status = 0, 0, 0
	p.oamAddr = 0
	p.v, p.t, p.fineX = 0, 0, 0
	p.wLatch = false
	p.readBuffer = 0
	p.dot, p.scanline = 0, 0
	p.oddFrame = false
	p.frameCount = 0
	p.secondaryCount = 0
	p.spriteZeroHit = false
	p.dmaCountdown = 0
}

func (p *PPU) Addressable() bool { return true }
func (p *PPU) Range() bus.AddressRange {
	return bus.AddressRange{Min: 0x2000, Max: 0x2007}
}

func (p *PPU) Read(addr uint16, peek bool) uint8 {
	switch addr & 7 {
	case 2:
		v := p.status | (p.busNoise & 0x1F)
		if !peek {
			p.status &^= 0x80
			p.wLatch = false
		}
		return v
	case 4:
		return p.oam[p.oamAddr]
	case 7:
		if peek {
			return p.readBuffer
		}
		return p.readData()
	default:
		return p.busNoise & 0x1F
	}
}

func (p *PPU) Write(addr uint16, value uint8) {
	p.busNoise = value
	switch addr & 7 {
	case 0:
		p.ctrl = value
		p.t = (p.t &^ 0x0C00) | (uint16(value)&0x03)<<10
	case 1:
		p.mask = value
	case 3:
		p.oamAddr = value
	case 4:
		p.oam[p.oamAddr] = value
		p.oamAddr++
	case 5:
		p.writeScroll(value)
	case 6:
		p.writeAddr(value)
	case 7:
		p.writeData(value)
	}
}

// OnSignal handles the OAM-DMA trigger. The 256-byte copy happens
// instantaneously; the CPU stall is modeled as a dot countdown so that
// Tick's caller sees the documented 513-cycle (1539-dot) stall.
func (p *PPU) OnSignal(sig bus.Signal) {
	if sig.ID != bus.SignalPPUDMA {
		return
	}
	base := uint16(sig.Payload) << 8
	for i := 0; i < 256; i++ {
		p.oam[i] = p.cpuBus.Read(base + uint16(i))
	}
	if p.signaler != nil {
		p.signaler.Broadcast(bus.Signal{ID: bus.SignalCPUHalt})
	}
	p.dmaCountdown = 513 * 3
}

func (p *PPU) writeScroll(value uint8) {
	if !p.wLatch {
		p.t = (p.t &^ 0x001F) | uint16(value>>3)
		p.fineX = value & 0x07
	} else {
		p.t = (p.t &^ 0x73E0) | (uint16(value)&0x07)<<12 | (uint16(value)&0xF8)<<2
	}
	p.wLatch = !p.wLatch
}

func (p *PPU) writeAddr(value uint8) {
	if !p.wLatch {
		p.t = (p.t &^ 0xFF00) | (uint16(value)&0x3F)<<8
	} else {
		p.t = (p.t &^ 0x00FF) | uint16(value)
		p.v = p.t
	}
	p.wLatch = !p.wLatch
}

func (p *PPU) vramIncrement() uint16 {
	if p.ctrl&0x04 != 0 {
		return 32
	}
	return 1
}

func (p *PPU) readData() uint8 {
	var data uint8
	if p.v&0x3FFF >= 0x3F00 {
		data = p.mem.read(p.v)
		p.readBuffer = p.mem.read(p.v - 0x1000)
	} else {
		data = p.readBuffer
		p.readBuffer = p.mem.read(p.v)
	}
	p.v = (p.v + p.vramIncrement()) & 0x3FFF
	return data
}

func (p *PPU) writeData(value uint8) {
	p.mem.write(p.v, value)
	p.v = (p.v + p.vramIncrement()) & 0x3FFF
}

// renderingEnabled reports whether the background or sprite layer is on;
// the fetch/shift pipeline and sprite evaluation only run while it is.
func (p *PPU) renderingEnabled() bool { return p.mask&0x18 != 0 }

// FrameBuffer returns the completed 256x240 RGB frame, one uint32 per
// pixel in 0x00RRGGBB form.
func (p *PPU) FrameBuffer() *[256 * 240]uint32 { return &p.frameBuffer }

// FrameCount returns the number of VBlank entries seen since Reset.
func (p *PPU) FrameCount() uint64 { return p.frameCount }

// Tick advances the PPU by exactly one dot.
func (p *PPU) Tick() {
	if p.dmaCountdown > 0 {
		p.dmaCountdown--
		if p.dmaCountdown == 0 && p.signaler != nil {
			p.signaler.Broadcast(bus.Signal{ID: bus.SignalCPUResume})
		}
	}

	visible := p.scanline >= 0 && p.scanline < visibleLines
	preRender := p.scanline == preRenderLine

	if (visible || preRender) && p.renderingEnabled() {
		p.renderStep()
	}

	if visible && p.dot >= 1 && p.dot <= 256 {
		p.composePixel(p.dot-1, p.scanline)
	}

	if p.scanline == vblankStartLine && p.dot == 1 {
		p.status |= 0x80
		p.frameCount++
		if p.ctrl&0x80 != 0 && p.signaler != nil {
			p.signaler.Broadcast(bus.Signal{ID: bus.SignalCPUNMI})
		}
	}
	if preRender && p.dot == 1 {
		p.status &^= 0xE0
		p.spriteZeroHit = false
	}

	p.advanceDot()
}

func (p *PPU) advanceDot() {
	if p.scanline == preRenderLine && p.oddFrame && p.dot == 339 && p.renderingEnabled() {
		p.dot = dotsPerLine // skip dot 340 entirely this frame
	} else {
		p.dot++
	}
	if p.dot >= dotsPerLine {
		p.dot = 0
		p.scanline++
		if p.scanline >= linesPerFrame {
			p.scanline = 0
			p.oddFrame = !p.oddFrame
		}
	}
}

// renderStep runs the background fetch/shift pipeline and the coarse
// scroll increments for one dot of a visible or pre-render line.
func (p *PPU) renderStep() {
	inFetchWindow := (p.dot >= 1 && p.dot <= 256) || (p.dot >= 321 && p.dot <= 336)

	if inFetchWindow {
		p.shiftBackgroundRegisters()
		switch p.dot % 8 {
		case 1:
			p.reloadShiftRegisters()
			p.nextTileID = p.mem.read(0x2000 | (p.v & 0x0FFF))
		case 3:
			attrAddr := 0x23C0 | (p.v & 0x0C00) | ((p.v >> 4) & 0x38) | ((p.v >> 2) & 0x07)
			p.nextAttr = p.mem.read(attrAddr)
		case 5:
			p.nextPatternLo = p.mem.read(p.backgroundPatternAddr())
		case 7:
			p.nextPatternHi = p.mem.read(p.backgroundPatternAddr() + 8)
		}
	}

	if (p.dot >= 1 && p.dot <= 256 && p.dot%8 == 0) || p.dot == 328 || p.dot == 336 {
		p.incrementCoarseX()
	}
	if p.dot == 256 {
		p.incrementY()
	}
	if p.dot == 257 {
		p.copyHorizontalBits()
		p.evaluateSprites(p.nextScanline())
	}
	if p.scanline == preRenderLine && p.dot >= 280 && p.dot <= 304 {
		p.copyVerticalBits()
	}
}

func (p *PPU) nextScanline() int {
	if p.scanline == preRenderLine {
		return 0
	}
	return p.scanline + 1
}

func (p *PPU) backgroundPatternAddr() uint16 {
	base := uint16(0)
	if p.ctrl&0x10 != 0 {
		base = 0x1000
	}
	fineY := (p.v >> 12) & 0x07
	return base + uint16(p.nextTileID)*16 + fineY
}

func (p *PPU) shiftBackgroundRegisters() {
	p.bgPatternLo <<= 1
	p.bgPatternHi <<= 1
	p.bgAttrLo <<= 1
	p.bgAttrHi <<= 1
}

func (p *PPU) reloadShiftRegisters() {
	p.bgPatternLo = (p.bgPatternLo & 0xFF00) | uint16(p.nextPatternLo)
	p.bgPatternHi = (p.bgPatternHi & 0xFF00) | uint16(p.nextPatternHi)

	quadrant := ((p.v >> 4) & 0x04) | (p.v & 0x02)
	attrBits := (p.nextAttr >> quadrant) & 0x03
	var lo, hi uint16
	if attrBits&0x01 != 0 {
		lo = 0xFF
	}
	if attrBits&0x02 != 0 {
		hi = 0xFF
	}
	p.bgAttrLo = (p.bgAttrLo & 0xFF00) | lo
	p.bgAttrHi = (p.bgAttrHi & 0xFF00) | hi
}

func (p *PPU) incrementCoarseX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &^= 0x7000
	y := (p.v & 0x03E0) >> 5
	switch y {
	case 29:
		y = 0
		p.v ^= 0x0800
	case 31:
		y = 0
	default:
		y++
	}
	p.v = (p.v &^ 0x03E0) | (y << 5)
}

func (p *PPU) copyHorizontalBits() {
	p.v = (p.v &^ 0x041F) | (p.t & 0x041F)
}

func (p *PPU) copyVerticalBits() {
	p.v = (p.v &^ 0x7BE0) | (p.t & 0x7BE0)
}

func (p *PPU) spriteHeight() int {
	if p.ctrl&0x20 != 0 {
		return 16
	}
	return 8
}

// evaluateSprites fills the secondary buffer with up to 8 sprites visible
// on targetLine, in OAM order, setting the overflow flag past the eighth.
func (p *PPU) evaluateSprites(targetLine int) {
	p.secondaryCount = 0
	height := p.spriteHeight()

	for i := 0; i < 64; i++ {
		base := i * 4
		y := p.oam[base]
		tile := p.oam[base+1]
		attr := p.oam[base+2]
		x := p.oam[base+3]

		row := int(y) - targetLine + 8
		if row < 0 || row >= height {
			continue
		}
		if p.secondaryCount >= 8 {
			p.status |= 0x20
			break
		}

		lsb, msb := p.fetchSpritePattern(tile, attr, row, height)
		p.secondary[p.secondaryCount] = spriteEntry{
			x:        x,
			palette:  (attr & 0x03) + 4,
			priority: (attr >> 5) & 1,
			lsb:      lsb,
			msb:      msb,
			isZero:   i == 0,
		}
		p.secondaryCount++
	}
}

// fetchSpritePattern reproduces the source's fetch-time flip inversion: the
// vertical flip is applied when attr&0x80 is *clear*, not when it's set.
func (p *PPU) fetchSpritePattern(tile, attr uint8, row, height int) (lsb, msb uint8) {
	fetchRow := row
	if attr&0x80 == 0 {
		fetchRow = height - 1 - row
	}

	var table uint16
	tileNum := tile
	if height == 16 {
		table = uint16(tile&0x01) * 0x1000
		tileNum = tile &^ 0x01
		if fetchRow >= 8 {
			tileNum++
			fetchRow -= 8
		}
	} else if p.ctrl&0x08 != 0 {
		table = 0x1000
	}

	addr := table + uint16(tileNum)*16 + uint16(fetchRow)
	lsb = p.mem.read(addr)
	msb = p.mem.read(addr + 8)
	if attr&0x40 != 0 {
		lsb = reverseBits(lsb)
		msb = reverseBits(msb)
	}
	return lsb, msb
}

func (p *PPU) composePixel(x, y int) {
	bgIdx, bgPalette := p.backgroundPixel(x)
	sprIdx, sprPalette, sprPriority, sprIsZero := p.spritePixel(x)

	if bgIdx != 0 && sprIdx != 0 && sprIsZero && x != 255 {
		p.spriteZeroHit = true
		p.status |= 0x40
	}

	var colorAddr uint16
	switch {
	case bgIdx == 0 && sprIdx == 0:
		colorAddr = 0x3F00
	case bgIdx == 0:
		colorAddr = 0x3F00 + uint16(sprPalette)*4 + uint16(sprIdx)
	case sprIdx == 0:
		colorAddr = 0x3F00 + uint16(bgPalette)*4 + uint16(bgIdx)
	case sprPriority == 0:
		colorAddr = 0x3F00 + uint16(sprPalette)*4 + uint16(sprIdx)
	default:
		colorAddr = 0x3F00 + uint16(bgPalette)*4 + uint16(bgIdx)
	}

	paletteByte := p.mem.read(colorAddr)
	if p.mask&0x01 != 0 {
		paletteByte &= 0x30
	}
	p.frameBuffer[y*256+x] = nesColorToRGB(paletteByte)
}

func (p *PPU) backgroundPixel(x int) (idx, palette uint8) {
	if p.mask&0x08 == 0 {
		return 0, 0
	}
	if x < 8 && p.mask&0x02 == 0 {
		return 0, 0
	}
	shift := 15 - p.fineX
	bit0 := uint8(p.bgPatternLo>>shift) & 1
	bit1 := uint8(p.bgPatternHi>>shift) & 1
	pal0 := uint8(p.bgAttrLo>>shift) & 1
	pal1 := uint8(p.bgAttrHi>>shift) & 1
	return (bit1 << 1) | bit0, (pal1 << 1) | pal0
}

func (p *PPU) spritePixel(x int) (idx, palette, priority uint8, isZero bool) {
	if p.mask&0x10 == 0 {
		return 0, 0, 0, false
	}
	if x < 8 && p.mask&0x04 == 0 {
		return 0, 0, 0, false
	}
	for i := 0; i < p.secondaryCount; i++ {
		s := p.secondary[i]
		offset := x - int(s.x)
		if offset < 0 || offset > 7 {
			continue
		}
		bit0 := (s.lsb >> (7 - offset)) & 1
		bit1 := (s.msb >> (7 - offset)) & 1
		colorIdx := (bit1 << 1) | bit0
		if colorIdx == 0 {
			continue
		}
		return colorIdx, s.palette, s.priority, s.isZero
	}
	return 0, 0, 0, false
}
