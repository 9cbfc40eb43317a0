package ppu

import "github.com/rng999/nescore/internal/cartridge"

// vramMemory owns the PPU-side address space: pattern tables are delegated
// to the cartridge's mapper, nametables live in 2KiB of onboard VRAM
// mirrored per the cartridge's MirrorMode, and palette RAM is 32 bytes with
// the sprite-transparent-color mirror quirk applied on both read and write.
type vramMemory struct {
	cart       *cartridge.Cartridge
	nametables [0x800]uint8
	palette    [32]uint8
}

func newVRAMMemory(cart *cartridge.Cartridge) *vramMemory {
	return &vramMemory{cart: cart}
}

func (m *vramMemory) read(addr uint16) uint8 {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		return m.cart.Mapper.ReadCHR(addr)
	case addr < 0x3F00:
		return m.nametables[m.nametableIndex(addr)]
	default:
		return m.palette[paletteIndex(addr)]
	}
}

func (m *vramMemory) write(addr uint16, value uint8) {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		m.cart.Mapper.WriteCHR(addr, value)
	case addr < 0x3F00:
		m.nametables[m.nametableIndex(addr)] = value
	default:
		m.palette[paletteIndex(addr)] = value
	}
}

// nametableIndex resolves a $2000-$3EFF nametable address, including its
// $3000-$3EFF mirror, into onboard VRAM per the cartridge's mirroring mode.
func (m *vramMemory) nametableIndex(addr uint16) uint16 {
	addr &= 0x0FFF
	table := (addr >> 10) & 3
	offset := addr & 0x03FF

	switch m.cart.Mirror() {
	case cartridge.MirrorVertical:
		if table == 1 || table == 3 {
			return 0x0400 + offset
		}
		return offset
	default: // MirrorHorizontal; four-screen is rejected at ROM load time
		if table >= 2 {
			return 0x0400 + offset
		}
		return offset
	}
}

// paletteIndex resolves a $3F00-$3FFF address into the 32-byte palette RAM,
// folding the four sprite-palette "transparent color" slots onto their
// background counterparts as real hardware does.
func paletteIndex(addr uint16) uint16 {
	idx := addr & 0x1F
	if idx >= 0x10 && idx&0x03 == 0 {
		idx -= 0x10
	}
	return idx
}
