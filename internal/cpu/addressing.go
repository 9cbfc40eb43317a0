package cpu

// AddrMode is one of the thirteen 6502 addressing modes.
type AddrMode uint8

const (
	Implied AddrMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
)

// resolve computes the effective address for mode, advancing PC past the
// instruction's operand bytes, and reports whether an indexed access
// crossed a page boundary (relevant only to the read-type cycle surcharge
// and to branch timing).
func (c *CPU) resolve(mode AddrMode) (addr uint16, pageCrossed bool) {
	switch mode {
	case Implied, Accumulator:
		return 0, false

	case Immediate:
		addr = c.PC
		c.PC++
		return addr, false

	case ZeroPage:
		addr = uint16(c.bus.Read(c.PC))
		c.PC++
		return addr, false

	case ZeroPageX:
		base := c.bus.Read(c.PC)
		c.PC++
		return uint16(base + c.X), false

	case ZeroPageY:
		base := c.bus.Read(c.PC)
		c.PC++
		return uint16(base + c.Y), false

	case Relative:
		offset := int8(c.bus.Read(c.PC))
		c.PC++
		base := c.PC
		target := uint16(int32(base) + int32(offset))
		return target, (base & 0xFF00) != (target & 0xFF00)

	case Absolute:
		addr = c.readWord(c.PC)
		c.PC += 2
		return addr, false

	case AbsoluteX:
		base := c.readWord(c.PC)
		c.PC += 2
		addr = base + uint16(c.X)
		return addr, (base & 0xFF00) != (addr & 0xFF00)

	case AbsoluteY:
		base := c.readWord(c.PC)
		c.PC += 2
		addr = base + uint16(c.Y)
		return addr, (base & 0xFF00) != (addr & 0xFF00)

	case Indirect:
		ptr := c.readWord(c.PC)
		c.PC += 2
		return c.readWordBugged(ptr), false

	case IndexedIndirect:
		base := c.bus.Read(c.PC)
		c.PC++
		ptr := uint16(base + c.X)
		return c.readWordZeroPage(ptr), false

	case IndirectIndexed:
		ptr := uint16(c.bus.Read(c.PC))
		c.PC++
		base := c.readWordZeroPage(ptr)
		addr = base + uint16(c.Y)
		return addr, (base & 0xFF00) != (addr & 0xFF00)

	default:
		return 0, false
	}
}

// readWordBugged replicates the JMP ($xxFF) page-wrap bug: when the
// pointer's low byte is 0xFF, the high byte of the target is read from the
// start of the same page rather than the next one.
func (c *CPU) readWordBugged(ptr uint16) uint16 {
	lo := uint16(c.bus.Read(ptr))
	var hiAddr uint16
	if ptr&0x00FF == 0x00FF {
		hiAddr = ptr & 0xFF00
	} else {
		hiAddr = ptr + 1
	}
	hi := uint16(c.bus.Read(hiAddr))
	return hi<<8 | lo
}

// readWordZeroPage reads a little-endian word from zero page with wraparound
// at the page boundary (used by IZX/IZY).
func (c *CPU) readWordZeroPage(ptr uint16) uint16 {
	lo := uint16(c.bus.Read(ptr & 0x00FF))
	hi := uint16(c.bus.Read((ptr + 1) & 0x00FF))
	return hi<<8 | lo
}
