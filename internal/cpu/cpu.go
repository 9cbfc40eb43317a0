// Package cpu implements the 6502 instruction engine: addressing modes,
// interrupt handling, and per-cycle budget accounting.
package cpu

import "github.com/rng999/nescore/internal/bus"

// Flag bit positions within P, bit 0 to bit 7 as spec.md's data model lists
// them: C, Z, I, D, B, U, V, N.
const (
	FlagC uint8 = 1 << 0
	FlagZ uint8 = 1 << 1
	FlagI uint8 = 1 << 2
	FlagD uint8 = 1 << 3
	FlagB uint8 = 1 << 4
	FlagU uint8 = 1 << 5
	FlagV uint8 = 1 << 6
	FlagN uint8 = 1 << 7
)

const (
	stackBase   = 0x0100
	nmiVector   = 0xFFFA
	irqVector   = 0xFFFE
	resetVector = 0xFFFC
)

// Bus is the minimal read/write surface the CPU needs. *bus.Bus satisfies
// it; tests may substitute a smaller fake.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}

// CPU is the 6502-family processor at the heart of the NES.
type CPU struct {
	A, X, Y uint8
	S       uint8
	P       uint8
	PC      uint16

	bus Bus

	irqPending bool
	nmiPending bool
	halted     bool

	cycles    uint64
	remaining uint8

	// DecimalModeAvailable records that the NES's 2A03 has the decimal ALU
	// lines disconnected; it is always false on this core. ADC/SBC have no
	// BCD path and do not read this field: they always do binary arithmetic,
	// whatever the D flag holds.
	DecimalModeAvailable bool
}

// New creates a CPU wired to bus. Call Reset before stepping.
func New(b Bus) *CPU {
	return &CPU{bus: b}
}

// Reset loads PC from the reset vector and sets the documented power-up
// register state.
func (c *CPU) Reset() {
	lo := uint16(c.bus.Read(resetVector))
	hi := uint16(c.bus.Read(resetVector + 1))
	c.resetCommon(hi<<8 | lo)
}

// ResetTo forces PC to pc instead of reading the reset vector. Used by test
// harnesses that want deterministic entry points.
func (c *CPU) ResetTo(pc uint16) {
	c.resetCommon(pc)
}

func (c *CPU) resetCommon(pc uint16) {
	c.A, c.X, c.Y = 0, 0, 0
	c.S = 0xFD
	c.P = FlagI | FlagU
	c.PC = pc
	c.irqPending = false
	c.nmiPending = false
	c.halted = false
	c.cycles = 0
	c.remaining = 0
}

// SetIRQ sets the level-triggered IRQ line state.
func (c *CPU) SetIRQ(asserted bool) {
	c.irqPending = asserted
}

// RaiseNMI latches a pending NMI; it is serviced the next time the
// instruction budget reaches zero.
func (c *CPU) RaiseNMI() {
	c.nmiPending = true
}

// Halt and Resume implement the CPU_HLT/CPU_RSM signals OAM DMA uses to
// suspend the CPU while the PPU reads 256 bytes off the CPU bus.
func (c *CPU) Halt()   { c.halted = true }
func (c *CPU) Resume() { c.halted = false }

// Addressable reports false: the CPU claims no address range of its own,
// it only listens for broadcast signals (IRQ, NMI, halt/resume).
func (c *CPU) Addressable() bool       { return false }
func (c *CPU) Range() bus.AddressRange { return bus.AddressRange{} }

// Read and Write are never invoked since Addressable reports false; they
// exist only to satisfy bus.Device.
func (c *CPU) Read(uint16, bool) uint8    { return 0 }
func (c *CPU) Write(uint16, uint8)        {}

// OnSignal implements bus.Device's signal handler for the CPU.
func (c *CPU) OnSignal(sig bus.Signal) {
	switch sig.ID {
	case bus.SignalCPUIRQ:
		c.SetIRQ(sig.Payload != 0)
	case bus.SignalCPUNMI:
		c.RaiseNMI()
	case bus.SignalCPUHalt:
		c.Halt()
	case bus.SignalCPUResume:
		c.Resume()
	}
}

// Cycles returns the total number of CPU cycles executed since Reset.
func (c *CPU) Cycles() uint64 { return c.cycles }

// Halted reports whether the CPU is currently suspended for OAM DMA.
func (c *CPU) Halted() bool { return c.halted }

// Tick advances the CPU by exactly one cycle. When the per-instruction
// budget reaches zero it picks exactly one of: service a pending NMI,
// service a pending IRQ (if not masked), or fetch/decode/execute the next
// instruction — in that priority order, per spec.md §4.4.2.
func (c *CPU) Tick() {
	if c.halted {
		return
	}
	if c.remaining == 0 {
		c.remaining = c.dispatch()
	}
	c.remaining--
	c.cycles++
}

func (c *CPU) dispatch() uint8 {
	switch {
	case c.nmiPending:
		c.nmiPending = false
		c.serviceInterrupt(nmiVector)
		return 8
	case c.irqPending && c.P&FlagI == 0:
		c.serviceInterrupt(irqVector)
		return 7
	default:
		return c.executeNext()
	}
}

func (c *CPU) serviceInterrupt(vector uint16) {
	c.pushWord(c.PC)
	c.push((c.P &^ FlagB) | FlagU)
	c.P |= FlagI
	c.PC = c.readWord(vector)
}

func (c *CPU) push(v uint8) {
	c.bus.Write(stackBase+uint16(c.S), v)
	c.S--
}

func (c *CPU) pop() uint8 {
	c.S++
	return c.bus.Read(stackBase + uint16(c.S))
}

func (c *CPU) pushWord(v uint16) {
	c.push(uint8(v >> 8))
	c.push(uint8(v))
}

func (c *CPU) popWord() uint16 {
	lo := uint16(c.pop())
	hi := uint16(c.pop())
	return hi<<8 | lo
}

func (c *CPU) readWord(addr uint16) uint16 {
	lo := uint16(c.bus.Read(addr))
	hi := uint16(c.bus.Read(addr + 1))
	return hi<<8 | lo
}

func (c *CPU) setZN(v uint8) {
	if v == 0 {
		c.P |= FlagZ
	} else {
		c.P &^= FlagZ
	}
	if v&0x80 != 0 {
		c.P |= FlagN
	} else {
		c.P &^= FlagN
	}
}

func (c *CPU) setFlag(mask uint8, set bool) {
	if set {
		c.P |= mask
	} else {
		c.P &^= mask
	}
}

func (c *CPU) flag(mask uint8) bool {
	return c.P&mask != 0
}
