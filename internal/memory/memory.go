// Package memory implements the plain byte-addressable devices attached to
// the bus: RAM, ROM, and mirrored regions.
package memory

import "github.com/rng999/nescore/internal/bus"

// RAM is a contiguous, freely read/writable byte array occupying a fixed
// range on a bus.
type RAM struct {
	bus.BaseDevice
	rng  bus.AddressRange
	data []uint8
}

// NewRAM allocates a RAM device spanning rng, backed by max-min+1 bytes.
func NewRAM(rng bus.AddressRange) *RAM {
	return &RAM{rng: rng, data: make([]uint8, int(rng.Max)-int(rng.Min)+1)}
}

func (m *RAM) Addressable() bool       { return true }
func (m *RAM) Range() bus.AddressRange { return m.rng }

func (m *RAM) Read(addr uint16, _ bool) uint8 {
	return m.data[addr-m.rng.Min]
}

func (m *RAM) Write(addr uint16, value uint8) {
	m.data[addr-m.rng.Min] = value
}

// ROM is laid out like RAM but rejects writes. IllegalWrite, when set, is
// invoked instead of silently dropping the write — the debug-build
// IllegalROMWrite behavior from the error handling design.
type ROM struct {
	bus.BaseDevice
	rng          bus.AddressRange
	data         []uint8
	IllegalWrite func(addr uint16, value uint8)
}

// NewROM wraps data as a read-only device spanning rng. data must have
// exactly max-min+1 bytes.
func NewROM(rng bus.AddressRange, data []uint8) *ROM {
	return &ROM{rng: rng, data: data}
}

func (m *ROM) Addressable() bool       { return true }
func (m *ROM) Range() bus.AddressRange { return m.rng }

func (m *ROM) Read(addr uint16, _ bool) uint8 {
	return m.data[addr-m.rng.Min]
}

func (m *ROM) Write(addr uint16, value uint8) {
	if m.IllegalWrite != nil {
		m.IllegalWrite(addr, value)
	}
}

// Mirror forwards every access to a peer device after translating the
// address into the peer's window. The translation masks with the peer's
// span (Max-Min), not span-1: this is faithful to the original source and
// only produces the intended wrap when the peer's span is one less than a
// power of two (e.g. 0x07FF, 0x1FFF).
type Mirror struct {
	bus.BaseDevice
	rng  bus.AddressRange
	peer bus.Device
}

// NewMirror creates a mirror of peer occupying rng on this bus.
func NewMirror(rng bus.AddressRange, peer bus.Device) *Mirror {
	return &Mirror{rng: rng, peer: peer}
}

func (m *Mirror) Addressable() bool       { return true }
func (m *Mirror) Range() bus.AddressRange { return m.rng }

func (m *Mirror) translate(addr uint16) uint16 {
	peerRange := m.peer.Range()
	span := peerRange.Max - peerRange.Min
	offset := addr - m.rng.Min
	return peerRange.Min + (offset & span)
}

func (m *Mirror) Read(addr uint16, peek bool) uint8 {
	return m.peer.Read(m.translate(addr), peek)
}

func (m *Mirror) Write(addr uint16, value uint8) {
	m.peer.Write(m.translate(addr), value)
}
