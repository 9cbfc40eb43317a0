// Package bus implements the shared address-space fabric that binds the
// CPU, PPU, APU, cartridge and controller devices together.
package bus

// AddressRange is a closed interval [Min, Max] identifying a device's claim
// on a bus.
type AddressRange struct {
	Min uint16
	Max uint16
}

// Contains reports whether addr falls within the range.
func (r AddressRange) Contains(addr uint16) bool {
	return addr >= r.Min && addr <= r.Max
}

// Overlaps reports whether the two ranges share any address.
func (r AddressRange) Overlaps(o AddressRange) bool {
	return r.Min <= o.Max && o.Min <= r.Max
}

// SignalID enumerates the closed set of signals a device can broadcast.
type SignalID int

const (
	// SignalCPUIRQ sets the CPU's level-triggered IRQ line. Payload nonzero
	// asserts it, zero deasserts it; a source lowers the line itself once
	// its own IRQ condition is acknowledged.
	SignalCPUIRQ SignalID = iota
	// SignalCPUNMI requests a non-maskable interrupt on the CPU.
	SignalCPUNMI
	// SignalCPUHalt suspends CPU progress (OAM DMA).
	SignalCPUHalt
	// SignalCPUResume resumes CPU progress after a halt.
	SignalCPUResume
	// SignalPPUDMA requests the PPU perform an OAM DMA transfer from the
	// page named in Signal.Payload.
	SignalPPUDMA
	// SignalAPUFrameCounter forwards a $4017 write to the APU. Payload
	// carries the raw byte written: bit 7 selects 5-step mode, bit 6 sets
	// the IRQ-inhibit flag.
	SignalAPUFrameCounter
)

// Signal is a broadcast message. Payload's meaning depends on ID.
type Signal struct {
	ID      SignalID
	Payload uint8
}

// Device is the capability set every bus-attached component implements.
// Devices that are not addressable (e.g. the CPU) still receive
// broadcasts.
type Device interface {
	// Addressable reports whether the device claims a range on this bus.
	Addressable() bool
	// Range returns the device's claimed address range. Only meaningful
	// when Addressable() is true.
	Range() AddressRange
	// Read returns the byte at addr. peek=true promises no observable
	// side effect (VBlank clear, PPUDATA buffer advance, controller
	// shift all must be suppressed).
	Read(addr uint16, peek bool) uint8
	// Write stores value at addr.
	Write(addr uint16, value uint8)
	// OnSignal handles a broadcast signal. The default behavior is to
	// ignore it.
	OnSignal(sig Signal)
}

// BaseDevice gives non-addressable or signal-indifferent devices a default
// OnSignal so they only need to implement what they care about.
type BaseDevice struct{}

func (BaseDevice) OnSignal(Signal) {}

// Bus routes reads and writes to the device that claims a given address,
// and broadcasts signals to every attached device in attach order.
type Bus struct {
	addressable    []Device
	nonAddressable []Device
	lastAccessed   Device
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Attach registers a device with the bus. Addressable devices are checked
// for range overlap against every previously attached addressable device;
// an overlap is a fatal MappingConflict.
func (b *Bus) Attach(d Device) error {
	if !d.Addressable() {
		b.nonAddressable = append(b.nonAddressable, d)
		return nil
	}

	r := d.Range()
	if r.Min > r.Max {
		return New(CodeInvalidAddressRange, "address range min exceeds max")
	}
	for _, existing := range b.addressable {
		if existing.Range().Overlaps(r) {
			return New(CodeMappingConflict, "device address range overlaps an existing device")
		}
	}
	b.addressable = append(b.addressable, d)
	return nil
}

func (b *Bus) owner(addr uint16) Device {
	if b.lastAccessed != nil && b.lastAccessed.Range().Contains(addr) {
		return b.lastAccessed
	}
	for _, d := range b.addressable {
		if d.Range().Contains(addr) {
			b.lastAccessed = d
			return d
		}
	}
	return nil
}

// Read routes to the owning device's Read, or returns 0 if no device owns
// addr.
func (b *Bus) Read(addr uint16) uint8 {
	if d := b.owner(addr); d != nil {
		return d.Read(addr, false)
	}
	return 0
}

// Peek is like Read but promises the target device will not mutate any
// observable state.
func (b *Bus) Peek(addr uint16) uint8 {
	if d := b.owner(addr); d != nil {
		return d.Read(addr, true)
	}
	return 0
}

// Write routes to the owning device's Write, dropping the write silently if
// no device owns addr.
func (b *Bus) Write(addr uint16, value uint8) {
	if d := b.owner(addr); d != nil {
		d.Write(addr, value)
	}
}

// Broadcast invokes OnSignal on every attached device, addressable first,
// in the order each was attached.
func (b *Bus) Broadcast(sig Signal) {
	for _, d := range b.addressable {
		d.OnSignal(sig)
	}
	for _, d := range b.nonAddressable {
		d.OnSignal(sig)
	}
}
