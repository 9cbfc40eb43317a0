// Package input implements the NES controller surface: two standard
// controllers sharing the strobe/shift-register protocol at $4016-$4017.
package input

import "github.com/rng999/nescore/internal/bus"

// Button identifies one of the eight standard NES controller buttons.
type Button uint8

// Bit order matches the read protocol: the first read after strobe reports
// bit 7, so button A (read first) occupies bit 7 and Right (read last)
// occupies bit 0.
const (
	ButtonRight Button = 1 << iota
	ButtonLeft
	ButtonDown
	ButtonUp
	ButtonStart
	ButtonSelect
	ButtonB
	ButtonA
)

// player holds one controller's parallel (live) button byte and the serial
// shift byte latched from it on strobe.
type player struct {
	parallel uint8
	shift    uint8
}

func (p *player) setButton(b Button, pressed bool) {
	if pressed {
		p.parallel |= uint8(b)
	} else {
		p.parallel &^= uint8(b)
	}
}

func (p *player) setButtons(buttons [8]bool) {
	p.parallel = 0
	bits := [8]Button{ButtonA, ButtonB, ButtonSelect, ButtonStart, ButtonUp, ButtonDown, ButtonLeft, ButtonRight}
	for i, pressed := range buttons {
		if pressed {
			p.parallel |= uint8(bits[i])
		}
	}
}

func (p *player) latch() { p.shift = p.parallel }

// read returns bit 7 of the shift byte and, unless peek, shifts the
// register left by one (the vacated bit 0 reads as 1 on real hardware,
// matching an open-bus pull-up).
func (p *player) read(peek bool) uint8 {
	result := (p.shift >> 7) & 1
	if !peek {
		p.shift = (p.shift << 1) | 1
	}
	return result
}

// ControllerInterface occupies $4016-$4017 and drives both standard
// controller ports plus, via $4017, the APU frame-counter write that
// shares the address.
type ControllerInterface struct {
	bus.BaseDevice
	signaler Signaler

	player1 player
	player2 player
	strobe  bool
}

// Signaler is the subset of bus.Bus the controller interface needs to
// forward $4017 writes to the APU.
type Signaler interface {
	Broadcast(sig bus.Signal)
}

// New creates an idle ControllerInterface with no buttons pressed.
func New() *ControllerInterface {
	return &ControllerInterface{}
}

// SetSignaler attaches the bus used to broadcast SignalAPUFrameCounter.
func (c *ControllerInterface) SetSignaler(s Signaler) { c.signaler = s }

// SetButton sets a single button's pressed state for the given player
// (1 or 2).
func (c *ControllerInterface) SetButton(playerNum int, b Button, pressed bool) {
	c.playerFor(playerNum).setButton(b, pressed)
}

// SetButtons sets all eight buttons at once, in A,B,Select,Start,Up,Down,
// Left,Right order, for the given player (1 or 2).
func (c *ControllerInterface) SetButtons(playerNum int, buttons [8]bool) {
	c.playerFor(playerNum).setButtons(buttons)
}

func (c *ControllerInterface) playerFor(playerNum int) *player {
	if playerNum == 2 {
		return &c.player2
	}
	return &c.player1
}

func (c *ControllerInterface) Addressable() bool       { return true }
func (c *ControllerInterface) Range() bus.AddressRange { return bus.AddressRange{Min: 0x4016, Max: 0x4017} }

func (c *ControllerInterface) Read(addr uint16, peek bool) uint8 {
	// While strobe is held high the shift register is continuously
	// reloaded from the live button state, so every read reports button A.
	if c.strobe {
		c.player1.latch()
		c.player2.latch()
	}
	switch addr {
	case 0x4016:
		return c.player1.read(peek)
	default: // 0x4017
		return c.player2.read(peek)
	}
}

// Write latches parallel button state into the shift register for both
// players on $4016, and additionally forwards the frame-counter mode and
// IRQ-inhibit bits to the APU on $4017.
func (c *ControllerInterface) Write(addr uint16, value uint8) {
	switch addr {
	case 0x4016:
		wasStrobe := c.strobe
		c.strobe = value&1 != 0
		if c.strobe || wasStrobe {
			c.player1.latch()
			c.player2.latch()
		}
	case 0x4017:
		if c.signaler != nil {
			c.signaler.Broadcast(bus.Signal{ID: bus.SignalAPUFrameCounter, Payload: value})
		}
	}
}

// Reset clears strobe and both shift registers; button state (the
// "parallel" byte reflecting physically held buttons) is left untouched.
func (c *ControllerInterface) Reset() {
	c.strobe = false
	c.player1.shift = 0
	c.player2.shift = 0
}
