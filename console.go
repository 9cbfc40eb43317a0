// Package nescore implements the cycle-timed core of an NES emulator: the
// 6502 CPU, the 2C02 PPU, the APU, and the bus/cartridge fabric that binds
// them. Window/audio playback, input binding, and the ROM-file picker are
// left to the driver; this package exposes a frame buffer, an audio sample
// stream, and a button-press surface.
package nescore

import (
	"github.com/rng999/nescore/internal/apu"
	"github.com/rng999/nescore/internal/bus"
	"github.com/rng999/nescore/internal/cartridge"
	"github.com/rng999/nescore/internal/cpu"
	"github.com/rng999/nescore/internal/input"
	"github.com/rng999/nescore/internal/memory"
	"github.com/rng999/nescore/internal/ppu"
)

const (
	audioSampleRate = 44100
	audioBufferSize = 2048
)

// Player identifies which of the two controller ports a button-press
// applies to.
type Player int

const (
	PlayerOne Player = 1
	PlayerTwo Player = 2
)

// Console is the top-level emulator core: one master clock driving the PPU
// every tick and the CPU/APU every third tick, per the NES's 3:1 PPU:CPU
// clock ratio.
type Console struct {
	bus *bus.Bus

	cpu  *cpu.CPU
	ppu  *ppu.PPU
	apu  *apu.APU
	ctrl *input.ControllerInterface
	cart *cartridge.Cartridge

	ram *memory.RAM

	masterClock uint64

	pixels [256 * 240 * 3]uint8
}

// New returns a Console with no cartridge inserted. Call InsertCartridge
// before Tick.
func New() *Console {
	return &Console{
		apu:  apu.New(audioBufferSize),
		ctrl: input.New(),
	}
}

// InsertCartridge loads an iNES ROM from path and wires the bus fabric:
// RAM mirrored through $1FFF, the PPU register window mirrored through
// $3FFF, the APU at $4000-$4015, the controller interface at
// $4016-$4017, and the cartridge slot at $4020-$FFFF.
func (c *Console) InsertCartridge(path string) error {
	cart, err := cartridge.LoadINESFile(path)
	if err != nil {
		return err
	}
	return c.attach(cart)
}

func (c *Console) attach(cart *cartridge.Cartridge) error {
	c.cart = cart
	c.ppu = ppu.New(cart)
	c.ram = memory.NewRAM(bus.AddressRange{Min: 0x0000, Max: 0x07FF})

	b := bus.NewBus()
	c.bus = b

	c.cpu = cpu.New(b)
	c.ppu.SetSignaler(b)
	c.ppu.SetCPUBus(b)
	c.apu.SetSignaler(b)
	c.ctrl.SetSignaler(b)

	devices := []bus.Device{
		c.ram,
		memory.NewMirror(bus.AddressRange{Min: 0x0800, Max: 0x1FFF}, c.ram),
		c.ppu,
		memory.NewMirror(bus.AddressRange{Min: 0x2008, Max: 0x3FFF}, c.ppu),
		c.apu,
		c.ctrl,
		cartridge.NewCartridgeSlot(cart),
		c.cpu,
	}
	for _, d := range devices {
		if err := b.Attach(d); err != nil {
			return err
		}
	}
	c.Reset()
	return nil
}

// Reset loads the CPU's PC from the cartridge's reset vector and puts the
// PPU/controller back into their post-power-on state.
func (c *Console) Reset() {
	c.cpu.Reset()
	c.ppu.Reset()
	c.ctrl.Reset()
	c.masterClock = 0
}

// ResetTo is Reset but forces the CPU's entry point instead of reading the
// reset vector, for deterministic test harnesses.
func (c *Console) ResetTo(pc uint16) {
	c.cpu.ResetTo(pc)
	c.ppu.Reset()
	c.ctrl.Reset()
	c.masterClock = 0
}

// Tick advances the master clock by one PPU dot. Every third dot the CPU
// and APU also advance by one cycle, matching the NES's fixed 3:1 PPU:CPU
// ratio.
func (c *Console) Tick() {
	c.ppu.Tick()
	if c.masterClock%3 == 0 {
		c.cpu.Tick()
		c.apu.Tick()
	}
	c.masterClock++
}

// VideoOutput returns the current frame as 256*240 tightly packed RGB8
// triplets. The returned slice is owned by the Console and is only valid
// until the next Tick.
func (c *Console) VideoOutput() []uint8 {
	fb := c.ppu.FrameBuffer()
	for i, px := range fb {
		c.pixels[i*3+0] = uint8(px >> 16)
		c.pixels[i*3+1] = uint8(px >> 8)
		c.pixels[i*3+2] = uint8(px)
	}
	return c.pixels[:]
}

// FrameCount returns the number of VBlank entries since the last Reset.
func (c *Console) FrameCount() uint64 { return c.ppu.FrameCount() }

// AudioSampleRate returns the fixed output sample rate.
func (c *Console) AudioSampleRate() int { return audioSampleRate }

// AudioBufferSize returns the sample ring buffer's capacity.
func (c *Console) AudioBufferSize() int { return audioBufferSize }

// FillAudio copies up to len(out) samples into out. It fails with
// CodeIncompatibleAudioBufferSize if out is larger than AudioBufferSize.
func (c *Console) FillAudio(out []float32) (int, error) {
	return c.apu.FillAudio(out)
}

// Input sets a single button's pressed state for the given controller
// port.
func (c *Console) Input(player Player, button input.Button, pressed bool) {
	c.ctrl.SetButton(int(player), button, pressed)
}
