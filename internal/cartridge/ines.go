package cartridge

import (
	"bytes"
	"io"
	"os"

	"github.com/rng999/nescore/internal/bus"
)

var iNESMagic = [4]byte{0x4E, 0x45, 0x53, 0x1A} // "NES\x1A"

const (
	headerSize        = 16
	trainerSize       = 512
	prgROMUnit        = 16 * 1024
	chrROMUnit        = 8 * 1024
	prgRAMUnit        = 8 * 1024
	defaultPRGRAMSize = 8 * 1024
)

// header mirrors the 16-byte iNES header layout from spec.md §6.1.
type header struct {
	magic      [4]byte
	prgROMSize uint8
	chrROMSize uint8
	flags6     uint8
	flags7     uint8
	prgRAMSize uint8
	flags9     uint8
	_          [6]byte
}

func parseHeader(raw [headerSize]byte) header {
	var h header
	copy(h.magic[:], raw[0:4])
	h.prgROMSize = raw[4]
	h.chrROMSize = raw[5]
	h.flags6 = raw[6]
	h.flags7 = raw[7]
	h.prgRAMSize = raw[8]
	h.flags9 = raw[9]
	return h
}

// isNES2 reports the NES 2.0 signature: flags7 bits 2-3 equal binary 10.
// The original source compares these bit-mask reads against 1 rather than
// testing non-zero; per spec.md §6.1's open-question note we treat every
// such comparison as a non-zero test, which is what this shift-and-mask
// already does.
func (h header) isNES2() bool {
	return (h.flags7>>2)&0x03 == 0x02
}

func (h header) isPAL() bool {
	return h.flags9&0x01 != 0
}

func (h header) hasTrainer() bool {
	return h.flags6&0x04 != 0
}

func (h header) hasBattery() bool {
	return h.flags6&0x02 != 0
}

func (h header) mirrorMode() MirrorMode {
	if h.flags6&0x08 != 0 {
		return MirrorFourScreen
	}
	if h.flags6&0x01 != 0 {
		return MirrorVertical
	}
	return MirrorHorizontal
}

func (h header) mapperID() uint8 {
	return (h.flags6 >> 4) | (h.flags7 & 0xF0)
}

// LoadINESFile reads and parses an iNES ROM file from disk.
func LoadINESFile(path string) (*Cartridge, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, bus.Wrap(err, bus.CodeROMLoadFailure, "could not open ROM file")
	}
	defer f.Close()
	return LoadINES(f)
}

// LoadINES parses an iNES stream into a Cartridge with its mapper attached.
func LoadINES(r io.Reader) (*Cartridge, error) {
	var raw [headerSize]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return nil, bus.Wrap(err, bus.CodeInvalidROMFile, "could not read iNES header")
	}
	h := parseHeader(raw)
	if !bytes.Equal(h.magic[:], iNESMagic[:]) {
		return nil, bus.New(bus.CodeInvalidROMFile, "bad iNES magic number")
	}
	if h.prgROMSize == 0 {
		return nil, bus.New(bus.CodeInvalidROMFile, "PRG-ROM size is zero")
	}
	if h.isNES2() {
		return nil, bus.New(bus.CodeUnsupportedFormat, "NES 2.0 headers are not supported")
	}
	if h.isPAL() {
		return nil, bus.New(bus.CodeUnsupportedVideoMode, "only NTSC ROMs are supported")
	}
	if h.mirrorMode() == MirrorFourScreen {
		return nil, bus.New(bus.CodeNametableMirrorUnsupported, "four-screen mirroring is not supported")
	}

	if h.hasTrainer() {
		var trainer [trainerSize]byte
		if _, err := io.ReadFull(r, trainer[:]); err != nil {
			return nil, bus.Wrap(err, bus.CodeInvalidROMFile, "could not read trainer block")
		}
	}

	prg := make([]uint8, int(h.prgROMSize)*prgROMUnit)
	if _, err := io.ReadFull(r, prg); err != nil {
		return nil, bus.Wrap(err, bus.CodeInvalidROMFile, "could not read PRG-ROM")
	}

	var chr []uint8
	chrIsRAM := h.chrROMSize == 0
	if chrIsRAM {
		chr = make([]uint8, chrROMUnit)
	} else {
		chr = make([]uint8, int(h.chrROMSize)*chrROMUnit)
		if _, err := io.ReadFull(r, chr); err != nil {
			return nil, bus.Wrap(err, bus.CodeInvalidROMFile, "could not read CHR-ROM")
		}
	}

	prgRAMSize := defaultPRGRAMSize
	if h.prgRAMSize != 0 {
		prgRAMSize = int(h.prgRAMSize) * prgRAMUnit
	}

	cart := &Cartridge{
		PRGROM:     prg,
		CHRROM:     chr,
		CHRIsRAM:   chrIsRAM,
		PRGRAM:     make([]uint8, prgRAMSize),
		MirrorMode: h.mirrorMode(),
		HasBattery: h.hasBattery(),
		MapperID:   h.mapperID(),
	}

	mapper, err := newMapper(cart.MapperID, cart)
	if err != nil {
		return nil, err
	}
	cart.Mapper = mapper
	return cart, nil
}
