package cartridge_test

import (
	"errors"
	"testing"

	"github.com/ricoh2a03/testnes/hardware/memory/cartridge"
	"github.com/ricoh2a03/testnes/test"
)

// buildROM synthesises an iNES container with the requested number of 16KB
// PRG banks and 8KB CHR banks
func buildROM(prgBanks int, chrBanks int, flags6 uint8) []uint8 {
	rom := make([]uint8, 16+prgBanks*16384+chrBanks*8192)
	copy(rom, []uint8{'N', 'E', 'S', 0x1a, uint8(prgBanks), uint8(chrBanks), flags6, 0x00})
	return rom
}

func TestFingerprintRejections(t *testing.T) {
	// not an iNES container at all
	_, err := cartridge.Fingerprint([]uint8{0x4e, 0x45, 0x53})
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, errors.Is(err, cartridge.UnrecognisedData))

	_, err = cartridge.Fingerprint(make([]uint8, 32))
	test.ExpectSuccess(t, errors.Is(err, cartridge.UnrecognisedData))

	// unsupported mapper in the upper nibble of flags 6
	rom := buildROM(1, 1, 0x10)
	_, err = cartridge.Fingerprint(rom)
	test.ExpectFailure(t, err)

	// header that promises more data than the container holds
	rom = buildROM(1, 1, 0x00)
	_, err = cartridge.Fingerprint(rom[:len(rom)-1])
	test.ExpectFailure(t, err)

	// a container with no PRG data has nothing to map into ROM space
	rom = buildROM(0, 1, 0x00)
	_, err = cartridge.Fingerprint(rom)
	test.ExpectFailure(t, err)
}

func TestPRGMirroring(t *testing.T) {
	rom := buildROM(1, 1, 0x00)
	rom[16] = 0xab
	cart, err := cartridge.Fingerprint(rom)
	test.DemandSuccess(t, err)

	// a single 16KB bank appears at both 0x8000 and 0xc000
	v, err := cart.Read(0x8000)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, v, uint8(0xab))

	v, err = cart.Read(0xc000)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, v, uint8(0xab))

	// writes to PRG ROM have no effect
	test.DemandSuccess(t, cart.Write(0x8000, 0xff))
	v, _ = cart.Read(0x8000)
	test.ExpectEquality(t, v, uint8(0xab))
}

func TestPRGRAM(t *testing.T) {
	cart, err := cartridge.Fingerprint(buildROM(1, 1, 0x00))
	test.DemandSuccess(t, err)

	test.DemandSuccess(t, cart.Write(0x6000, 0x5a))
	v, err := cart.Read(0x6000)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, v, uint8(0x5a))
}

func TestCHRRAM(t *testing.T) {
	// no CHR banks in the container means the board carries CHR RAM
	cart, err := cartridge.Fingerprint(buildROM(1, 0, 0x00))
	test.DemandSuccess(t, err)

	test.DemandSuccess(t, cart.WriteCHR(0x0123, 0x77))
	v, err := cart.ReadCHR(0x0123)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, v, uint8(0x77))

	// CHR ROM ignores writes
	cart, err = cartridge.Fingerprint(buildROM(1, 1, 0x00))
	test.DemandSuccess(t, err)

	test.DemandSuccess(t, cart.WriteCHR(0x0123, 0x77))
	v, err = cart.ReadCHR(0x0123)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, v, uint8(0x00))
}

func TestNametableMirroring(t *testing.T) {
	// flags 6 bit 0 set means vertical mirroring
	vert, err := cartridge.Fingerprint(buildROM(1, 1, 0x01))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, vert.Mirroring(), cartridge.MirrorVertical)

	// vertical: tables 0 and 2 share VRAM, 1 and 3 share VRAM
	test.ExpectEquality(t, vert.NametableIndex(0x2000), uint16(0x000))
	test.ExpectEquality(t, vert.NametableIndex(0x2800), uint16(0x000))
	test.ExpectEquality(t, vert.NametableIndex(0x2400), uint16(0x400))
	test.ExpectEquality(t, vert.NametableIndex(0x2c00), uint16(0x400))

	horiz, err := cartridge.Fingerprint(buildROM(1, 1, 0x00))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, horiz.Mirroring(), cartridge.MirrorHorizontal)

	// horizontal: tables 0 and 1 share VRAM, 2 and 3 share VRAM
	test.ExpectEquality(t, horiz.NametableIndex(0x2000), uint16(0x000))
	test.ExpectEquality(t, horiz.NametableIndex(0x2400), uint16(0x000))
	test.ExpectEquality(t, horiz.NametableIndex(0x2800), uint16(0x400))
	test.ExpectEquality(t, horiz.NametableIndex(0x2c00), uint16(0x400))
}
