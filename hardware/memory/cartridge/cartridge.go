// Package cartridge understands the iNES container format and the NROM
// board. Bank-switching boards are the business of a collaborating module.
package cartridge

import (
	"bytes"
	"errors"
	"fmt"
)

// returned by Fingerprint() if the data is not an iNES container
var UnrecognisedData = errors.New("cartridge: unrecognised data")

const (
	headerLen = 16
	prgUnit   = 16384
	chrUnit   = 8192
)

type Mirroring int

const (
	MirrorHorizontal Mirroring = iota
	MirrorVertical
)

func (m Mirroring) String() string {
	switch m {
	case MirrorHorizontal:
		return "horizontal"
	case MirrorVertical:
		return "vertical"
	}
	return "unknown"
}

type Cartridge struct {
	mapper    int
	mirroring Mirroring

	prg []uint8
	chr []uint8

	// chr is RAM if the container declares no CHR data
	chrRAM bool

	// 8KB of PRG RAM at 0x6000. not battery backed
	prgRAM [0x2000]uint8
}

// Fingerprint examines data and returns a Cartridge if the data is an iNES
// container for a board this package understands
func Fingerprint(data []uint8) (*Cartridge, error) {
	if len(data) < headerLen || !bytes.Equal(data[:4], []byte{'N', 'E', 'S', 0x1a}) {
		return nil, UnrecognisedData
	}

	prgLen := int(data[4]) * prgUnit
	chrLen := int(data[5]) * chrUnit
	mapper := int(data[6]>>4) | int(data[7]&0xf0)

	if mapper != 0 {
		return nil, fmt.Errorf("cartridge: unsupported mapper (%d)", mapper)
	}

	offset := headerLen
	if data[6]&0x04 == 0x04 {
		// skip trainer data
		offset += 512
	}

	if prgLen == 0 {
		return nil, fmt.Errorf("cartridge: container declares no PRG data")
	}

	if len(data) < offset+prgLen+chrLen {
		return nil, fmt.Errorf("cartridge: container is truncated")
	}

	cart := &Cartridge{
		mapper: mapper,
	}

	if data[6]&0x01 == 0x01 {
		cart.mirroring = MirrorVertical
	} else {
		cart.mirroring = MirrorHorizontal
	}

	cart.prg = make([]uint8, prgLen)
	copy(cart.prg, data[offset:offset+prgLen])

	if chrLen == 0 {
		cart.chr = make([]uint8, chrUnit)
		cart.chrRAM = true
	} else {
		cart.chr = make([]uint8, chrLen)
		copy(cart.chr, data[offset+prgLen:offset+prgLen+chrLen])
	}

	return cart, nil
}

func (cart *Cartridge) Label() string {
	return "NROM"
}

func (cart *Cartridge) Status() string {
	return fmt.Sprintf("%s: prg=%dk chr=%dk (ram=%v) mirroring=%s",
		cart.Label(), len(cart.prg)/1024, len(cart.chr)/1024, cart.chrRAM, cart.mirroring)
}

func (cart *Cartridge) Mirroring() Mirroring {
	return cart.mirroring
}

// Read from the cartridge. the address is the full bus address; cartridge
// space begins at 0x4020
func (cart *Cartridge) Read(address uint16) (uint8, error) {
	switch {
	case address >= 0x8000:
		idx := int(address-0x8000) % len(cart.prg)
		return cart.prg[idx], nil
	case address >= 0x6000:
		return cart.prgRAM[address-0x6000], nil
	}
	return 0, nil
}

func (cart *Cartridge) Write(address uint16, data uint8) error {
	switch {
	case address >= 0x8000:
		// PRG ROM. writes to an NROM board have no effect
	case address >= 0x6000:
		cart.prgRAM[address-0x6000] = data
	}
	return nil
}

// ReadCHR reads from the pattern tables
func (cart *Cartridge) ReadCHR(address uint16) (uint8, error) {
	if int(address) >= len(cart.chr) {
		return 0, fmt.Errorf("cartridge: chr address out of range (%#04x)", address)
	}
	return cart.chr[address], nil
}

// WriteCHR writes to the pattern tables. only meaningful when the board
// carries CHR RAM
func (cart *Cartridge) WriteCHR(address uint16, data uint8) error {
	if !cart.chrRAM {
		return nil
	}
	if int(address) >= len(cart.chr) {
		return fmt.Errorf("cartridge: chr address out of range (%#04x)", address)
	}
	cart.chr[address] = data
	return nil
}

// NametableIndex maps a nametable address onto an index into the console's
// 2KB of VRAM according to the mirroring arrangement of the board
func (cart *Cartridge) NametableIndex(address uint16) uint16 {
	address &= 0x0fff
	table := address / 0x400
	offset := address & 0x3ff

	switch cart.mirroring {
	case MirrorVertical:
		return (table&0x01)*0x400 + offset
	default:
		// horizontal
		return (table>>1)*0x400 + offset
	}
}
