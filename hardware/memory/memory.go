package memory

import (
	"fmt"

	"github.com/ricoh2a03/testnes/hardware/memory/cartridge"
	"github.com/ricoh2a03/testnes/hardware/memory/ram"
)

// Area is an addressable region of the console. read and write both take an
// index value: an address in the area with the area origin removed. an area
// does not need to know its location in memory, only the relative placement
// of addresses within itself
//
// the cartridge is the exception. its decode logic sees the whole bus so it
// receives full addresses
type Area interface {
	Read(idx uint16) (uint8, error)
	Write(idx uint16, data uint8) error
	Label() string
}

type Memory struct {
	RAM       *ram.RAM
	PPU       Area
	IO        Area
	Cartridge *cartridge.Cartridge

	// the address of the most recent processor read. consulted by the
	// sample-fetch DMA engine when reproducing the repeated-read quirk
	lastCPURead uint16
}

type Context interface {
	ram.Context
}

// AddChips is returned by the Create() function and should be called to
// finalise the memory creation process
type AddChips func(ppu Area, io Area)

func Create(ctx Context) (*Memory, AddChips) {
	mem := &Memory{
		RAM: ram.Create(ctx, "ram", 0x0800),
	}
	return mem, func(ppu Area, io Area) {
		mem.PPU = ppu
		mem.IO = io
	}
}

func (mem *Memory) Reset(random bool) {
	mem.RAM.Reset(random)
	mem.lastCPURead = 0
}

// Insert attaches a cartridge to the bus, replacing any previous cartridge
func (mem *Memory) Insert(cart *cartridge.Cartridge) {
	mem.Cartridge = cart
}

// LastCPURead is the address of the most recent processor read
func (mem *Memory) LastCPURead() uint16 {
	return mem.lastCPURead
}

// MapAddress returns the memory area and the index into the area
// corresponding to the address. a nil area means the address is unmapped
func (mem *Memory) MapAddress(address uint16) (uint16, Area) {
	// map taken from the 2A03 datasheet:
	//
	// 0000 to 07FF    2KB internal RAM
	// 0800 to 1FFF    mirrors of internal RAM
	// 2000 to 2007    PPU registers
	// 2008 to 3FFF    mirrors of PPU registers (every 8 bytes)
	// 4000 to 401F    APU and I/O registers
	// 4020 to FFFF    cartridge space

	if address <= 0x1fff {
		return address & 0x07ff, mem.RAM
	}
	if address <= 0x3fff {
		return address & 0x0007, mem.PPU
	}
	if address <= 0x401f {
		return address & 0x001f, mem.IO
	}
	if mem.Cartridge == nil {
		return 0, nil
	}
	return address, mem.Cartridge
}

// Read from the bus as the processor. records the address for the benefit of
// the sample-fetch DMA engine
func (mem *Memory) Read(address uint16) (uint8, error) {
	mem.lastCPURead = address
	return mem.ChipRead(address)
}

// ChipRead reads from the bus with the same side effects as a processor read
// but without recording the address. used by the DMA engines, whose reads
// are not processor reads even though the peripherals cannot tell the
// difference
func (mem *Memory) ChipRead(address uint16) (uint8, error) {
	idx, area := mem.MapAddress(address)
	if area == nil {
		return 0, fmt.Errorf("memory: read of unmapped address (%#04x)", address)
	}
	return area.Read(idx)
}

func (mem *Memory) Write(address uint16, data uint8) error {
	idx, area := mem.MapAddress(address)
	if area == nil {
		return fmt.Errorf("memory: write of unmapped address (%#04x)", address)
	}
	return area.Write(idx, data)
}
