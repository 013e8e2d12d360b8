// Package ppu emulates the timing and register surface of the 2C02 and the
// ledger that reconciles the vertical blank window against the software
// visible status flag. The pixel pipeline itself is the business of a
// collaborating module; frames produced here carry only the backdrop colour.
package ppu

import (
	"fmt"
	"image"
	"strings"

	"github.com/ricoh2a03/testnes/hardware/spec"
	"github.com/ricoh2a03/testnes/ui"
)

// Bus is the PPU's window onto cartridge space: pattern table reads and
// writes, and the nametable mirroring arrangement of the inserted cartridge
type Bus interface {
	ReadCHR(address uint16) (uint8, error)
	WriteCHR(address uint16, data uint8) error

	// maps a nametable address in the range 0x2000 to 0x2fff onto an index
	// into the console's 2KB of VRAM
	NametableIndex(address uint16) uint16
}

type PPU struct {
	u    *ui.UI
	mem  Bus
	Spec spec.Spec

	// the current coordinates of the TV image
	Coords coords

	// monotonic dot counter. the timestamp domain for the vblank ledger
	clock uint64

	vbl vblank

	ctrl uint8
	mask uint8

	oamAddr uint8
	OAM     [256]uint8

	vram    [2048]uint8
	palette [32]uint8

	// shared two-write latch for PPUSCROLL and PPUADDR, reset by a status
	// read
	writeLatch bool
	vramAddr   uint16
	scrollX    uint8
	scrollY    uint8

	// reads of PPUDATA outside of palette space return the previous value
	readBuffer uint8

	// the last value written to any register. unimplemented status bits
	// return these bits, which some games rely on
	busLatch uint8

	frame *image.RGBA
}

func Create(u *ui.UI, mem Bus, tv spec.Spec) *PPU {
	p := &PPU{
		u:    u,
		mem:  mem,
		Spec: tv,
	}
	p.newFrame()
	return p
}

func (p *PPU) Reset() {
	p.Coords.Reset()
	p.clock = 0
	p.vbl.reset()
	p.ctrl = 0
	p.mask = 0
	p.oamAddr = 0
	p.writeLatch = false
	p.vramAddr = 0
	p.scrollX = 0
	p.scrollY = 0
	p.readBuffer = 0
	p.busLatch = 0
	p.newFrame()
}

func (p *PPU) Label() string {
	return "PPU"
}

func (p *PPU) Status() string {
	var s strings.Builder
	s.WriteString(fmt.Sprintf("%s: %s\n", p.Label(), p.Coords.String()))
	s.WriteString(fmt.Sprintf("vblank: %s\n", p.vbl.String()))
	s.WriteString(fmt.Sprintf("ctrl=%#02x mask=%#02x oamaddr=%#02x vramaddr=%#04x", p.ctrl, p.mask, p.oamAddr, p.vramAddr))
	return s.String()
}

// NMI is the level of the interrupt line presented to the processor. the
// processor's own edge detection decides when a handler actually runs
func (p *PPU) NMI() bool {
	return p.vbl.line
}

// Clock is the number of dots since reset
func (p *PPU) Clock() uint64 {
	return p.clock
}

func (p *PPU) newFrame() {
	p.frame = image.NewRGBA(image.Rect(0, 0, 256, p.Spec.VisibleBottom))
}

// PushRender hands the current frame to the user interface. the send never
// blocks; if the renderer has not collected the previous frame this one is
// dropped
func (p *PPU) PushRender() {
	if p.u == nil {
		return
	}
	select {
	case p.u.SetImage <- p.frame:
	default:
	}
}

// Tick advances the PPU by one dot. returns true at the end of a frame
func (p *PPU) Tick() bool {
	p.clock++
	p.Coords.Dot++

	if p.Coords.Dot >= spec.ClksScanline {
		p.Coords.Dot = 0
		p.Coords.Scanline++

		if p.Coords.Scanline >= p.Spec.AbsoluteBottom {
			p.Coords.Scanline = 0
			p.Coords.Frame++
			p.PushRender()
			p.newFrame()
			return true
		}
	}

	if p.Coords.Dot == spec.ClkVblank {
		if p.Coords.Scanline == p.Spec.VblankTop {
			p.vbl.windowStart(p.clock)
		} else if p.Coords.Scanline == p.Spec.PrerenderScanline {
			p.vbl.windowEnd(p.clock)
		}
	}

	// the pixel pipeline lives elsewhere. the frame carries the backdrop
	// colour so that palette changes are at least visible
	if p.Coords.Scanline < p.Spec.VisibleBottom && p.Coords.Dot >= 1 && p.Coords.Dot <= 256 {
		p.frame.Set(p.Coords.Dot-1, p.Coords.Scanline, spec.Palette[p.palette[0]&0x3f])
	}

	return false
}

func (p *PPU) Read(idx uint16) (uint8, error) {
	switch idx {
	case 0x0:
		// ppuctrl (write only)
	case 0x1:
		// ppumask (write only)
	case 0x2:
		// ppustatus. the flag occupies bit 7. the unimplemented bits return
		// whatever was last on the register bus
		v := p.busLatch & 0x1f
		if p.vbl.flag {
			v |= 0x80
		}
		p.vbl.statusRead(p.clock)
		p.writeLatch = false
		return v, nil
	case 0x3:
		// oamaddr (write only)
	case 0x4:
		return p.OAM[p.oamAddr], nil
	case 0x5:
		// ppuscroll (write only)
	case 0x6:
		// ppuaddr (write only)
	case 0x7:
		v, err := p.readVRAM(p.vramAddr)
		if err != nil {
			return 0, err
		}
		// palette reads are immediate, everything else is buffered
		if p.vramAddr&0x3fff < 0x3f00 {
			v, p.readBuffer = p.readBuffer, v
		} else {
			p.readBuffer = v
		}
		p.vramAddr += p.vramIncrement()
		return v, nil
	default:
		return 0, fmt.Errorf("ppu: not a ppu register (%#04x)", idx)
	}
	return p.busLatch, nil
}

func (p *PPU) Write(idx uint16, data uint8) error {
	p.busLatch = data

	switch idx {
	case 0x0:
		p.ctrl = data
		// every write passes through the ledger, whether or not the enable
		// bit changed
		p.vbl.writeEnable(data&0x80 == 0x80)
	case 0x1:
		p.mask = data
	case 0x2:
		// ppustatus (read only)
	case 0x3:
		p.oamAddr = data
	case 0x4:
		p.OAM[p.oamAddr] = data
		p.oamAddr++
	case 0x5:
		if p.writeLatch {
			p.scrollY = data
		} else {
			p.scrollX = data
		}
		p.writeLatch = !p.writeLatch
	case 0x6:
		if p.writeLatch {
			p.vramAddr = (p.vramAddr & 0xff00) | uint16(data)
		} else {
			p.vramAddr = (p.vramAddr & 0x00ff) | (uint16(data&0x3f) << 8)
		}
		p.writeLatch = !p.writeLatch
	case 0x7:
		err := p.writeVRAM(p.vramAddr, data)
		if err != nil {
			return err
		}
		p.vramAddr += p.vramIncrement()
	default:
		return fmt.Errorf("ppu: not a ppu register (%#04x)", idx)
	}

	return nil
}

func (p *PPU) vramIncrement() uint16 {
	if p.ctrl&0x04 == 0x04 {
		return 32
	}
	return 1
}

// palette addresses 0x10, 0x14, 0x18 and 0x1c mirror their background
// counterparts
func paletteIndex(address uint16) uint16 {
	idx := address & 0x1f
	if idx >= 0x10 && idx&0x03 == 0 {
		idx &= 0x0f
	}
	return idx
}

func (p *PPU) readVRAM(address uint16) (uint8, error) {
	address &= 0x3fff
	switch {
	case address < 0x2000:
		if p.mem == nil {
			return 0, nil
		}
		return p.mem.ReadCHR(address)
	case address < 0x3f00:
		return p.vram[p.nametableIndex(address)], nil
	default:
		return p.palette[paletteIndex(address)], nil
	}
}

func (p *PPU) writeVRAM(address uint16, data uint8) error {
	address &= 0x3fff
	switch {
	case address < 0x2000:
		if p.mem == nil {
			return nil
		}
		return p.mem.WriteCHR(address, data)
	case address < 0x3f00:
		p.vram[p.nametableIndex(address)] = data
	default:
		p.palette[paletteIndex(address)] = data
	}
	return nil
}

func (p *PPU) nametableIndex(address uint16) uint16 {
	address = 0x2000 | (address & 0x0fff)
	if p.mem == nil {
		// vertical mirroring in the absence of a cartridge
		return address & 0x07ff
	}
	return p.mem.NametableIndex(address) & 0x07ff
}
