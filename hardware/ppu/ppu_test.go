package ppu_test

import (
	"testing"

	"github.com/ricoh2a03/testnes/hardware/ppu"
	"github.com/ricoh2a03/testnes/hardware/spec"
	"github.com/ricoh2a03/testnes/test"
)

const cycleBudget = 500000

// tick until the given coordinates have just been processed
func tickTo(t *testing.T, p *ppu.PPU, scanline int, dot int) {
	t.Helper()
	var ct int
	for !(p.Coords.Scanline == scanline && p.Coords.Dot == dot) {
		p.Tick()
		ct++
		if ct > cycleBudget {
			t.Fatalf("cycle budget exhausted before scanline %d dot %d", scanline, dot)
		}
	}
}

func readStatus(t *testing.T, p *ppu.PPU) uint8 {
	t.Helper()
	v, err := p.Read(0x2)
	test.DemandSuccess(t, err)
	return v
}

func TestVblankWindow(t *testing.T) {
	p := ppu.Create(nil, nil, spec.NTSC)

	// flag is clear for the whole of the visible frame
	tickTo(t, p, spec.NTSC.VblankTop, 0)
	test.ExpectEquality(t, readStatus(t, p)&0x80, uint8(0))

	// flag raised on the first dot of the blanking window. the status read
	// clears it
	p.Tick()
	test.ExpectEquality(t, readStatus(t, p)&0x80, uint8(0x80))
	test.ExpectEquality(t, readStatus(t, p)&0x80, uint8(0))
}

func TestVblankWindowEnd(t *testing.T) {
	p := ppu.Create(nil, nil, spec.NTSC)

	tickTo(t, p, spec.NTSC.VblankTop, 1)

	// without a status read the flag stays up until the pre-render scanline
	tickTo(t, p, spec.NTSC.PrerenderScanline, 0)
	p.Tick()
	test.ExpectEquality(t, readStatus(t, p)&0x80, uint8(0))
}

func TestNMILineFollowsEnable(t *testing.T) {
	// scenario: flag set while the enable bit is clear. writing the enable
	// bit raises the line on that write. the conjunction of an already-set
	// flag and a fresh enable is itself an edge
	p := ppu.Create(nil, nil, spec.NTSC)

	tickTo(t, p, spec.NTSC.VblankTop, 1)
	test.ExpectFailure(t, p.NMI())

	test.DemandSuccess(t, p.Write(0x0, 0x80))
	test.ExpectSuccess(t, p.NMI())

	// disabling lowers the line again without touching the flag
	test.DemandSuccess(t, p.Write(0x0, 0x00))
	test.ExpectFailure(t, p.NMI())
	test.DemandSuccess(t, p.Write(0x0, 0x80))
	test.ExpectSuccess(t, p.NMI())
}

func TestNMINotRaisedBySpanAlone(t *testing.T) {
	// scenario: flag cleared by a status read while the window is still
	// physically open. enabling now must not raise the line
	p := ppu.Create(nil, nil, spec.NTSC)

	tickTo(t, p, spec.NTSC.VblankTop, 1)
	_ = readStatus(t, p)

	test.DemandSuccess(t, p.Write(0x0, 0x80))
	test.ExpectFailure(t, p.NMI())
}

func TestStatusReadIdempotence(t *testing.T) {
	// a status read clears flag and line exactly once. a second immediate
	// read has no further effect and the flag does not re-fire until the
	// next window start
	p := ppu.Create(nil, nil, spec.NTSC)
	test.DemandSuccess(t, p.Write(0x0, 0x80))

	tickTo(t, p, spec.NTSC.VblankTop, 1)
	test.ExpectSuccess(t, p.NMI())

	test.ExpectEquality(t, readStatus(t, p)&0x80, uint8(0x80))
	test.ExpectFailure(t, p.NMI())
	test.ExpectEquality(t, readStatus(t, p)&0x80, uint8(0))
	test.ExpectFailure(t, p.NMI())

	// remainder of the window passes without the line rising again
	tickTo(t, p, spec.NTSC.PrerenderScanline, 0)
	test.ExpectFailure(t, p.NMI())

	// next frame's window fires as normal
	tickTo(t, p, spec.NTSC.VblankTop, 1)
	test.ExpectSuccess(t, p.NMI())
}

func TestNMIOncePerWindow(t *testing.T) {
	// with the enable bit set for the whole frame the line rises exactly
	// once, at the window start
	p := ppu.Create(nil, nil, spec.NTSC)
	test.DemandSuccess(t, p.Write(0x0, 0x80))

	var edges int
	prev := false
	for range spec.ClksScanline * spec.NTSC.AbsoluteBottom {
		p.Tick()
		if p.NMI() && !prev {
			edges++
		}
		prev = p.NMI()
	}
	test.ExpectEquality(t, edges, 1)
}

func TestOAMDataWrites(t *testing.T) {
	// the OAMDATA register increments the OAM address on every write. this
	// is the mechanism the bulk-copy DMA relies on
	p := ppu.Create(nil, nil, spec.NTSC)

	test.DemandSuccess(t, p.Write(0x3, 0x10))
	for i := range 8 {
		test.DemandSuccess(t, p.Write(0x4, uint8(0xa0+i)))
	}
	for i := range 8 {
		test.ExpectEquality(t, p.OAM[0x10+i], uint8(0xa0+i))
	}
}

func TestVRAMReadBuffer(t *testing.T) {
	p := ppu.Create(nil, nil, spec.NTSC)

	// write two bytes to the start of the first nametable
	test.DemandSuccess(t, p.Write(0x6, 0x20))
	test.DemandSuccess(t, p.Write(0x6, 0x00))
	test.DemandSuccess(t, p.Write(0x7, 0x11))
	test.DemandSuccess(t, p.Write(0x7, 0x22))

	// reads are one byte behind
	test.DemandSuccess(t, p.Write(0x6, 0x20))
	test.DemandSuccess(t, p.Write(0x6, 0x00))
	_, err := p.Read(0x7)
	test.DemandSuccess(t, err)
	v, err := p.Read(0x7)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, v, uint8(0x11))
	v, err = p.Read(0x7)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, v, uint8(0x22))
}
