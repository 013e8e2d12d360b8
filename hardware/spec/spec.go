package spec

import "image/color"

// dots per scanline is the same for every TV spec
const ClksScanline = 341

// the dot on which the vertical blank flag is raised and lowered
const ClkVblank = 1

type Spec struct {
	ID string

	// the scanline on which the vertical blank window opens. the flag is
	// raised at dot ClkVblank of this scanline
	VblankTop int

	// the pre-render scanline. the vertical blank window closes at dot
	// ClkVblank of this scanline
	PrerenderScanline int

	// total number of scanlines per frame
	AbsoluteBottom int

	// number of visible scanlines from the top of the frame
	VisibleBottom int

	// the ideal frame rate of the console
	RefreshRate float64
}

var NTSC Spec
var PAL Spec

func init() {
	NTSC = Spec{
		// "The NTSC PPU renders 262 scanlines per frame. VBlank begins on
		// scanline 241 and the pre-render scanline is 261"
		ID:                "NTSC",
		VblankTop:         241,
		PrerenderScanline: 261,
		AbsoluteBottom:    262,
		VisibleBottom:     240,
		RefreshRate:       60.0988,
	}

	PAL = Spec{
		ID:                "PAL",
		VblankTop:         241,
		PrerenderScanline: 311,
		AbsoluteBottom:    312,
		VisibleBottom:     240,
		RefreshRate:       50.0070,
	}
}

// the canonical 2C02 palette. the PPU outputs a 6-bit colour index rather
// than RGB so unlike other consoles of the era there is one palette for the
// chip rather than one per TV spec
//
// values from http://www.thealmightyguru.com/Games/Hacking/Wiki/index.php/NES_Palette
var palette = [64]uint32{
	0x7C7C7C, 0x0000FC, 0x0000BC, 0x4428BC, 0x940084, 0xA80020, 0xA81000, 0x881400,
	0x503000, 0x007800, 0x006800, 0x005800, 0x004058, 0x000000, 0x000000, 0x000000,
	0xBCBCBC, 0x0078F8, 0x0058F8, 0x6844FC, 0xD800CC, 0xE40058, 0xF83800, 0xE45C10,
	0xAC7C00, 0x00B800, 0x00A800, 0x00A844, 0x008888, 0x000000, 0x000000, 0x000000,
	0xF8F8F8, 0x3CBCFC, 0x6888FC, 0x9878F8, 0xF878F8, 0xF85898, 0xF87858, 0xFCA044,
	0xF8B800, 0xB8F818, 0x58D854, 0x58F898, 0x00E8D8, 0x787878, 0x000000, 0x000000,
	0xFCFCFC, 0xA4E4FC, 0xB8B8F8, 0xD8B8F8, 0xF8B8F8, 0xF8A4C0, 0xF0D0B0, 0xFCE0A8,
	0xF8D878, 0xD8F878, 0xB8F8B8, 0xB8F8D8, 0x00FCFC, 0xF8D8F8, 0x000000, 0x000000,
}

var Palette [64]color.RGBA

func init() {
	for i := range palette {
		Palette[i] = color.RGBA{
			R: uint8(palette[i] >> 16),
			G: uint8(palette[i] >> 8),
			B: uint8(palette[i]),
			A: 255,
		}
	}
}
