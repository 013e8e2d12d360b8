package ppu

import (
	"fmt"
)

// vblank reconciles the two views of the vertical blank: the hardware timing
// window, which opens and closes on fixed scanlines, and the software
// visible status flag, which a read of the PPUSTATUS register clears at any
// point inside the window
//
// the two can disagree. a status read drops the flag immediately but the
// window stays open until the pre-render scanline. the interrupt line is
// driven by the flag, never by the window directly
type vblank struct {
	// the readable status bit. cleared by a status read or by the window
	// closing
	flag bool

	// the hardware timing window. not affected by status reads
	spanActive bool

	// bit 7 of PPUCTRL
	enable bool

	// the level signal presented to the processor. always flag AND enable,
	// recomputed on every transition rather than sampled once per frame
	line bool

	// monotonic dot-clock timestamps of the most recent transitions. the
	// line is derived from the flag and enable fields alone but the
	// timestamps record how the current state was arrived at
	lastSetClock   uint64
	lastClearClock uint64
	lastReadClock  uint64
}

func (vbl *vblank) reset() {
	*vbl = vblank{}
}

func (vbl *vblank) recompute() {
	vbl.line = vbl.flag && vbl.enable
}

// windowStart is called when video timing reaches the first dot of the
// blanking window. the one flag-set event per frame
func (vbl *vblank) windowStart(clock uint64) {
	vbl.flag = true
	vbl.spanActive = true
	vbl.lastSetClock = clock
	vbl.recompute()
}

// windowEnd is called on the pre-render scanline. clears both flag and span
func (vbl *vblank) windowEnd(clock uint64) {
	vbl.flag = false
	vbl.spanActive = false
	vbl.lastClearClock = clock
	vbl.recompute()
}

// statusRead is called on every read of the PPUSTATUS register. clears the
// flag and with it the interrupt line, but leaves the window untouched
func (vbl *vblank) statusRead(clock uint64) {
	vbl.flag = false
	vbl.lastReadClock = clock
	vbl.lastClearClock = clock
	vbl.recompute()
}

// writeEnable is called on every write of PPUCTRL, whether or not the enable
// bit changed. enabling while the flag is already set raises the line on
// this operation; the hardware treats the conjunction as an edge in its own
// right
func (vbl *vblank) writeEnable(enable bool) {
	vbl.enable = enable
	vbl.recompute()
}

func (vbl *vblank) String() string {
	return fmt.Sprintf("flag=%v span=%v enable=%v line=%v (set=%d clear=%d read=%d)",
		vbl.flag, vbl.spanActive, vbl.enable, vbl.line,
		vbl.lastSetClock, vbl.lastClearClock, vbl.lastReadClock)
}
