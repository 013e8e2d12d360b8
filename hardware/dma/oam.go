package dma

import (
	"fmt"
)

// the destination of every byte moved by the bulk engine. the OAMDATA
// register increments the PPU's OAM address on each write so the engine
// itself only ever deals with the one address
const oamData = 0x2004

type oamPhase int

const (
	oamIdle oamPhase = iota
	oamAligning
	oamReading
	oamWriting
	oamPausedReading
	oamPausedWriting
)

func (p oamPhase) String() string {
	switch p {
	case oamIdle:
		return "idle"
	case oamAligning:
		return "aligning"
	case oamReading:
		return "reading"
	case oamWriting:
		return "writing"
	case oamPausedReading:
		return "paused (reading)"
	case oamPausedWriting:
		return "paused (writing)"
	}
	return "unknown"
}

// oamEngine is the bulk-copy state machine. a write to the OAMDMA register
// copies an entire 256 byte page from CPU memory to the PPU's OAM, one
// read/write pair of cycles per byte
//
// the phase field is the authority on what the engine does next. earlier
// versions of this engine inferred the paused state by comparing timestamps
// recorded at the moment of preemption but the explicit phase values are far
// easier to reason about
type oamEngine struct {
	phase      oamPhase
	sourcePage uint8

	// index of the next byte to be transferred. the transfer is over when
	// the index wraps back to zero after a write
	offset uint8

	// number of cycles the engine has owned since the trigger
	cycle int

	// a transfer started on an odd machine cycle requires one extra wait
	// cycle before the first read
	needsAlignment bool

	// the byte read in the read half-cycle, held until the write half-cycle
	temp uint8
}

func (eng *oamEngine) reset() {
	*eng = oamEngine{}
}

// trigger begins a new transfer. a trigger received while a transfer is
// running restarts the transfer from offset zero with the new source page,
// matching the re-latching behaviour of the hardware
func (eng *oamEngine) trigger(sourcePage uint8, oddCycle bool) {
	eng.phase = oamAligning
	eng.sourcePage = sourcePage
	eng.offset = 0
	eng.cycle = 0
	eng.needsAlignment = oddCycle
	eng.temp = 0
}

func (eng *oamEngine) active() bool {
	return eng.phase != oamIdle
}

// whether the engine would touch the bus on its next granted cycle
func (eng *oamEngine) busActive() bool {
	return eng.phase == oamReading || eng.phase == oamWriting
}

// advance the engine by the one cycle it has been granted. the arbiter must
// not call this while the sample-fetch engine owns the cycle
func (eng *oamEngine) advance(bus Bus) error {
	switch eng.phase {
	case oamIdle:
		return nil

	case oamAligning:
		// the first cycle after the trigger is always a wait cycle. a
		// transfer begun on an odd machine cycle waits for one more
		if eng.needsAlignment {
			eng.needsAlignment = false
		} else {
			eng.phase = oamReading
		}

	case oamReading:
		v, err := bus.Read((uint16(eng.sourcePage) << 8) | uint16(eng.offset))
		if err != nil {
			return fmt.Errorf("oam dma: %w", err)
		}
		eng.temp = v
		eng.phase = oamWriting

	case oamWriting:
		err := bus.Write(oamData, eng.temp)
		if err != nil {
			return fmt.Errorf("oam dma: %w", err)
		}
		eng.offset++
		if eng.offset == 0 {
			eng.phase = oamIdle
		} else {
			eng.phase = oamReading
		}

	case oamPausedReading, oamPausedWriting:
		return fmt.Errorf("oam dma: advanced while paused")
	}

	eng.cycle++
	return nil
}

// pause parks the engine in whichever half-cycle it was in. the offset, the
// cycle counter and the temp byte are all left untouched so the transfer
// picks up exactly where it stopped. calling pause on an already paused
// engine has no effect
func (eng *oamEngine) pause() {
	switch eng.phase {
	case oamReading:
		eng.phase = oamPausedReading
	case oamWriting:
		eng.phase = oamPausedWriting
	}

	// the aligning phase performs no bus access so there is nothing to park.
	// the engine stays in the aligning phase while paused
}

func (eng *oamEngine) resume() {
	switch eng.phase {
	case oamPausedReading:
		eng.phase = oamReading
	case oamPausedWriting:
		eng.phase = oamWriting
	}
}

func (eng *oamEngine) String() string {
	if eng.phase == oamIdle {
		return "idle"
	}
	return fmt.Sprintf("page=%#02x offset=%#02x cycle=%d phase=%s",
		eng.sourcePage, eng.offset, eng.cycle, eng.phase)
}
