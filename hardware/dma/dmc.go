package dma

import (
	"fmt"
)

// the number of cycles the processor is stalled for a sample fetch. three
// alignment cycles and one cycle for the read itself
const dmcStallCycles = 4

// dmcEngine is the sample-fetch state machine. when the delta modulation
// channel of the APU empties its sample buffer it pulls the RDY line low and
// steals enough cycles to read the next sample byte from CPU memory
type dmcEngine struct {
	// true while this engine is stalling the processor
	rdyLow bool

	// counts down from dmcStallCycles. the read happens on the final cycle
	stallRemaining int

	sampleAddress uint16
	sampleByte    uint8

	// true when sampleByte holds a byte that has not yet been collected
	loaded bool

	// the most recent CPU read address before the stall began. on the
	// RP2A03E the middle stall cycles repeat this read on the bus
	lastReadAddress uint16
}

func (eng *dmcEngine) reset() {
	*eng = dmcEngine{}
}

// trigger begins a fetch of the byte at address. lastRead is the address of
// the most recent CPU read, needed to reproduce the repeated-read behaviour
// of the early silicon. a trigger received while a fetch is in flight is
// ignored
func (eng *dmcEngine) trigger(address uint16, lastRead uint16) {
	if eng.rdyLow {
		return
	}
	eng.rdyLow = true
	eng.stallRemaining = dmcStallCycles
	eng.sampleAddress = address
	eng.lastReadAddress = lastRead
	eng.loaded = false
}

// advance the engine by the one cycle it has been granted
func (eng *dmcEngine) advance(bus Bus, rev Revision) error {
	if !eng.rdyLow {
		return nil
	}

	eng.stallRemaining--

	switch eng.stallRemaining {
	case 2, 1:
		// the middle cycles of the stall perform no useful work but on the
		// early NTSC silicon they repeat the most recent CPU read. reading
		// is not free of side effects: a shift-register peripheral that was
		// being read when the stall began will be clocked again and lose
		// data
		if rev.repeatedReads() {
			_, err := bus.Read(eng.lastReadAddress)
			if err != nil {
				return fmt.Errorf("dmc dma: %w", err)
			}
		}

	case 0:
		v, err := bus.Read(eng.sampleAddress)
		if err != nil {
			return fmt.Errorf("dmc dma: %w", err)
		}
		eng.sampleByte = v
		eng.loaded = true
		eng.rdyLow = false
	}

	return nil
}

func (eng *dmcEngine) String() string {
	if !eng.rdyLow {
		return "idle"
	}
	return fmt.Sprintf("address=%#04x stall=%d", eng.sampleAddress, eng.stallRemaining)
}
