// Package dma implements the two DMA engines of the 2A03 and the arbitration
// between them.
//
// The bulk engine copies a 256 byte page to the PPU's OAM in response to a
// write to the OAMDMA register. The sample-fetch engine reads a single byte
// for the delta modulation channel of the APU. Both engines stall the
// processor while they own the bus; the sample-fetch engine always wins when
// both want the same cycle and the bulk engine pauses and later resumes
// without loss.
//
// The package is single threaded. Tick() advances the state machines by
// exactly one machine cycle and everything that happens within a cycle is a
// pure function of the engine states and the conflict ledger. Given the same
// sequence of triggers the signals and memory traffic are identical on every
// run.
package dma

import (
	"fmt"
	"strings"
)

// Bus is the connection to console memory. reads performed by the engines
// carry the same side effects as processor reads
type Bus interface {
	Read(address uint16) (uint8, error)
	Write(address uint16, data uint8) error

	// the address of the most recent processor read. required by the
	// sample-fetch engine to reproduce the repeated-read behaviour of the
	// early silicon
	LastCPURead() uint16
}

// Context allows the DMA unit to signal a condition that should never occur
type Context interface {
	Break(error)
}

// the wrapping error for any errors passed to Context.Break()
var ContextError = fmt.Errorf("dma")

type DMA struct {
	ctx Context
	bus Bus
	rev Revision

	// machine cycle counter. the parity of this value at the moment of an
	// OAMDMA write decides the startup alignment of the bulk transfer
	clock uint64

	oam oamEngine
	dmc dmcEngine
	led ledger
}

func Create(ctx Context, bus Bus, rev Revision) *DMA {
	return &DMA{
		ctx: ctx,
		bus: bus,
		rev: rev,
	}
}

func (d *DMA) Reset() {
	d.clock = 0
	d.oam.reset()
	d.dmc.reset()
	d.led.reset()
}

// Clock is the number of machine cycles since reset
func (d *DMA) Clock() uint64 {
	return d.clock
}

// TriggerOAM begins a bulk transfer of the 256 byte page given by sourcePage.
// called on a write to the OAMDMA register. the current cycle parity is
// latched to decide the startup alignment
func (d *DMA) TriggerOAM(sourcePage uint8) {
	d.oam.trigger(sourcePage, d.clock&0x01 == 0x01)
}

// TriggerDMC begins a sample fetch from the given address. called by the
// delta modulation channel of the APU, not by the processor
func (d *DMA) TriggerDMC(address uint16) {
	d.dmc.trigger(address, d.bus.LastCPURead())
}

// FetchedSample returns the byte read by the most recent sample fetch. the
// second return value is false if no fetch has completed since the last call
func (d *DMA) FetchedSample() (uint8, bool) {
	if !d.dmc.loaded {
		return 0, false
	}
	d.dmc.loaded = false
	return d.dmc.sampleByte, true
}

// Halt is the RDY line presented to the processor. the processor must not
// fetch or execute while it is true. it covers every cycle either engine is
// working, including the cycles the bulk engine spends paused and the
// alignment cycle it consumes on resume
func (d *DMA) Halt() bool {
	return d.dmc.rdyLow || d.oam.active()
}

// Tick advances the DMA unit by one machine cycle. at most one engine
// performs bus activity in any cycle
func (d *DMA) Tick() error {
	d.clock++

	if d.dmc.rdyLow {
		if d.oam.active() {
			d.oam.pause()
			d.led.preempt(d.clock)
		}

		// both engines claiming bus activity on the same cycle is a bug in
		// the emulation, not a state the hardware can reach. the
		// sample-fetch engine proceeds regardless
		if d.oam.busActive() {
			d.ctx.Break(fmt.Errorf("%w: both engines own cycle %d", ContextError, d.clock))
		}

		return d.dmc.advance(d.bus, d.rev)
	}

	if d.oam.active() {
		if d.led.preempted {
			// the first cycle the bulk engine owns after a preemption is a
			// pure alignment cycle. no bus access and no progress
			d.led.resume(d.clock)
			d.oam.resume()
			return nil
		}
		return d.oam.advance(d.bus)
	}

	return nil
}

// OAMActive is true while a bulk transfer is in progress, paused or not
func (d *DMA) OAMActive() bool {
	return d.oam.active()
}

// DMCActive is true while a sample fetch is stalling the processor
func (d *DMA) DMCActive() bool {
	return d.dmc.rdyLow
}

func (d *DMA) Label() string {
	return "DMA"
}

func (d *DMA) Status() string {
	var s strings.Builder
	s.WriteString(fmt.Sprintf("%s: oam: %s\n", d.Label(), d.oam.String()))
	s.WriteString(fmt.Sprintf("dmc: %s\n", d.dmc.String()))
	s.WriteString(fmt.Sprintf("arbitration: %s", d.led.String()))
	return s.String()
}
