package dma

import (
	"fmt"
)

// ledger records the interaction between the two engines. the sample-fetch
// engine always wins contention for a cycle so the only bookkeeping needed
// is whether the bulk engine has been preempted and whether it is still owed
// the alignment cycle that follows every preemption
//
// the state here is deliberately explicit. an earlier design recorded the
// machine cycle of each pause and resume and inferred the paused state by
// comparing timestamps. the timestamps survive for status reporting but the
// preempted and alignOwed fields are the single source of truth
type ledger struct {
	// true from the cycle the bulk engine was paused until the alignment
	// cycle that follows the end of the stall
	preempted bool

	// the bulk engine requires one extra alignment cycle after the
	// sample-fetch engine releases the bus, before its first bus access.
	// this is a property of the hardware and not an artefact of the
	// emulation. it applies even if the stall itself contained cycles with
	// no bus activity
	alignOwed bool

	// machine cycles of the most recent pause and resume. status
	// information only
	pausedOn  uint64
	resumedOn uint64

	// number of times the bulk engine has been preempted since reset
	preemptions int
}

func (led *ledger) reset() {
	*led = ledger{}
}

// preempt records that the sample-fetch engine has taken the bus from an
// active bulk transfer. calling preempt while already preempted has no
// effect; the stall is four cycles long and only the first records anything
func (led *ledger) preempt(clock uint64) {
	if led.preempted {
		return
	}
	led.preempted = true
	led.alignOwed = true
	led.pausedOn = clock
	led.preemptions++
}

// resume records that the bulk engine has consumed its post-stall alignment
// cycle and is free to continue
func (led *ledger) resume(clock uint64) {
	led.preempted = false
	led.alignOwed = false
	led.resumedOn = clock
}

func (led *ledger) String() string {
	if led.preempted {
		return fmt.Sprintf("preempted on cycle %d (%d so far)", led.pausedOn, led.preemptions)
	}
	if led.preemptions == 0 {
		return "no preemptions"
	}
	return fmt.Sprintf("%d preemptions (last resumed on cycle %d)", led.preemptions, led.resumedOn)
}
