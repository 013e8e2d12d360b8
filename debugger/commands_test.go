package debugger

import (
	"testing"
	"time"

	"github.com/ricoh2a03/testnes/hardware"
	"github.com/ricoh2a03/testnes/hardware/dma"
	"github.com/ricoh2a03/testnes/hardware/memory/cartridge"
	"github.com/ricoh2a03/testnes/hardware/spec"
	"github.com/ricoh2a03/testnes/test"
)

func testDebugger(t *testing.T) *debugger {
	t.Helper()

	rom := make([]uint8, 16+16384+8192)
	copy(rom, []uint8{'N', 'E', 'S', 0x1a, 0x01, 0x01, 0x00, 0x00})
	cart, err := cartridge.Fingerprint(rom)
	test.DemandSuccess(t, err)

	con := hardware.Create(nil, spec.NTSC, dma.RevisionRP2A03G)
	con.Insert(cart)

	return &debugger{
		console: con,
		watches: make(map[uint16]watch),
		styles:  newStyles(),
	}
}

func TestDumpToTopOfMemory(t *testing.T) {
	// a dump ending on the very last address must terminate. the loop
	// counter is a uint16 and would wrap to zero if the end condition were
	// checked after the increment
	m := testDebugger(t)

	done := make(chan bool)
	go func() {
		m.commands([]string{"DUMP", "$fff0", "$ffff"})
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dump to the top of memory did not terminate")
	}
}
