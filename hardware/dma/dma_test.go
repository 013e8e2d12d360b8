package dma_test

import (
	"testing"

	"github.com/ricoh2a03/testnes/hardware/dma"
	"github.com/ricoh2a03/testnes/test"
)

// guard against runaway loops in malformed test setups
const cycleBudget = 10000

type mockContext struct {
	breaks []error
}

func (ctx *mockContext) Break(err error) {
	ctx.breaks = append(ctx.breaks, err)
}

// mockBus is a flat 64k memory with a write to the OAMDATA register
// redirected to a growing list, mimicking the auto-incrementing OAM address
// of the PPU
type mockBus struct {
	mem       [0x10000]uint8
	oam       []uint8
	reads     []uint16
	lastCPU   uint16
	busActive bool
}

func (bus *mockBus) Read(address uint16) (uint8, error) {
	bus.reads = append(bus.reads, address)
	bus.busActive = true
	return bus.mem[address], nil
}

func (bus *mockBus) Write(address uint16, data uint8) error {
	bus.busActive = true
	if address == 0x2004 {
		bus.oam = append(bus.oam, data)
		return nil
	}
	bus.mem[address] = data
	return nil
}

func (bus *mockBus) LastCPURead() uint16 {
	return bus.lastCPU
}

func fillPage(bus *mockBus, page uint8) {
	base := uint16(page) << 8
	for i := range 256 {
		bus.mem[base+uint16(i)] = uint8(i)
	}
}

// tick until the bulk engine goes idle, returning the number of cycles
// consumed. fails the test if the cycle budget is exhausted
func runToCompletion(t *testing.T, d *dma.DMA) int {
	t.Helper()

	var ct int
	for d.OAMActive() {
		err := d.Tick()
		test.DemandSuccess(t, err)
		ct++
		if ct > cycleBudget {
			t.Fatal("cycle budget exhausted before transfer completed")
		}
	}
	return ct
}

func TestOAMTransferEvenStart(t *testing.T) {
	// scenario: page 0x02 filled with 0..255, transfer triggered on an even
	// cycle, no interruption. all 256 bytes arrive in order in exactly 513
	// cycles
	bus := &mockBus{}
	fillPage(bus, 0x02)

	d := dma.Create(&mockContext{}, bus, dma.RevisionRP2A03G)

	// clock starts at zero, which is even
	d.TriggerOAM(0x02)
	test.ExpectSuccess(t, d.Halt())

	ct := runToCompletion(t, d)
	test.ExpectEquality(t, ct, 513)
	test.ExpectFailure(t, d.Halt())

	test.DemandEquality(t, len(bus.oam), 256)
	for i := range 256 {
		test.ExpectEquality(t, bus.oam[i], uint8(i))
	}
}

func TestOAMTransferOddStart(t *testing.T) {
	bus := &mockBus{}
	fillPage(bus, 0x02)

	d := dma.Create(&mockContext{}, bus, dma.RevisionRP2A03G)

	// a single tick leaves the clock on an odd cycle
	test.DemandSuccess(t, d.Tick())
	d.TriggerOAM(0x02)

	ct := runToCompletion(t, d)
	test.ExpectEquality(t, ct, 514)

	test.DemandEquality(t, len(bus.oam), 256)
	for i := range 256 {
		test.ExpectEquality(t, bus.oam[i], uint8(i))
	}
}

func TestOAMRetriggerRestartsTransfer(t *testing.T) {
	// a second write to the trigger register while a transfer is running
	// re-latches the source page and restarts from offset zero
	bus := &mockBus{}
	fillPage(bus, 0x02)
	base := uint16(0x0300)
	for i := range 256 {
		bus.mem[base+uint16(i)] = uint8(255 - i)
	}

	d := dma.Create(&mockContext{}, bus, dma.RevisionRP2A03G)
	d.TriggerOAM(0x02)

	for range 101 {
		test.DemandSuccess(t, d.Tick())
	}

	d.TriggerOAM(0x03)
	bus.oam = bus.oam[:0]
	_ = runToCompletion(t, d)

	test.DemandEquality(t, len(bus.oam), 256)
	for i := range 256 {
		test.ExpectEquality(t, bus.oam[i], uint8(255-i))
	}
}

func TestDMCFetchTiming(t *testing.T) {
	// the sample fetch always completes in exactly four cycles and the RDY
	// line is low for all of them
	bus := &mockBus{}
	bus.mem[0xc123] = 0x5a

	d := dma.Create(&mockContext{}, bus, dma.RevisionRP2A03G)
	d.TriggerDMC(0xc123)
	test.ExpectSuccess(t, d.DMCActive())

	for i := range 4 {
		test.ExpectSuccess(t, d.Halt(), i)
		test.DemandSuccess(t, d.Tick())
	}
	test.ExpectFailure(t, d.DMCActive())
	test.ExpectFailure(t, d.Halt())

	v, ok := d.FetchedSample()
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, v, 0x5a)

	// the sample is only handed over once
	_, ok = d.FetchedSample()
	test.ExpectFailure(t, ok)
}

func TestDMCRepeatedReads(t *testing.T) {
	// on the RP2A03E the middle stall cycles repeat the most recent CPU
	// read. later revisions leave the bus quiet
	for _, tc := range []struct {
		rev   dma.Revision
		reads int
	}{
		{dma.RevisionRP2A03G, 1},
		{dma.RevisionRP2A07, 1},
		{dma.RevisionRP2A03E, 3},
	} {
		t.Run(tc.rev.String(), func(t *testing.T) {
			bus := &mockBus{}
			bus.lastCPU = 0x4016

			d := dma.Create(&mockContext{}, bus, tc.rev)
			d.TriggerDMC(0xc000)

			for range 4 {
				test.DemandSuccess(t, d.Tick())
			}

			test.ExpectEquality(t, len(bus.reads), tc.reads)
			if tc.rev == dma.RevisionRP2A03E {
				test.ExpectEquality(t, bus.reads[0], uint16(0x4016))
				test.ExpectEquality(t, bus.reads[1], uint16(0x4016))
				test.ExpectEquality(t, bus.reads[2], uint16(0xc000))
			}
		})
	}
}

func TestDMCPreemptsOAM(t *testing.T) {
	// scenario: trigger a bulk transfer; after 200 cycles trigger a sample
	// fetch. the bulk engine performs no bus access for the four stall
	// cycles and its offset does not move. one alignment cycle follows
	// before the transfer continues, and every byte still arrives exactly
	// once
	bus := &mockBus{}
	fillPage(bus, 0x02)
	bus.mem[0xc000] = 0x99

	d := dma.Create(&mockContext{}, bus, dma.RevisionRP2A03G)
	d.TriggerOAM(0x02)

	for range 200 {
		test.DemandSuccess(t, d.Tick())
	}

	// 200 cycles is one alignment cycle and 199 half-cycles. 99 bytes have
	// arrived so far
	test.DemandEquality(t, len(bus.oam), 99)

	d.TriggerDMC(0xc000)

	for i := range 4 {
		test.ExpectSuccess(t, d.Halt(), i)
		test.ExpectSuccess(t, d.DMCActive(), i)

		oamBytes := len(bus.oam)
		test.DemandSuccess(t, d.Tick())

		// no bulk-copy progress during the stall
		test.ExpectEquality(t, len(bus.oam), oamBytes)
		test.ExpectSuccess(t, d.OAMActive(), i)
	}
	test.ExpectFailure(t, d.DMCActive())

	// the first cycle after the stall is the alignment cycle. no bus
	// activity from either engine
	reads := len(bus.reads)
	oamBytes := len(bus.oam)
	test.DemandSuccess(t, d.Tick())
	test.ExpectEquality(t, len(bus.reads), reads)
	test.ExpectEquality(t, len(bus.oam), oamBytes)
	test.ExpectSuccess(t, d.Halt())

	// the transfer then completes with no skipped and no duplicated bytes
	_ = runToCompletion(t, d)
	test.DemandEquality(t, len(bus.oam), 256)
	for i := range 256 {
		test.ExpectEquality(t, bus.oam[i], uint8(i))
	}

	v, ok := d.FetchedSample()
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, v, 0x99)
}

func TestDMCPreemptionCycleCount(t *testing.T) {
	// an interrupted transfer takes the uninterrupted total plus the four
	// stall cycles plus the one alignment cycle
	bus := &mockBus{}
	fillPage(bus, 0x02)

	d := dma.Create(&mockContext{}, bus, dma.RevisionRP2A03G)
	d.TriggerOAM(0x02)

	var ct int
	for range 200 {
		test.DemandSuccess(t, d.Tick())
		ct++
	}

	d.TriggerDMC(0xc000)
	ct += runToCompletion(t, d)

	test.ExpectEquality(t, ct, 513+4+1)
}

func TestDMCDuringOAMAlignment(t *testing.T) {
	// a sample fetch arriving while the bulk engine is still in its startup
	// alignment must not corrupt the transfer. the alignment tax on resume
	// applies even though the engine never reached the bus
	bus := &mockBus{}
	fillPage(bus, 0x02)

	d := dma.Create(&mockContext{}, bus, dma.RevisionRP2A03G)
	d.TriggerOAM(0x02)
	d.TriggerDMC(0xc000)

	_ = runToCompletion(t, d)

	test.DemandEquality(t, len(bus.oam), 256)
	for i := range 256 {
		test.ExpectEquality(t, bus.oam[i], uint8(i))
	}
}

func TestHaltQuietWhenIdle(t *testing.T) {
	bus := &mockBus{}
	d := dma.Create(&mockContext{}, bus, dma.RevisionRP2A03G)

	for range 100 {
		test.DemandSuccess(t, d.Tick())
		test.ExpectFailure(t, d.Halt())
	}
	test.ExpectEquality(t, len(bus.reads), 0)
}

func TestDeterminism(t *testing.T) {
	// identical trigger sequences produce identical memory traffic and
	// identical halt signals
	run := func() ([]uint8, []bool) {
		bus := &mockBus{}
		fillPage(bus, 0x02)
		d := dma.Create(&mockContext{}, bus, dma.RevisionRP2A03E)

		var halts []bool
		d.TriggerOAM(0x02)
		for i := range 600 {
			if i == 97 {
				d.TriggerDMC(0xc011)
			}
			if err := d.Tick(); err != nil {
				t.Fatal(err)
			}
			halts = append(halts, d.Halt())
		}
		return bus.oam, halts
	}

	oamA, haltsA := run()
	oamB, haltsB := run()

	test.DemandEquality(t, len(oamA), len(oamB))
	for i := range oamA {
		test.ExpectEquality(t, oamA[i], oamB[i])
	}
	test.DemandEquality(t, len(haltsA), len(haltsB))
	for i := range haltsA {
		test.ExpectEquality(t, haltsA[i], haltsB[i])
	}
}
