// Package hardware assembles the chips of the console and orchestrates the
// shared clock. One machine cycle of the processor is three dots of the PPU,
// one tick of the APU and one tick of the DMA unit; the processor is held
// whenever the DMA unit owns the bus.
package hardware

import (
	"fmt"
	"math/rand/v2"

	"github.com/ricoh2a03/testnes/hardware/apu"
	"github.com/ricoh2a03/testnes/hardware/clocks"
	"github.com/ricoh2a03/testnes/hardware/dma"
	"github.com/ricoh2a03/testnes/hardware/memory"
	"github.com/ricoh2a03/testnes/hardware/memory/cartridge"
	"github.com/ricoh2a03/testnes/hardware/peripherals"
	"github.com/ricoh2a03/testnes/hardware/ppu"
	"github.com/ricoh2a03/testnes/hardware/spec"
	"github.com/ricoh2a03/testnes/logger"
	"github.com/ricoh2a03/testnes/ui"
)

// Processor is the instruction loop that drives the console. instruction
// decoding is the business of a collaborating module; the console only
// requires that every elapsed cycle passes through the cycle callback and
// that the NMI and IRQ lines are sampled at instruction boundaries
type Processor interface {
	Reset()
	ExecuteInstruction(cycle func() error) error
}

type Console struct {
	// the processor driving the console. may be nil, in which case Step()
	// advances the console by single machine cycles with no instruction
	// execution
	MC Processor

	Mem *memory.Memory
	PPU *ppu.PPU
	APU *apu.APU
	DMA *dma.DMA

	Controllers [2]*peripherals.Controller

	Spec spec.Spec

	u     *ui.UI
	limit *limiter

	// number of machine cycles since reset
	cycles uint64
}

func Create(u *ui.UI, tv spec.Spec, rev dma.Revision) *Console {
	con := &Console{
		Spec:  tv,
		u:     u,
		limit: newLimiter(tv),
	}

	var addChips memory.AddChips
	con.Mem, addChips = memory.Create(con)

	con.PPU = ppu.Create(u, &ppuBus{con: con}, tv)
	con.DMA = dma.Create(con, &dmaBus{con: con}, rev)
	con.APU = apu.Create(con.DMA)
	con.Controllers[0] = peripherals.NewController("left")
	con.Controllers[1] = peripherals.NewController("right")

	addChips(con.PPU, &ioPorts{con: con})

	if u != nil {
		select {
		case u.RegisterAudio <- con.APU.AudioStream():
		default:
		}
	}

	logger.Logf(logger.Allow, "console", "%s console with %s", tv.ID, rev)

	con.Reset(true)

	return con
}

// Rand8Bit implements the context required by the ram package
func (con *Console) Rand8Bit() uint8 {
	return uint8(rand.IntN(256))
}

// Break implements the context required by the dma package. a break from the
// DMA unit means an arbitration invariant has been violated, which is a bug
// in the emulation rather than anything a program can cause
func (con *Console) Break(err error) {
	logger.Log(logger.Allow, "console", err.Error())
}

func (con *Console) Reset(random bool) {
	if con.MC != nil {
		con.MC.Reset()
	}
	con.Mem.Reset(random)
	con.PPU.Reset()
	con.APU.Reset()
	con.DMA.Reset()
	con.Controllers[0].Reset()
	con.Controllers[1].Reset()
	con.cycles = 0
}

// Insert attaches a cartridge to the console and resets
func (con *Console) Insert(cart *cartridge.Cartridge) {
	con.Mem.Insert(cart)
	con.Reset(true)
	logger.Log(logger.Allow, "console", cart.Status())
}

// Cycles is the number of machine cycles since reset
func (con *Console) Cycles() uint64 {
	return con.cycles
}

// NMI is the level of the interrupt line presented to the processor
func (con *Console) NMI() bool {
	return con.PPU.NMI()
}

// IRQ is the level of the interrupt request line presented to the processor
func (con *Console) IRQ() bool {
	return con.APU.IRQ()
}

// machineCycle advances every chip by one machine cycle
func (con *Console) machineCycle() error {
	for range clocks.DotsPerCycle {
		if con.PPU.Tick() {
			con.limit.Wait()
		}
	}
	con.APU.Tick()

	err := con.DMA.Tick()
	if err != nil {
		return err
	}

	con.cycles++
	return nil
}

// cycle is the callback handed to the processor for every elapsed cycle. the
// processor does not advance past a cycle on which the DMA unit holds the
// bus; the stall is absorbed here, inside the instruction
func (con *Console) cycle() error {
	err := con.machineCycle()
	if err != nil {
		return err
	}

	for con.DMA.Halt() {
		err = con.machineCycle()
		if err != nil {
			return err
		}
	}

	return nil
}

// Step advances the console by one instruction, or by one machine cycle if
// no processor is attached
func (con *Console) Step() error {
	if con.MC == nil {
		return con.machineCycle()
	}
	return con.MC.ExecuteInstruction(con.cycle)
}

// StepCycles advances the console by n machine cycles, honouring any DMA
// stall in progress
func (con *Console) StepCycles(n int) error {
	for range n {
		err := con.machineCycle()
		if err != nil {
			return err
		}
	}
	return nil
}

func (con *Console) Run(stop chan bool, hook func() error) error {
	for {
		select {
		case <-stop:
			return nil
		default:
		}

		con.handleInput()

		err := con.Step()
		if err != nil {
			return err
		}

		err = hook()
		if err != nil {
			return err
		}
	}
}

func (con *Console) String() string {
	return fmt.Sprintf("%s\n%s\n%s", con.PPU.Status(), con.APU.Status(), con.DMA.Status())
}
