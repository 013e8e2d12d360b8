package hardware

import "fmt"

// dmaBus connects the DMA unit to console memory. reads go through
// ChipRead() so that register side effects happen but the processor's
// last-read record is untouched
type dmaBus struct {
	con *Console
}

func (b *dmaBus) Read(address uint16) (uint8, error) {
	return b.con.Mem.ChipRead(address)
}

func (b *dmaBus) Write(address uint16, data uint8) error {
	return b.con.Mem.Write(address, data)
}

func (b *dmaBus) LastCPURead() uint16 {
	return b.con.Mem.LastCPURead()
}

// ppuBus connects the PPU to the inserted cartridge. a console with no
// cartridge presents open pattern space and vertical mirroring
type ppuBus struct {
	con *Console
}

func (b *ppuBus) ReadCHR(address uint16) (uint8, error) {
	cart := b.con.Mem.Cartridge
	if cart == nil {
		return 0, nil
	}
	return cart.ReadCHR(address)
}

func (b *ppuBus) WriteCHR(address uint16, data uint8) error {
	cart := b.con.Mem.Cartridge
	if cart == nil {
		return nil
	}
	return cart.WriteCHR(address, data)
}

func (b *ppuBus) NametableIndex(address uint16) uint16 {
	cart := b.con.Mem.Cartridge
	if cart == nil {
		return address & 0x07ff
	}
	return cart.NametableIndex(address)
}

// ioPorts is the register block from 0x4000 to 0x401f: the APU registers,
// the bulk-copy DMA trigger and the two controller ports
type ioPorts struct {
	con *Console
}

const (
	regOAMDMA = 0x14
	regJoy1   = 0x16
	regJoy2   = 0x17
)

func (io *ioPorts) Label() string {
	return "IO"
}

func (io *ioPorts) Read(idx uint16) (uint8, error) {
	switch idx {
	case regJoy1:
		// the upper bits of a controller read are open bus. on a standard
		// console they carry remnants of the register address
		return io.con.Controllers[0].Read() | 0x40, nil
	case regJoy2:
		return io.con.Controllers[1].Read() | 0x40, nil
	}

	v, err := io.con.APU.ReadRegister(idx)
	if err != nil {
		return 0, fmt.Errorf("io: %w", err)
	}
	return v, nil
}

func (io *ioPorts) Write(idx uint16, data uint8) error {
	switch idx {
	case regOAMDMA:
		io.con.DMA.TriggerOAM(data)
		return nil
	case regJoy1:
		io.con.Controllers[0].Strobe(data&0x01 == 0x01)
		io.con.Controllers[1].Strobe(data&0x01 == 0x01)
		return nil
	}

	err := io.con.APU.WriteRegister(idx, data)
	if err != nil {
		return fmt.Errorf("io: %w", err)
	}
	return nil
}
