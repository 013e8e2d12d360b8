package clocks

const Mhz = 1000000

// the master crystal frequencies. every other clock in the console is an
// integer division of one of these
const (
	NTSC_Crystal = 21.477272 * Mhz
	PAL_Crystal  = 26.601712 * Mhz
)

// the 2A03 divides the crystal by 12 (NTSC) or 16 (PAL)
const (
	NTSC_CPU = NTSC_Crystal / 12 // 1.79MHz
	PAL_CPU  = PAL_Crystal / 16  // 1.66MHz
)

// the 2C02 divides the crystal by 4 (NTSC) or 5 (PAL)
const (
	NTSC_PPU = NTSC_Crystal / 4
	PAL_PPU  = PAL_Crystal / 5
)

// the number of PPU dots for every CPU cycle. for PAL the true ratio is 3.2
// but the emulation ticks a whole number of dots per cycle and corrects the
// fraction once per five cycles
const DotsPerCycle = 3
