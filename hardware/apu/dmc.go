package apu

import (
	"fmt"
)

// NTSC rate table. the number of machine cycles between clocks of the output
// unit for each of the sixteen rate settings
var dmcRateTable = [16]uint16{
	428, 380, 340, 320, 286, 254, 226, 214,
	190, 160, 142, 128, 106, 84, 72, 54,
}

// dmcChannel is the delta modulation channel: a one-bit delta decoder fed by
// a one-byte sample buffer. whenever the buffer empties and bytes remain in
// the sample, the channel asks the DMA unit to fetch the next byte. the
// fetch stalls the processor; the channel itself never touches the bus
type dmcChannel struct {
	irqEnable bool
	loop      bool
	rateIndex uint8
	irqFlag   bool

	timer uint16

	// the address and length programmed through the registers. latched into
	// currentAddress/bytesRemaining when playback restarts
	sampleAddress uint16
	sampleLength  uint16

	currentAddress uint16
	bytesRemaining uint16

	// the one-byte sample buffer between the DMA unit and the output unit
	sampleBuffer     uint8
	sampleBufferFull bool

	// true while a fetch has been requested but not yet completed
	fetchPending bool

	// the output unit
	shiftRegister uint8
	bitsRemaining int
	outputLevel   uint8
	silence       bool
}

func (dmc *dmcChannel) reset() {
	*dmc = dmcChannel{}

	// the output unit idles in silence until the first sample byte arrives
	dmc.silence = true
	dmc.bitsRemaining = 8
}

func (dmc *dmcChannel) writeControl(data uint8) {
	dmc.irqEnable = data&0x80 == 0x80
	dmc.loop = data&0x40 == 0x40
	dmc.rateIndex = data & 0x0f

	if !dmc.irqEnable {
		dmc.irqFlag = false
	}
}

func (dmc *dmcChannel) writeDirectLoad(data uint8) {
	dmc.outputLevel = data & 0x7f
}

func (dmc *dmcChannel) writeSampleAddress(data uint8) {
	// sample data always lives in the top quarter of the address space
	dmc.sampleAddress = 0xc000 | (uint16(data) << 6)
}

func (dmc *dmcChannel) writeSampleLength(data uint8) {
	dmc.sampleLength = (uint16(data) << 4) | 0x01
}

// writeEnable handles the DMC bit of the channel-enable register. enabling
// with no bytes remaining restarts the sample; disabling abandons it. the
// write always acknowledges a pending interrupt
func (dmc *dmcChannel) writeEnable(enable bool, dma DMA) {
	dmc.irqFlag = false

	if !enable {
		dmc.bytesRemaining = 0
		return
	}

	if dmc.bytesRemaining == 0 {
		dmc.restart()
		dmc.maybeFetch(dma)
	}
}

func (dmc *dmcChannel) restart() {
	dmc.currentAddress = dmc.sampleAddress
	dmc.bytesRemaining = dmc.sampleLength
}

// maybeFetch asks the DMA unit for the next sample byte if the buffer is
// empty and there is anything left to fetch
func (dmc *dmcChannel) maybeFetch(dma DMA) {
	if dmc.sampleBufferFull || dmc.fetchPending || dmc.bytesRemaining == 0 {
		return
	}
	dmc.fetchPending = true
	dma.TriggerDMC(dmc.currentAddress)
}

// completeFetch accepts the byte the DMA unit has read on the channel's
// behalf
func (dmc *dmcChannel) completeFetch(data uint8, dma DMA) {
	dmc.sampleBuffer = data
	dmc.sampleBufferFull = true
	dmc.fetchPending = false

	// the address wraps from the top of memory back to the start of
	// cartridge space
	if dmc.currentAddress == 0xffff {
		dmc.currentAddress = 0x8000
	} else {
		dmc.currentAddress++
	}

	dmc.bytesRemaining--
	if dmc.bytesRemaining == 0 {
		if dmc.loop {
			dmc.restart()
		} else if dmc.irqEnable {
			dmc.irqFlag = true
		}
	}
}

func (dmc *dmcChannel) stepTimer(dma DMA) {
	if dmc.timer == 0 {
		dmc.timer = dmcRateTable[dmc.rateIndex]
		dmc.clockOutput(dma)
	} else {
		dmc.timer--
	}
}

// clockOutput advances the one-bit delta decoder
func (dmc *dmcChannel) clockOutput(dma DMA) {
	if !dmc.silence {
		if dmc.shiftRegister&0x01 == 0x01 {
			if dmc.outputLevel <= 125 {
				dmc.outputLevel += 2
			}
		} else {
			if dmc.outputLevel >= 2 {
				dmc.outputLevel -= 2
			}
		}
		dmc.shiftRegister >>= 1
	}

	if dmc.bitsRemaining > 0 {
		dmc.bitsRemaining--
	}

	if dmc.bitsRemaining == 0 {
		dmc.bitsRemaining = 8
		if dmc.sampleBufferFull {
			dmc.shiftRegister = dmc.sampleBuffer
			dmc.sampleBufferFull = false
			dmc.silence = false
			dmc.maybeFetch(dma)
		} else {
			dmc.silence = true
		}
	}
}

// sample converts the current output level to a signed 16bit sample
func (dmc *dmcChannel) sample() int16 {
	return (int16(dmc.outputLevel) - 64) << 8
}

func (dmc *dmcChannel) String() string {
	return fmt.Sprintf("dmc: addr=%#04x remaining=%d level=%d irq=%v",
		dmc.currentAddress, dmc.bytesRemaining, dmc.outputLevel, dmc.irqFlag)
}
