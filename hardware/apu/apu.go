// Package apu emulates the audio unit of the 2A03. Only the delta modulation
// channel is of interest to this project: it is the client of the
// sample-fetch DMA engine and the reason the engine exists. The pulse,
// triangle and noise channels are the business of a collaborating module.
package apu

import (
	"fmt"

	"github.com/ricoh2a03/testnes/hardware/clocks"
)

// the rate the console's audio output is sampled at for playback
const SampleFreq = 44100

const cyclesPerSample = clocks.NTSC_CPU / SampleFreq

// DMA is the APU's view of the DMA unit. the delta modulation channel
// triggers a fetch when its sample buffer empties and collects the byte once
// the stall has run its course
type DMA interface {
	TriggerDMC(address uint16)
	FetchedSample() (uint8, bool)
}

type APU struct {
	dma DMA

	dmc dmcChannel

	// audio output stream. mono signed 16bit
	buf *audioBuffer
	rec *recorder

	// fractional cycle accumulator for downsampling to SampleFreq
	sampleAcc float64
}

func Create(dma DMA) *APU {
	apu := &APU{
		dma: dma,
		buf: newAudioBuffer(),
	}
	apu.Reset()
	return apu
}

func (apu *APU) Reset() {
	apu.dmc.reset()
	apu.sampleAcc = 0
}

func (apu *APU) Label() string {
	return "APU"
}

func (apu *APU) Status() string {
	return fmt.Sprintf("%s: %s", apu.Label(), apu.dmc.String())
}

// AudioStream returns the io.Reader the playback device reads from
func (apu *APU) AudioStream() *audioBuffer {
	return apu.buf
}

// IRQ is the level of the interrupt request line presented to the processor
func (apu *APU) IRQ() bool {
	return apu.dmc.irqFlag
}

// Tick advances the APU by one machine cycle
func (apu *APU) Tick() {
	// collect any byte the sample-fetch engine has finished reading
	if v, ok := apu.dma.FetchedSample(); ok {
		apu.dmc.completeFetch(v, apu.dma)
	}

	apu.dmc.stepTimer(apu.dma)

	apu.sampleAcc++
	if apu.sampleAcc >= cyclesPerSample {
		apu.sampleAcc -= cyclesPerSample
		s := apu.dmc.sample()
		apu.buf.push(s)
		if apu.rec != nil {
			apu.rec.push(s)
		}
	}
}

// ReadRegister reads one of the APU registers. idx is the register offset
// from 0x4000
func (apu *APU) ReadRegister(idx uint16) (uint8, error) {
	switch idx {
	case 0x15:
		var v uint8
		if apu.dmc.bytesRemaining > 0 {
			v |= 0x10
		}
		if apu.dmc.irqFlag {
			v |= 0x80
		}
		return v, nil
	}

	// every other APU register is write only
	return 0, nil
}

// WriteRegister writes one of the APU registers. idx is the register offset
// from 0x4000
func (apu *APU) WriteRegister(idx uint16, data uint8) error {
	switch idx {
	case 0x10:
		apu.dmc.writeControl(data)
	case 0x11:
		apu.dmc.writeDirectLoad(data)
	case 0x12:
		apu.dmc.writeSampleAddress(data)
	case 0x13:
		apu.dmc.writeSampleLength(data)
	case 0x15:
		apu.dmc.writeEnable(data&0x10 == 0x10, apu.dma)
	case 0x17:
		// frame counter. the frame sequencer drives the envelope and sweep
		// units of the other channels, none of which are emulated here
	}
	return nil
}
