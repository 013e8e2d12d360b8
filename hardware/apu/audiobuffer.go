package apu

import "sync"

// the buffer never holds more than this many bytes of sample data. when the
// playback device falls behind, the oldest data is dropped rather than
// stalling the emulation
const maxBufferedBytes = SampleFreq // half a second of 16bit mono

// audioBuffer is an io.Reader implementation that forwards APU generated
// sample data to something that can play it back (or store it, etc.)
//
// the emulation goroutine pushes and the audio device reads from its own
// goroutine, hence the mutex
type audioBuffer struct {
	crit sync.Mutex
	data []uint8
}

func newAudioBuffer() *audioBuffer {
	return &audioBuffer{
		data: make([]uint8, 0, maxBufferedBytes),
	}
}

func (b *audioBuffer) push(sample int16) {
	b.crit.Lock()
	defer b.crit.Unlock()

	// 16bit little-endian
	b.data = append(b.data, uint8(sample), uint8(sample>>8))

	if len(b.data) > maxBufferedBytes {
		b.data = b.data[len(b.data)-maxBufferedBytes:]
	}
}

func (b *audioBuffer) Read(buf []uint8) (int, error) {
	b.crit.Lock()
	defer b.crit.Unlock()

	// the number of bytes returned must be a multiple of two because of the
	// sample format (mono, 16bit little-endian)
	n := min(len(b.data), len(buf))
	n &= ^1

	copy(buf, b.data[:n])
	b.data = b.data[n:]

	return n, nil
}
