package apu

import (
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// how many samples accumulate before they are handed to the encoder
const recorderFlush = 4096

// recorder writes the APU output stream to a WAV file alongside normal
// playback
type recorder struct {
	enc     *wav.Encoder
	pending []int
}

func newRecorder(w io.WriteSeeker) *recorder {
	return &recorder{
		enc:     wav.NewEncoder(w, SampleFreq, 16, 1, 1),
		pending: make([]int, 0, recorderFlush),
	}
}

func (rec *recorder) push(sample int16) {
	rec.pending = append(rec.pending, int(sample))
	if len(rec.pending) >= recorderFlush {
		// an encoding failure here is out of reach of any caller. drop the
		// pending samples and let the Close() error surface the problem
		_ = rec.flush()
	}
}

func (rec *recorder) flush() error {
	if len(rec.pending) == 0 {
		return nil
	}
	err := rec.enc.Write(&audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  SampleFreq,
		},
		Data:           rec.pending,
		SourceBitDepth: 16,
	})
	rec.pending = rec.pending[:0]
	return err
}

func (rec *recorder) close() error {
	err := rec.flush()
	if err != nil {
		return err
	}
	return rec.enc.Close()
}

// StartRecording begins writing the audio stream to w in WAV format. w is
// typically an os.File. recording continues until StopRecording is called
func (apu *APU) StartRecording(w io.WriteSeeker) error {
	if apu.rec != nil {
		return fmt.Errorf("apu: recording already in progress")
	}
	apu.rec = newRecorder(w)
	return nil
}

// StopRecording finalises the WAV file started by StartRecording. the caller
// is responsible for closing the underlying file
func (apu *APU) StopRecording() error {
	if apu.rec == nil {
		return fmt.Errorf("apu: no recording in progress")
	}
	err := apu.rec.close()
	apu.rec = nil
	if err != nil {
		return fmt.Errorf("apu: %w", err)
	}
	return nil
}

// Recording is true while a WAV recording is in progress
func (apu *APU) Recording() bool {
	return apu.rec != nil
}
