package gui

import (
	"io"

	"github.com/ebitengine/oto/v3"

	"github.com/ricoh2a03/testnes/hardware/apu"
)

type audioPlayer struct {
	p *oto.Player
	r io.Reader
}

func (s *audioPlayer) Read(buf []uint8) (int, error) {
	return s.r.Read(buf)
}

func createAudioPlayer(r io.Reader) *audioPlayer {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   apu.SampleFreq,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})

	if err != nil {
		panic(err)
	}

	<-ready

	s := &audioPlayer{
		r: r,
	}
	s.p = ctx.NewPlayer(s)
	s.p.Play()

	return s
}
