package ui

import (
	"image"
	"io"

	nesio "github.com/ricoh2a03/testnes/io"
)

// UI is the bundle of channels connecting the emulation goroutine to the
// rendering goroutine. all channels are buffered and all sends are
// non-blocking: the emulation never waits on the renderer and a slow
// renderer drops frames rather than stalling the simulation
type UI struct {
	SetImage      chan *image.RGBA
	RegisterAudio chan io.Reader
	UserInput     chan nesio.Input
}

func NewUI() *UI {
	return &UI{
		SetImage:      make(chan *image.RGBA, 1),
		RegisterAudio: make(chan io.Reader, 1),
		UserInput:     make(chan nesio.Input, 1),
	}
}
