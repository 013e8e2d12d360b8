// Package gui presents the console's video output in an ebiten window and
// forwards keyboard/gamepad events to the emulation goroutine. It must run
// on the main goroutine, which is why the debugger runs on another.
package gui

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	input "github.com/quasilyte/ebitengine-input"

	"github.com/ricoh2a03/testnes/io"
	"github.com/ricoh2a03/testnes/ui"
	"github.com/ricoh2a03/testnes/version"
)

type gui struct {
	started bool

	endGui chan bool
	u      *ui.UI

	image  *ebiten.Image
	width  int
	height int

	audio *audioPlayer

	inputHandler *input.Handler
	inputSystem  input.System
}

const (
	ActionPadUp     = input.Action(io.PadUp)
	ActionPadDown   = input.Action(io.PadDown)
	ActionPadLeft   = input.Action(io.PadLeft)
	ActionPadRight  = input.Action(io.PadRight)
	ActionPadSelect = input.Action(io.PadSelect)
	ActionPadStart  = input.Action(io.PadStart)
	ActionPadA      = input.Action(io.PadA)
	ActionPadB      = input.Action(io.PadB)
)

// actions in keymap order. used when polling the handler for pressed and
// released state
var allActions = []input.Action{
	ActionPadUp, ActionPadDown, ActionPadLeft, ActionPadRight,
	ActionPadSelect, ActionPadStart, ActionPadA, ActionPadB,
}

func (g *gui) initialise() {
	keymap := input.Keymap{
		ActionPadUp:     {input.KeyGamepadUp, input.KeyUp},
		ActionPadDown:   {input.KeyGamepadDown, input.KeyDown},
		ActionPadLeft:   {input.KeyGamepadLeft, input.KeyLeft},
		ActionPadRight:  {input.KeyGamepadRight, input.KeyRight},
		ActionPadSelect: {input.KeyGamepadBack, input.KeyBackspace},
		ActionPadStart:  {input.KeyGamepadStart, input.KeyEnter},
		ActionPadA:      {input.KeyGamepadA, input.KeyX},
		ActionPadB:      {input.KeyGamepadB, input.KeyZ},
	}
	g.inputHandler = g.inputSystem.NewHandler(uint8(0), keymap)
	g.started = true
}

func (g *gui) input() {
	g.inputSystem.Update()

	for _, a := range allActions {
		var inp io.Input

		if g.inputHandler.ActionIsJustPressed(a) {
			inp = io.Input{Action: io.Action(a)}
		} else if g.inputHandler.ActionIsJustReleased(a) {
			inp = io.Input{Action: io.Action(a), Release: true}
		}

		if inp.Action != io.Nothing {
			select {
			case g.u.UserInput <- inp:
			default:
			}
		}
	}
}

func (g *gui) Update() error {
	if !g.started {
		g.initialise()
	}

	g.input()

	if g.audio == nil {
		select {
		case r := <-g.u.RegisterAudio:
			g.audio = createAudioPlayer(r)
		default:
		}
	}

	select {
	case <-g.endGui:
		return ebiten.Termination
	case img := <-g.u.SetImage:
		g.resize(img.Bounds())
		g.image.WritePixels(img.Pix)
	default:
	}
	return nil
}

func (g *gui) resize(dim image.Rectangle) {
	if g.image == nil || g.image.Bounds() != dim {
		g.width = dim.Dx()
		g.height = dim.Dy()
		g.image = ebiten.NewImage(g.width, g.height)
	}
}

const pixelScale = 2

func (g *gui) Draw(screen *ebiten.Image) {
	if g.image != nil {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(pixelScale, pixelScale)
		screen.DrawImage(g.image, op)
	}
}

func (g *gui) Layout(width, height int) (int, int) {
	if g.image != nil {
		return g.width * pixelScale, g.height * pixelScale
	}
	return width, height
}

func Launch(endGui chan bool, u *ui.UI) error {
	ebiten.SetWindowTitle(version.Title())
	ebiten.SetVsyncEnabled(true)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(ebiten.SyncWithFPS)

	if err := onWindowOpen(); err != nil {
		ebiten.SetWindowPosition(10, 10)
	}
	defer func() {
		_ = onWindowClose()
	}()

	g := &gui{
		endGui: endGui,
		u:      u,
	}

	g.inputSystem.Init(input.SystemConfig{
		DevicesEnabled: input.AnyDevice,
	})

	return ebiten.RunGame(g)
}
