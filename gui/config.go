package gui

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/ricoh2a03/testnes/resources"
)

const windowConfigFile = "window"

func onWindowOpen() error {
	s, err := resources.Read(windowConfigFile)
	if err != nil {
		return err
	}

	var x, y, w, h int

	n, err := fmt.Sscanf(s, "%d %d %d %d", &x, &y, &w, &h)
	if err != nil {
		return err
	}
	if n != 4 {
		return fmt.Errorf("window config is malformed")
	}

	ebiten.SetWindowPosition(x, y)
	ebiten.SetWindowSize(w, h)

	return nil
}

func onWindowClose() error {
	x, y := ebiten.WindowPosition()
	w, h := ebiten.WindowSize()
	return resources.Write(windowConfigFile, fmt.Sprintf("%d %d %d %d", x, y, w, h))
}
