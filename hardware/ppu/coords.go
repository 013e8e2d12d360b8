package ppu

import (
	"fmt"
)

type coords struct {
	Frame    int
	Scanline int
	Dot      int
}

func (c *coords) String() string {
	return fmt.Sprintf("frame: %d, scanline: %d, dot: %d", c.Frame, c.Scanline, c.Dot)
}

func (c *coords) ShortString() string {
	return fmt.Sprintf("%d/%03d/%03d", c.Frame, c.Scanline, c.Dot)
}

func (c *coords) Reset() {
	c.Frame = 0
	c.Scanline = 0
	c.Dot = 0
}
