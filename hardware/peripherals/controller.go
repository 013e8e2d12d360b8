// Package peripherals implements the standard controller: an eight-bit
// parallel-in serial-out shift register hanging off the controller port.
package peripherals

import (
	"fmt"

	"github.com/ricoh2a03/testnes/io"
)

// the order in which button states are shifted out of the register
const (
	ButtonA = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

type Controller struct {
	label string

	// the live state of the buttons, latched into the shift register while
	// the strobe is high
	buttons uint8

	strobe bool
	shift  uint8

	// number of bits shifted out since the strobe dropped. after eight the
	// register returns ones
	shifted int
}

func NewController(label string) *Controller {
	return &Controller{
		label: label,
	}
}

func (ct *Controller) Label() string {
	return ct.label
}

func (ct *Controller) Status() string {
	return fmt.Sprintf("%s: buttons=%08b strobe=%v shifted=%d", ct.label, ct.buttons, ct.strobe, ct.shifted)
}

func (ct *Controller) Reset() {
	ct.strobe = false
	ct.shift = 0
	ct.shifted = 0
}

// Input updates the live button state
func (ct *Controller) Input(inp io.Input) {
	var b uint8

	switch inp.Action {
	case io.PadA:
		b = ButtonA
	case io.PadB:
		b = ButtonB
	case io.PadSelect:
		b = ButtonSelect
	case io.PadStart:
		b = ButtonStart
	case io.PadUp:
		b = ButtonUp
	case io.PadDown:
		b = ButtonDown
	case io.PadLeft:
		b = ButtonLeft
	case io.PadRight:
		b = ButtonRight
	default:
		return
	}

	if inp.Release {
		ct.buttons &^= b
	} else {
		ct.buttons |= b
	}
}

// Strobe is driven by writes to the controller port. while the strobe is
// high the shift register continuously reloads from the live button state;
// the falling edge freezes it for serial reading
func (ct *Controller) Strobe(high bool) {
	if ct.strobe && !high {
		ct.shift = ct.buttons
		ct.shifted = 0
	}
	ct.strobe = high
}

// Read returns the next serial bit in the low bit of the result. every read
// clocks the shift register, which is why a read repeated by the
// sample-fetch DMA stall loses button presses
func (ct *Controller) Read() uint8 {
	if ct.strobe {
		// while strobed, reads always see the state of the first button
		return ct.buttons & 0x01
	}

	if ct.shifted >= 8 {
		// official controllers return one once the register is empty
		return 0x01
	}

	v := ct.shift & 0x01
	ct.shift >>= 1
	ct.shifted++
	return v
}
