package debugger

import (
	"fmt"
)

type watch struct {
	ma   mappedAddress
	data uint8
	prev uint8
}

// watches read through the area interface. a watch on a register with read
// side effects will disturb the emulation
func (m *debugger) checkWatches() (*watch, error) {
	for i, w := range m.watches {
		d, err := w.ma.area.Read(w.ma.idx)
		if err != nil {
			return nil, fmt.Errorf("watch: %w", err)
		}
		if d != w.data {
			w.prev = w.data
			w.data = d
			m.watches[i] = w
			return &w, nil
		}
	}
	return nil, nil
}
