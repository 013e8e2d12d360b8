package dma

// Revision identifies which version of the 2A03 silicon is being emulated.
// The sample-fetch stall behaves differently between revisions
type Revision int

const (
	// later NTSC consoles. the stall cycles before the sample fetch perform
	// no bus activity
	RevisionRP2A03G Revision = iota

	// early NTSC consoles. cycles 2 and 3 of the sample-fetch stall repeat
	// the most recent CPU read. if that read was of a shift-register
	// peripheral, the repeated reads clock the register and data is lost
	RevisionRP2A03E

	// PAL consoles. exempt from the repeated-read behaviour
	RevisionRP2A07
)

func (rev Revision) String() string {
	switch rev {
	case RevisionRP2A03G:
		return "RP2A03G"
	case RevisionRP2A03E:
		return "RP2A03E"
	case RevisionRP2A07:
		return "RP2A07"
	}
	return "unknown"
}

// whether the stall cycles of the sample-fetch engine repeat the most recent
// CPU read
func (rev Revision) repeatedReads() bool {
	return rev == RevisionRP2A03E
}
