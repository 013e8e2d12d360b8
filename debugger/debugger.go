package debugger

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/ricoh2a03/testnes/hardware"
	"github.com/ricoh2a03/testnes/hardware/dma"
	"github.com/ricoh2a03/testnes/hardware/memory/cartridge"
	"github.com/ricoh2a03/testnes/hardware/spec"
	"github.com/ricoh2a03/testnes/logger"
	"github.com/ricoh2a03/testnes/ui"
)

type input struct {
	s   string
	err error
}

type debugger struct {
	guiQuit chan bool
	sig     chan os.Signal
	input   chan input

	console *hardware.Console
	watches map[uint16]watch

	// the cartridge file to load on console reset
	loader string

	// the file WAV output is being written to
	wavFile *os.File

	// printing styles
	styles styles
}

func (m *debugger) reset() {
	if m.loader != "" {
		d, err := os.ReadFile(m.loader)
		if err != nil {
			fmt.Println(m.styles.err.Render(
				fmt.Sprintf("error loading %s: %s", m.loader, err.Error()),
			))

			// forget about loader because we now know it doesn't work
			m.loader = ""
		} else {
			c, err := cartridge.Fingerprint(d)
			if err != nil {
				fmt.Println(m.styles.err.Render(
					fmt.Sprintf("%s: %s", filepath.Base(m.loader), err.Error()),
				))
				m.loader = ""
			} else {
				m.console.Insert(c)
				fmt.Println(m.styles.debugger.Render(
					fmt.Sprintf("%s from %s", c.Status(), filepath.Base(m.loader)),
				))
				return
			}
		}
	}

	m.console.Reset(true)
	fmt.Println(m.styles.debugger.Render("console reset"))
}

// step advances the emulation by a number of instructions. if there is no
// processor attached each step is a single machine cycle
//
// returns true if quit signal has been received
func (m *debugger) step(ct int) bool {
	for i := 0; i < ct; i++ {
		select {
		case <-m.sig:
			i = ct
			continue // for loop
		case <-m.guiQuit:
			return true
		default:
		}

		err := m.console.Step()
		if err != nil {
			fmt.Println(m.styles.err.Render(
				err.Error(),
			))
			return false
		}
	}

	m.console.PPU.PushRender()

	if ct > 1 {
		fmt.Println(m.styles.debugger.Render(
			fmt.Sprintf("%d steps", ct),
		))
	}

	return false
}

// frame advances the emulation to the start of the next frame
//
// returns true if quit signal has been received
func (m *debugger) frame() bool {
	target := m.console.PPU.Coords.Frame + 1

	for m.console.PPU.Coords.Frame < target {
		select {
		case <-m.sig:
			return false
		case <-m.guiQuit:
			return true
		default:
		}

		err := m.console.Step()
		if err != nil {
			fmt.Println(m.styles.err.Render(
				err.Error(),
			))
			return false
		}
	}

	m.console.PPU.PushRender()
	return false
}

// returns true if quit signal has been received
func (m *debugger) run() bool {
	fmt.Println(m.styles.debugger.Render("emulation running"))

	// we measure the number of instructions in the time period of the
	// running emulation
	var instructionCt int
	var startTime time.Time

	var (
		watchErr  = errors.New("watch")
		endRunErr = errors.New("end run")
		quitErr   = errors.New("quit")
	)

	// hook is called after every instruction
	hook := func() error {
		select {
		case <-m.sig:
			return endRunErr
		case <-m.guiQuit:
			return quitErr
		default:
		}

		instructionCt++

		w, err := m.checkWatches()
		if err != nil {
			return err
		}
		if w != nil {
			return fmt.Errorf("%w: %04x = %02x -> %02x", watchErr, w.ma.address, w.prev, w.data)
		}

		return nil
	}

	startTime = time.Now()
	err := m.console.Run(nil, hook)

	if errors.Is(err, quitErr) {
		return true
	}

	m.console.PPU.PushRender()

	if errors.Is(err, endRunErr) {
		fmt.Println(m.styles.debugger.Render(
			fmt.Sprintf("%d instructions in %.02f seconds", instructionCt, time.Since(startTime).Seconds())),
		)
	} else if errors.Is(err, watchErr) {
		fmt.Println(m.styles.watch.Render(err.Error()))
	} else if err != nil {
		fmt.Println(m.styles.err.Render(err.Error()))
	}

	// it's useful to see where the TV image is at the end of the run
	fmt.Println(m.styles.video.Render(m.console.PPU.Coords.String()))

	return false
}

func (m *debugger) loop() {
	for {
		fmt.Printf("%s> ", m.console.PPU.Coords.ShortString())

		var cmd []string

		select {
		case input := <-m.input:
			if input.err != nil {
				fmt.Println(m.styles.err.Render(input.err.Error()))
				return
			}
			cmd = strings.Fields(input.s)
			if len(cmd) == 0 {
				cmd = []string{"STEP"}
			}
		case <-m.sig:
			fmt.Print("\r")
			return
		case <-m.guiQuit:
			fmt.Print("\n")
			return
		}

		if m.commands(cmd) {
			return
		}
	}
}

const programName = "testnes"

func Launch(guiQuit chan bool, u *ui.UI, args []string) error {
	var cartfile string
	var tvspec string
	var revision string
	var profile bool

	flgs := flag.NewFlagSet(programName, flag.ExitOnError)
	flgs.StringVar(&tvspec, "spec", "NTSC", "TV specification of the console: NTSC or PAL")
	flgs.StringVar(&revision, "revision", "AUTO", "silicon revision: AUTO, RP2A03G, RP2A03E or RP2A07")
	flgs.BoolVar(&profile, "profile", false, "create CPU profile for emulator")
	err := flgs.Parse(args)
	if err != nil {
		return err
	}
	args = flgs.Args()

	if len(args) == 1 {
		cartfile = args[0]
	} else if len(args) > 1 {
		return fmt.Errorf("too many arguments to debugger")
	}

	var tv spec.Spec
	switch strings.ToUpper(tvspec) {
	case "NTSC":
		tv = spec.NTSC
	case "PAL":
		tv = spec.PAL
	default:
		return fmt.Errorf("unsupported TV specification: %s", tvspec)
	}

	var rev dma.Revision
	switch strings.ToUpper(revision) {
	case "AUTO":
		if tv.ID == "PAL" {
			rev = dma.RevisionRP2A07
		} else {
			rev = dma.RevisionRP2A03G
		}
	case "RP2A03G":
		rev = dma.RevisionRP2A03G
	case "RP2A03E":
		rev = dma.RevisionRP2A03E
	case "RP2A07":
		rev = dma.RevisionRP2A07
	default:
		return fmt.Errorf("unsupported silicon revision: %s", revision)
	}

	m := &debugger{
		guiQuit: guiQuit,
		sig:     make(chan os.Signal, 1),
		input:   make(chan input, 1),
		loader:  cartfile,
		styles:  newStyles(),
		watches: make(map[uint16]watch),
	}
	m.console = hardware.Create(u, tv, rev)

	signal.Notify(m.sig, syscall.SIGINT)

	go func() {
		r := bufio.NewReader(os.Stdin)
		b := make([]byte, 256)
		for {
			n, err := r.Read(b)
			select {
			case m.input <- input{
				s:   strings.TrimSpace(string(b[:n])),
				err: err,
			}:
			default:
			}
		}
	}()

	m.reset()

	if profile {
		f, err := os.Create("cpu.profile")
		if err != nil {
			return fmt.Errorf("performance: %w", err)
		}
		defer func() {
			err := f.Close()
			if err != nil {
				logger.Log(logger.Allow, "performance", err.Error())
			}
		}()

		err = pprof.StartCPUProfile(f)
		if err != nil {
			return fmt.Errorf("performance: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	m.loop()

	return nil
}
