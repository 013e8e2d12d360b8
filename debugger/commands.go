package debugger

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ricoh2a03/testnes/logger"
)

// commands dispatches a single debugger command. returns true if the
// debugger should quit
func (m *debugger) commands(cmd []string) bool {
	switch strings.ToUpper(cmd[0]) {
	case "R", "RUN":
		if m.run() {
			return true
		}
	case "ST", "STEP":
		ct := 1
		if len(cmd) > 1 {
			var err error
			ct, err = strconv.Atoi(cmd[1])
			if err != nil || ct < 1 {
				fmt.Println(m.styles.err.Render(
					fmt.Sprintf("cannot STEP by %s", cmd[1]),
				))
				break // switch
			}
		}
		if m.step(ct) {
			return true
		}
	case "F", "FRAME":
		if m.frame() {
			return true
		}
	case "RESET":
		m.reset()
	case "INSERT":
		if len(cmd) < 2 {
			fmt.Println(m.styles.err.Render(
				"INSERT requires a cartridge file",
			))
			break // switch
		}
		m.loader = cmd[1]
		m.reset()
	case "DMA":
		fmt.Println(m.styles.dma.Render(
			m.console.DMA.Status(),
		))
	case "PPU":
		fmt.Println(m.styles.video.Render(
			m.console.PPU.Status(),
		))
	case "APU":
		fmt.Println(m.styles.audio.Render(
			m.console.APU.Status(),
		))
	case "VIDEO":
		fmt.Println(m.styles.video.Render(
			m.console.PPU.Coords.String(),
		))
	case "CONTROLLERS":
		for _, ct := range m.console.Controllers {
			fmt.Println(m.styles.mem.Render(ct.Status()))
		}
	case "RAM":
		fmt.Println(m.styles.mem.Render(
			m.console.Mem.RAM.String(),
		))
	case "DUMP":
		if len(cmd) < 3 {
			fmt.Println(m.styles.err.Render(
				"DUMP requires a 'from' and a 'to' address",
			))
			break // switch
		}

		from, err := m.parseAddress(cmd[1])
		if err != nil {
			fmt.Println(m.styles.err.Render(
				fmt.Sprintf("dump: %s", err.Error()),
			))
			break // switch
		}

		to, err := m.parseAddress(cmd[2])
		if err != nil {
			fmt.Println(m.styles.err.Render(
				fmt.Sprintf("dump: %s", err.Error()),
			))
			break // switch
		}

		if to.address < from.address {
			fmt.Println(m.styles.err.Render(
				"dump: the 'to' address is less than the 'from' address",
			))
			break // switch
		}

		if from.area != to.area {
			fmt.Println(m.styles.err.Render(
				"dump: the 'from' and 'to' addresses are in different memory areas",
			))
			break // switch
		}

		var column int
		for i := from.idx; ; i++ {
			address := from.address + i - from.idx

			if column == 0 {
				fmt.Printf("%04x", address)
			}

			data, err := from.area.Read(i)
			if err != nil {
				fmt.Println(m.styles.err.Render(
					fmt.Sprintf("dump address is not readable: %04x", address),
				))
				break // for
			}
			fmt.Printf(" %02x", data)

			column++
			if column > 15 {
				fmt.Printf("\n")
				column = 0
			}

			// checked at the bottom of the loop so that a 'to' index of
			// 0xffff cannot wrap the counter
			if i == to.idx {
				break // for
			}
		}
		if column != 0 {
			fmt.Printf("\n")
		}
	case "PEEK":
		if len(cmd) < 2 {
			fmt.Println(m.styles.err.Render(
				"PEEK requires an address",
			))
			break // switch
		}

		ma, err := m.parseAddress(cmd[1])
		if err != nil {
			fmt.Println(m.styles.err.Render(
				fmt.Sprintf("peek: %s", err.Error()),
			))
			break // switch
		}

		data, err := ma.area.Read(ma.idx)
		if err != nil {
			fmt.Println(m.styles.err.Render(
				fmt.Sprintf("peek address is not readable: %s", cmd[1]),
			))
			break // switch
		}

		fmt.Println(m.styles.mem.Render(
			fmt.Sprintf("$%04x = %02x (%s)", ma.address, data, ma.area.Label()),
		))
	case "POKE":
		if len(cmd) < 3 {
			fmt.Println(m.styles.err.Render(
				"POKE requires an address and a value",
			))
			break // switch
		}

		ma, err := m.parseAddress(cmd[1])
		if err != nil {
			fmt.Println(m.styles.err.Render(
				fmt.Sprintf("poke: %s", err.Error()),
			))
			break // switch
		}

		v, err := strconv.ParseUint(strings.TrimPrefix(cmd[2], "$"), 16, 8)
		if err != nil {
			fmt.Println(m.styles.err.Render(
				fmt.Sprintf("poke value is not valid: %s", cmd[2]),
			))
			break // switch
		}

		err = ma.area.Write(ma.idx, uint8(v))
		if err != nil {
			fmt.Println(m.styles.err.Render(
				fmt.Sprintf("poke address is not writeable: %s", cmd[1]),
			))
			break // switch
		}

		fmt.Println(m.styles.mem.Render(
			fmt.Sprintf("$%04x = %02x (%s)", ma.address, uint8(v), ma.area.Label()),
		))
	case "WATCH":
		m.watchCommand(cmd)
	case "LIST":
		fmt.Println(m.styles.debugger.Render("watches"))
		if len(m.watches) == 0 {
			fmt.Println("none")
		} else {
			for a := range m.watches {
				fmt.Printf("%#04x\n", a)
			}
		}
	case "WAV":
		if len(cmd) < 2 {
			fmt.Println(m.styles.err.Render(
				"WAV requires a filename or STOP",
			))
			break // switch
		}

		if strings.ToUpper(cmd[1]) == "STOP" {
			if !m.console.APU.Recording() {
				fmt.Println(m.styles.err.Render("no WAV recording in progress"))
				break // switch
			}
			err := m.console.APU.StopRecording()
			if err != nil {
				fmt.Println(m.styles.err.Render(err.Error()))
			} else {
				fmt.Println(m.styles.audio.Render("WAV recording stopped"))
			}
			m.wavFile.Close()
			m.wavFile = nil
			break // switch
		}

		if m.console.APU.Recording() {
			fmt.Println(m.styles.err.Render("WAV recording already in progress"))
			break // switch
		}

		f, err := os.Create(cmd[1])
		if err != nil {
			fmt.Println(m.styles.err.Render(err.Error()))
			break // switch
		}

		err = m.console.APU.StartRecording(f)
		if err != nil {
			f.Close()
			fmt.Println(m.styles.err.Render(err.Error()))
			break // switch
		}
		m.wavFile = f

		fmt.Println(m.styles.audio.Render(
			fmt.Sprintf("WAV recording to %s", filepath.Base(cmd[1])),
		))
	case "LOG":
		logger.Tail(os.Stdout, -1)
	case "QUIT":
		return true
	default:
		fmt.Println(m.styles.err.Render(
			fmt.Sprintf("unrecognised command: %s", strings.Join(cmd, " ")),
		))
	}

	return false
}

func (m *debugger) watchCommand(cmd []string) {
	if len(cmd) < 2 {
		fmt.Println(m.styles.err.Render(
			"WATCH requires an address",
		))
		return
	}

	// we check the first argument for special keywords before assuming it is
	// an address. the keywords are case insensitive
	arg := strings.ToUpper(cmd[1])

	if arg == "DROP" {
		if len(cmd) < 3 {
			fmt.Println(m.styles.err.Render(
				"WATCH DROP requires an address",
			))
			return
		}

		if strings.ToUpper(cmd[2]) == "ALL" {
			clear(m.watches)
			return
		}

		ma, err := m.parseAddress(cmd[2])
		if err != nil {
			fmt.Println(m.styles.err.Render(
				fmt.Sprintf("watch: %s", err.Error()),
			))
			return
		}
		if _, ok := m.watches[ma.address]; !ok {
			fmt.Println(m.styles.debugger.Render(
				fmt.Sprintf("watch for $%04x not present", ma.address),
			))
			return
		}
		delete(m.watches, ma.address)
		fmt.Println(m.styles.debugger.Render(
			fmt.Sprintf("watch %04x has been removed", ma.address),
		))
		return
	}

	ma, err := m.parseAddress(cmd[1])
	if err != nil {
		fmt.Println(m.styles.err.Render(
			fmt.Sprintf("watch: %s", err.Error()),
		))
		return
	}

	if _, ok := m.watches[ma.address]; ok {
		fmt.Println(m.styles.err.Render(
			fmt.Sprintf("watch for %s already present", cmd[1]),
		))
		return
	}

	d, err := ma.area.Read(ma.idx)
	if err != nil {
		fmt.Println(m.styles.err.Render(
			fmt.Sprintf("watch address is not readable: %s", cmd[1]),
		))
		return
	}

	m.watches[ma.address] = watch{
		ma:   ma,
		data: d,
	}
}
