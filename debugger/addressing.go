package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ricoh2a03/testnes/hardware/memory"
)

type mappedAddress struct {
	address uint16
	area    memory.Area
	idx     uint16
}

func (m debugger) parseAddress(address string) (mappedAddress, error) {
	var ma mappedAddress

	if strings.HasPrefix(address, "$") {
		address = fmt.Sprintf("0x%s", address[1:])
	}

	addr, err := strconv.ParseUint(address, 0, 16)
	if err != nil {
		return ma, fmt.Errorf("address is not valid: %s", address)
	}
	ma.address = uint16(addr)

	ma.idx, ma.area = m.console.Mem.MapAddress(ma.address)
	if ma.area == nil {
		return ma, fmt.Errorf("address is not mapped: %s", address)
	}

	return ma, nil
}
