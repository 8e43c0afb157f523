package teststruct

import (
	"fmt"

	"github.com/micro-nova/chipprobe/internal/hardware"
)

// Command bytes of the firmware serial protocol. Whitespace between commands
// is ignored; a reset prints nothing.
const (
	CmdReset   byte = 'r'
	CmdPeak    byte = 'p'
	CmdBandgap byte = 'b'
)

// Dispatch runs the procedure selected by cmd on b.
func (t *Tester) Dispatch(cmd byte, b *hardware.Board) error {
	switch cmd {
	case CmdReset:
		return t.PeakReset(b.Reset)
	case CmdPeak:
		return t.PeakRead(b.Peak)
	case CmdBandgap:
		return t.BandgapTest(b.Temp, b.Bandgap)
	case ' ', '\t', '\r', '\n':
		return nil
	}
	return fmt.Errorf("teststruct: unknown command %q", cmd)
}
