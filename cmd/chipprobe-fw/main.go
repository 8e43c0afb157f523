//go:build tinygo && rp2040

// Command chipprobe-fw is the bench firmware. It waits for single-byte
// commands on the USB serial port and answers with the same report lines the
// host tool prints: 'r' resets the peak detector, 'p' reads it and 'b' runs
// the bandgap test.
package main

import (
	"machine"
	"time"

	"github.com/micro-nova/chipprobe/internal/report"
	"github.com/micro-nova/chipprobe/internal/teststruct"
)

func main() {
	board := openBoard()
	serial := machine.Serial
	tester := teststruct.New(report.NewWriter(serial))

	for {
		if serial.Buffered() == 0 {
			time.Sleep(time.Millisecond)
			continue
		}
		c, err := serial.ReadByte()
		if err != nil {
			continue
		}
		// Diagnostics would share the report channel; unknown bytes are dropped.
		_ = tester.Dispatch(c, board)
	}
}
