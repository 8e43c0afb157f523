package serialbridge

import (
	"fmt"
	"io"

	"go.bug.st/serial"
)

// OpenOutput opens a serial port as a write-only report channel, for benches
// where a logger or another host reads the readings.
func OpenOutput(device string, baud int) (io.WriteCloser, error) {
	port, err := serial.Open(device, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("serialbridge: open output %s: %w", device, err)
	}
	return port, nil
}
