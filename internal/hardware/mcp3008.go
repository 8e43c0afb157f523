package hardware

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/physic"
)

const (
	mcp3008Bits     = 10
	mcp3008Channels = 8
)

// SPITx is the subset of periph spi.Conn the MCP3008 reader needs.
type SPITx interface {
	Tx(w, r []byte) error
}

// MCP3008 is an 8-channel 10-bit SPI ADC. The test board routes the peak
// detector output and the bandgap reference to two of its inputs.
type MCP3008 struct {
	mu  sync.Mutex
	bus SPITx
	ref physic.ElectricPotential
}

// NewMCP3008 creates a reader on bus with the given VREF.
func NewMCP3008(bus SPITx, ref physic.ElectricPotential) *MCP3008 {
	return &MCP3008{bus: bus, ref: ref}
}

// Channel returns a single-ended input as an ADC handle.
func (m *MCP3008) Channel(ch int) (*MCP3008Channel, error) {
	if ch < 0 || ch >= mcp3008Channels {
		return nil, fmt.Errorf("mcp3008: invalid channel %d", ch)
	}
	return &MCP3008Channel{dev: m, ch: ch}, nil
}

func (m *MCP3008) read(ch int) (int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := [3]byte{
		0x01,                // start bit
		byte((8 + ch) << 4), // single-ended, channel select
		0x00,                // clocks for the remaining data bits
	}
	var r [3]byte
	if err := m.bus.Tx(w[:], r[:]); err != nil {
		return 0, fmt.Errorf("mcp3008: channel %d: %w", ch, err)
	}
	return int32(r[1]&0x03)<<8 | int32(r[2]), nil
}

// MCP3008Channel is one input of an MCP3008.
type MCP3008Channel struct {
	dev *MCP3008
	ch  int
}

func (c *MCP3008Channel) String() string { return fmt.Sprintf("MCP3008_CH%d", c.ch) }

func (c *MCP3008Channel) Read() (analog.Sample, error) {
	raw, err := c.dev.read(c.ch)
	if err != nil {
		return analog.Sample{}, err
	}
	return analog.Sample{V: LSBToVolts(raw, c.dev.ref, mcp3008Bits), Raw: raw}, nil
}

// Range returns the lowest and highest samples the channel can report.
func (c *MCP3008Channel) Range() (analog.Sample, analog.Sample) {
	max := MaxCode(mcp3008Bits)
	return analog.Sample{}, analog.Sample{V: c.dev.ref, Raw: max}
}
