package hardware

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/physic"
)

// ADS1115 register pointers and config fields.
const (
	adsRegConversion = 0x00
	adsRegConfig     = 0x01

	adsOSStart    = 1 << 15 // write: start a single conversion; read: 1 when idle
	adsMuxSingle0 = 0b100   // AIN0 vs GND, +1 per channel
	adsPGA4096    = 0b001   // ±4.096 V full scale
	adsModeSingle = 1 << 8
	adsDR128      = 0b100 // 128 samples/s
	adsCompOff    = 0b11

	adsChannels = 4
	// Single-ended inputs only use the positive half of the 16-bit range.
	adsBits      = 15
	adsFullScale = 4096 * physic.MilliVolt
	adsConvWait  = 8 * time.Millisecond
	adsPollWait  = time.Millisecond
	adsMaxPolls  = 10
)

// DefaultADSAddr is the ADS1115 address with ADDR tied to GND.
const DefaultADSAddr = 0x48

// ADS1115Bits is the resolution of a single-ended ADS1115 code.
const ADS1115Bits = adsBits

// RegisterBus reads and writes 16-bit big-endian device registers.
type RegisterBus interface {
	WriteReg16(addr uint16, reg byte, val uint16) error
	ReadReg16(addr uint16, reg byte) (uint16, error)
}

// ADS1115 is a 4-channel 16-bit I2C ADC, an alternative to the MCP3008 on
// boards that need more resolution on the bandgap reading.
type ADS1115 struct {
	mu    sync.Mutex
	bus   RegisterBus
	addr  uint16
	clock Clock
}

// NewADS1115 creates a reader for the converter at addr. A nil clock
// selects RealClock.
func NewADS1115(bus RegisterBus, addr uint16, clock Clock) *ADS1115 {
	if clock == nil {
		clock = RealClock{}
	}
	return &ADS1115{bus: bus, addr: addr, clock: clock}
}

// Channel returns a single-ended input as an ADC handle.
func (a *ADS1115) Channel(ch int) (*ADS1115Channel, error) {
	if ch < 0 || ch >= adsChannels {
		return nil, fmt.Errorf("ads1115: invalid channel %d", ch)
	}
	return &ADS1115Channel{dev: a, ch: ch}, nil
}

func adsConfig(ch int) uint16 {
	return adsOSStart |
		uint16(adsMuxSingle0+ch)<<12 |
		adsPGA4096<<9 |
		adsModeSingle |
		adsDR128<<5 |
		adsCompOff
}

func (a *ADS1115) read(ch int) (int32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.bus.WriteReg16(a.addr, adsRegConfig, adsConfig(ch)); err != nil {
		return 0, fmt.Errorf("ads1115: channel %d: start: %w", ch, err)
	}
	a.clock.Sleep(adsConvWait)
	for i := 0; ; i++ {
		cfg, err := a.bus.ReadReg16(a.addr, adsRegConfig)
		if err != nil {
			return 0, fmt.Errorf("ads1115: channel %d: poll: %w", ch, err)
		}
		if cfg&adsOSStart != 0 {
			break
		}
		if i >= adsMaxPolls {
			return 0, ErrHardware(fmt.Sprintf("ads1115: channel %d: conversion did not finish", ch))
		}
		a.clock.Sleep(adsPollWait)
	}
	v, err := a.bus.ReadReg16(a.addr, adsRegConversion)
	if err != nil {
		return 0, fmt.Errorf("ads1115: channel %d: read: %w", ch, err)
	}
	raw := int32(int16(v))
	// Offset error can push a grounded single-ended input slightly negative.
	if raw < 0 {
		raw = 0
	}
	return raw, nil
}

// ADS1115Channel is one input of an ADS1115.
type ADS1115Channel struct {
	dev *ADS1115
	ch  int
}

func (c *ADS1115Channel) String() string { return fmt.Sprintf("ADS1115_AIN%d", c.ch) }

func (c *ADS1115Channel) Read() (analog.Sample, error) {
	raw, err := c.dev.read(c.ch)
	if err != nil {
		return analog.Sample{}, err
	}
	return analog.Sample{V: LSBToVolts(raw, adsFullScale, adsBits), Raw: raw}, nil
}

// Range returns the lowest and highest samples the channel can report.
func (c *ADS1115Channel) Range() (analog.Sample, analog.Sample) {
	return analog.Sample{}, analog.Sample{V: adsFullScale, Raw: MaxCode(adsBits)}
}
