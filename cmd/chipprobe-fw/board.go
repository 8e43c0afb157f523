//go:build tinygo && rp2040

package main

import (
	"machine"

	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"

	"github.com/micro-nova/chipprobe/internal/hardware"
)

// Bench board wiring.
var (
	resetPin   = machine.GP15
	peakADC    = machine.ADC{Pin: machine.ADC0}
	bandgapADC = machine.ADC{Pin: machine.ADC1}
)

const (
	adcBits = 12
	adcRef  = 3300 * physic.MilliVolt
)

type outPin struct {
	pin  machine.Pin
	name string
}

func (p outPin) Out(l gpio.Level) error {
	p.pin.Set(bool(l))
	return nil
}

func (p outPin) String() string { return p.name }

type adcPin struct {
	adc  machine.ADC
	name string
}

// Read returns the native 12-bit code; machine.ADC scales every sample to
// 16 bits.
func (a adcPin) Read() (analog.Sample, error) {
	raw := int32(a.adc.Get() >> (16 - adcBits))
	return analog.Sample{V: hardware.LSBToVolts(raw, adcRef, adcBits), Raw: raw}, nil
}

func (a adcPin) String() string { return a.name }

// dieSensor is the RP2040 on-die sensor. It is sampled through the ADC mux,
// but ReadTemperature restores the channel selection and leaves resolution
// untouched, so both options behave the same.
type dieSensor struct {
	enabled bool
}

func (d *dieSensor) Begin(opt hardware.TempOption) error {
	d.enabled = true
	return nil
}

func (d *dieSensor) ReadCelsius() (float64, error) {
	if !d.enabled {
		return 0, hardware.ErrHardware("die sensor not enabled")
	}
	return float64(machine.ReadTemperature()) / 1000, nil
}

func openBoard() *hardware.Board {
	machine.InitADC()
	peakADC.Configure(machine.ADCConfig{})
	bandgapADC.Configure(machine.ADCConfig{})

	resetPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	resetPin.Low()

	return &hardware.Board{
		Reset:   outPin{pin: resetPin, name: "GP15"},
		Peak:    adcPin{adc: peakADC, name: "ADC0"},
		Bandgap: adcPin{adc: bandgapADC, name: "ADC1"},
		Temp:    &dieSensor{},
	}
}
